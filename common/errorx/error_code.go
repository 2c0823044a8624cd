package errorx

const errCodePrefix = "CODE-ERR"

const (
	emptyCode = iota
	codeNotFound
	unknownProvider
)

var (
	// --- CODE-ERR-xxx: obtaining the email verification code ---

	ErrEmptyCode       = newError(errCodePrefix, emptyCode, "verification code is empty")
	ErrCodeNotFound    = newError(errCodePrefix, codeNotFound, "verification code not found")
	ErrUnknownProvider = newError(errCodePrefix, unknownProvider, "unknown code provider")
)
