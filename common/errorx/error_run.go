package errorx

const errRunPrefix = "RUN-ERR"

const (
	unknownScenario = iota
	unknownEndpoint
	checkFailed
	missingArgument
)

var (
	// --- RUN-ERR-xxx: driving scenarios and checks ---

	ErrUnknownScenario = newError(errRunPrefix, unknownScenario, "unknown scenario")
	ErrUnknownEndpoint = newError(errRunPrefix, unknownEndpoint, "unknown endpoint")
	// at least one contract check did not pass
	ErrCheckFailed     = newError(errRunPrefix, checkFailed, "contract check failed")
	ErrMissingArgument = newError(errRunPrefix, missingArgument, "missing argument")
)
