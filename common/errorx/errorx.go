package errorx

import (
	"errors"
	"strconv"
)

// CustomError is the sentinel type of the exerciser. Errors are compared with errors.Is against the
// exported Err* values; prefix and code identify the error in logs and reports.
type CustomError struct {
	prefix string
	code   int
	msg    string
}

func (err CustomError) Error() string {
	return err.Code() + ": " + err.msg
}

// Code returns the stable identifier of the error, e.g. "REQ-ERR-1".
func (err CustomError) Code() string {
	return err.prefix + "-" + strconv.Itoa(err.code)
}

// CodeOf returns the code of the first CustomError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var ce CustomError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func newError(prefix string, code int, msg string) CustomError {
	return CustomError{prefix: prefix, code: code, msg: msg}
}
