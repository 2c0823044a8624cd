package errorx

import (
	"fmt"
	"net/http"
)

const errReqPrefix = "REQ-ERR"

const (
	badRequest = iota
	unauthorized
	notFound
	conflict
	serverError
	unexpectedStatus
	transport
)

var (
	// --- REQ-ERR-xxx: the backend answered with a non-2xx status or did not answer at all ---

	// HTTP 400
	ErrBadRequest = newError(errReqPrefix, badRequest, "bad request")
	// HTTP 401, missing or invalid session, wrong password or wrong verification code
	ErrUnauthorized = newError(errReqPrefix, unauthorized, "unauthorized")
	// HTTP 404
	ErrNotFound = newError(errReqPrefix, notFound, "not found")
	// HTTP 409
	ErrConflict = newError(errReqPrefix, conflict, "conflict")
	// HTTP 5xx
	ErrServer = newError(errReqPrefix, serverError, "server error")
	// any other non-2xx status
	ErrUnexpectedStatus = newError(errReqPrefix, unexpectedStatus, "unexpected status")
	// the request never got a response
	ErrTransport = newError(errReqPrefix, transport, "transport failure")
)

// StatusToError maps a non-2xx HTTP status to its sentinel. It returns nil for 2xx.
func StatusToError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 500:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}

// HTTPError is returned when the backend answered with a non-2xx status.
// Message is the backend's msg or error field, or the raw body when neither exists.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Message    any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: StatusCode: %d, Message: %v", e.Endpoint, e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return StatusToError(e.StatusCode)
}
