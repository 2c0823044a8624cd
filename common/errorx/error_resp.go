package errorx

import "fmt"

const errRespPrefix = "RESP-ERR"

const (
	invalidJSON = iota
	missingField
)

var (
	// --- RESP-ERR-xxx: the backend answered 2xx but the body breaks the contract ---

	// body is not a JSON document
	ErrInvalidJSON = newError(errRespPrefix, invalidJSON, "response body is not valid json")
	// a field the exerciser relies on is absent or empty
	ErrMissingField = newError(errRespPrefix, missingField, "required response field is missing")
)

type DecodeError struct {
	Endpoint string
	Body     []byte
	Err      error
}

func (e *DecodeError) Error() string {
	body := string(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to decode response body %q: %v", e.Endpoint, body, e.Err)
	}
	return fmt.Sprintf("%s: failed to decode response body %q", e.Endpoint, body)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidJSON}
	}
	return []error{ErrInvalidJSON, e.Err}
}

type MissingFieldError struct {
	Endpoint string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: response has no %q field", e.Endpoint, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
