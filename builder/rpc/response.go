package rpc

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"opencsg.com/auth-exerciser/common/errorx"
	"opencsg.com/auth-exerciser/common/types"
)

// ResponseMessage returns the backend's human readable message: the msg field, then the error
// field, then the raw body.
func ResponseMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"msg", "error", "message"} {
			if v := gjson.GetBytes(body, key); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// HasErrorField reports whether a JSON body carries a non-empty error field.
func HasErrorField(body []byte) bool {
	v := gjson.GetBytes(body, "error")
	return v.Exists() && v.String() != ""
}

// envelopeStatus returns the status carried by a {"code","msg","data"} envelope, or 0 when
// the body is not one. Such backends answer HTTP 200 and put the real status in code.
func envelopeStatus(body []byte) int {
	v := gjson.GetBytes(body, "code")
	if v.Type != gjson.Number {
		return 0
	}
	return int(v.Int())
}

// field is a string the caller needs from a successful answer. paths are gjson paths tried in
// order; the first non-empty string found is handed to set.
type field struct {
	name  string
	paths []string
	set   func(string)
}

func requiredField(name string, set func(string), paths ...string) field {
	if len(paths) == 0 {
		paths = []string{name}
	}
	return field{name: name, paths: paths, set: set}
}

func (f field) lookup(body []byte) (string, bool) {
	for _, p := range f.paths {
		if v := gjson.GetBytes(body, p); v.Type == gjson.String && v.Str != "" {
			return v.Str, true
		}
	}
	return "", false
}

func decodeResponse(endpoint types.Endpoint, status int, body []byte, out types.Response, required ...field) error {
	out.SetRaw(status, body)
	if status < 200 || status >= 300 {
		return &errorx.HTTPError{
			Endpoint:   endpoint.String(),
			StatusCode: status,
			Message:    ResponseMessage(body),
		}
	}
	if !gjson.ValidBytes(body) {
		return &errorx.DecodeError{Endpoint: endpoint.String(), Body: body}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &errorx.DecodeError{Endpoint: endpoint.String(), Body: body, Err: err}
	}
	if code := envelopeStatus(body); code != 0 && (code < 200 || code >= 300) {
		return &errorx.HTTPError{
			Endpoint:   endpoint.String(),
			StatusCode: code,
			Message:    ResponseMessage(body),
		}
	}
	for _, f := range required {
		v, ok := f.lookup(body)
		if !ok {
			return &errorx.MissingFieldError{Endpoint: endpoint.String(), Field: f.name}
		}
		if f.set != nil {
			f.set(v)
		}
	}
	return nil
}
