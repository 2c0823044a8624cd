package rpc

import "net/http"

type RequestOption interface {
	Set(req *http.Request)
}

// CredentialTransport selects where the session id is put on authenticated requests.
type CredentialTransport string

const (
	// raw session id in the Authorization header, no scheme prefix
	TransportHeader CredentialTransport = "header"
	TransportCookie CredentialTransport = "cookie"
	TransportBoth   CredentialTransport = "both"
)

const DefaultSessionCookie = "session_id"

type authWithSessionHeader struct {
	sessionID string
}

func (a authWithSessionHeader) Set(req *http.Request) {
	req.Header.Set("Authorization", a.sessionID)
}

type authWithSessionCookie struct {
	name      string
	sessionID string
}

func (a authWithSessionCookie) Set(req *http.Request) {
	req.AddCookie(&http.Cookie{Name: a.name, Value: a.sessionID})
}

type requestOptions []RequestOption

func (o requestOptions) Set(req *http.Request) {
	for _, opt := range o {
		opt.Set(req)
	}
}

// AuthWithSession carries sessionID the way transport says. An unknown transport falls back to the header.
func AuthWithSession(transport CredentialTransport, cookieName, sessionID string) RequestOption {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	header := authWithSessionHeader{sessionID: sessionID}
	cookie := authWithSessionCookie{name: cookieName, sessionID: sessionID}
	switch transport {
	case TransportCookie:
		return cookie
	case TransportBoth:
		return requestOptions{header, cookie}
	default:
		return header
	}
}
