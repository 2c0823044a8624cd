package types

// request bodies of the authentication backend

type SendEmailCodeReq struct {
	Email string `json:"email"`
}

type RegisterReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	// code mailed by the send-code endpoint, empty for backends that do not verify email
	Code string `json:"code,omitempty"`
}

type LoginReq struct {
	Username string `json:"username"`
	// newer backends read the login name from account, which takes a username or an email
	Account  string `json:"account,omitempty"`
	Password string `json:"password"`
}

type ChangeUsernameReq struct {
	Username string `json:"username"`
}

type ChangeEmailReq struct {
	Email string `json:"email"`
}

type VerifyEmailCodeReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// RawResponse is the body as received, kept so it can be printed verbatim.
type RawResponse struct {
	StatusCode int    `json:"-"`
	Body       []byte `json:"-"`
}

func (r *RawResponse) SetRaw(status int, body []byte) {
	r.StatusCode = status
	r.Body = body
}

func (r *RawResponse) Raw() *RawResponse {
	return r
}

// Response is implemented by every typed response of the backend.
type Response interface {
	SetRaw(status int, body []byte)
	Raw() *RawResponse
}

type MsgResp struct {
	RawResponse
	Msg string `json:"msg"`
}

// AuthResp is returned by register and login. SessionID is required.
type AuthResp struct {
	RawResponse
	Msg       string `json:"msg"`
	SessionID string `json:"session_id"`
}

// UserInfoResp is returned by the user info endpoint. Username is required.
type UserInfoResp struct {
	RawResponse
	Username string `json:"username"`
}

// ResetTokenResp is returned when an emailed code is verified for a password reset. Token is required.
type ResetTokenResp struct {
	RawResponse
	Msg   string `json:"msg"`
	Token string `json:"token"`
}
