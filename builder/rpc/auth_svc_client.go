package rpc

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"opencsg.com/auth-exerciser/common/types"
)

// AuthSvcClient talks to the authentication backend under test. Every method returns the typed
// response whenever the backend answered, even together with an error, so the raw body can be
// shown to the operator.
type AuthSvcClient interface {
	SendEmailCode(ctx context.Context, email string) (*types.MsgResp, error)
	Register(ctx context.Context, req *types.RegisterReq) (*types.AuthResp, error)
	Login(ctx context.Context, req *types.LoginReq) (*types.AuthResp, error)
	ChangeUsername(ctx context.Context, sessionID, username string) (*types.MsgResp, error)
	ChangeEmail(ctx context.Context, sessionID, email string) (*types.MsgResp, error)
	DeleteAccount(ctx context.Context, sessionID string) (*types.MsgResp, error)
	UserInfo(ctx context.Context, sessionID string) (*types.UserInfoResp, error)
	VerifyEmailCode(ctx context.Context, email, code string) (*types.ResetTokenResp, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*types.MsgResp, error)
}

type AuthPaths struct {
	SendEmailCode   string
	Register        string
	Login           string
	ChangeUsername  string
	ChangeEmail     string
	DeleteAccount   string
	UserInfo        string
	VerifyEmailCode string
	ResetPassword   string
}

func DefaultAuthPaths() AuthPaths {
	return AuthPaths{
		SendEmailCode:   "/send/email",
		Register:        "/register",
		Login:           "/login",
		ChangeUsername:  "/api/change/username",
		ChangeEmail:     "/api/change/email",
		DeleteAccount:   "/api/delete/account",
		UserInfo:        "/api/user/info",
		VerifyEmailCode: "/api/checkcode",
		ResetPassword:   "/api/reset/password",
	}
}

type AuthSvcHttpClient struct {
	hc         *HttpClient
	paths      AuthPaths
	transport  CredentialTransport
	cookieName string
}

func NewAuthSvcHttpClient(hc *HttpClient, paths AuthPaths, transport CredentialTransport, cookieName string) AuthSvcClient {
	return &AuthSvcHttpClient{
		hc:         hc,
		paths:      paths,
		transport:  transport,
		cookieName: cookieName,
	}
}

func (c *AuthSvcHttpClient) SendEmailCode(ctx context.Context, email string) (*types.MsgResp, error) {
	var resp types.MsgResp
	err := c.call(ctx, types.EndpointSendEmailCode, http.MethodPost, c.paths.SendEmailCode, &types.SendEmailCodeReq{Email: email}, "", &resp)
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) Register(ctx context.Context, req *types.RegisterReq) (*types.AuthResp, error) {
	var resp types.AuthResp
	err := c.call(ctx, types.EndpointRegister, http.MethodPost, c.paths.Register, req, "", &resp, sessionField(&resp))
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) Login(ctx context.Context, req *types.LoginReq) (*types.AuthResp, error) {
	body := *req
	if body.Account == "" {
		body.Account = body.Username
	}
	var resp types.AuthResp
	err := c.call(ctx, types.EndpointLogin, http.MethodPost, c.paths.Login, &body, "", &resp, sessionField(&resp))
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) ChangeUsername(ctx context.Context, sessionID, username string) (*types.MsgResp, error) {
	var resp types.MsgResp
	err := c.call(ctx, types.EndpointChangeUsername, http.MethodPost, c.paths.ChangeUsername, &types.ChangeUsernameReq{Username: username}, sessionID, &resp)
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) ChangeEmail(ctx context.Context, sessionID, email string) (*types.MsgResp, error) {
	var resp types.MsgResp
	err := c.call(ctx, types.EndpointChangeEmail, http.MethodPost, c.paths.ChangeEmail, &types.ChangeEmailReq{Email: email}, sessionID, &resp)
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) DeleteAccount(ctx context.Context, sessionID string) (*types.MsgResp, error) {
	var resp types.MsgResp
	err := c.call(ctx, types.EndpointDeleteAccount, http.MethodPost, c.paths.DeleteAccount, nil, sessionID, &resp)
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) UserInfo(ctx context.Context, sessionID string) (*types.UserInfoResp, error) {
	var resp types.UserInfoResp
	err := c.call(ctx, types.EndpointUserInfo, http.MethodGet, c.paths.UserInfo, nil, sessionID, &resp,
		requiredField("username", func(v string) { resp.Username = v }, "data.username", "username"))
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) VerifyEmailCode(ctx context.Context, email, code string) (*types.ResetTokenResp, error) {
	var resp types.ResetTokenResp
	err := c.call(ctx, types.EndpointVerifyEmailCode, http.MethodPost, c.paths.VerifyEmailCode, &types.VerifyEmailCodeReq{Email: email, Code: code}, "", &resp,
		requiredField("token", func(v string) { resp.Token = v }, "data", "token"))
	return answered(&resp, err)
}

func (c *AuthSvcHttpClient) ResetPassword(ctx context.Context, token, newPassword string) (*types.MsgResp, error) {
	var resp types.MsgResp
	err := c.call(ctx, types.EndpointResetPassword, http.MethodPost, c.paths.ResetPassword, &types.ResetPasswordReq{Token: token, NewPassword: newPassword}, "", &resp)
	return answered(&resp, err)
}

// call sends one request and decodes the answer into out. sessionID, when set, is attached as the credential.
func (c *AuthSvcHttpClient) call(ctx context.Context, endpoint types.Endpoint, method, path string, data interface{}, sessionID string, out types.Response, required ...field) error {
	var opts []RequestOption
	if sessionID != "" {
		opts = append(opts, AuthWithSession(c.transport, c.cookieName, sessionID))
	}
	resp, err := c.hc.Do(ctx, method, path, data, opts...)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response body: %w", endpoint, err)
	}
	return decodeResponse(endpoint, resp.StatusCode, raw, out, required...)
}

func sessionField(resp *types.AuthResp) field {
	return requiredField("session_id", func(v string) { resp.SessionID = v })
}

// answered returns resp when the backend sent a response, nil otherwise.
func answered[T types.Response](resp T, err error) (T, error) {
	if resp.Raw().StatusCode == 0 {
		var zero T
		return zero, err
	}
	return resp, err
}
