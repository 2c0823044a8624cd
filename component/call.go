package component

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"opencsg.com/auth-exerciser/common/errorx"
	"opencsg.com/auth-exerciser/common/log"
	"opencsg.com/auth-exerciser/common/types"
)

// Call sends one request to the endpoint named by req. Arguments left empty are taken from the configured
// account. Authenticated endpoints log in first when no session id is given, and a reset without a token
// verifies the emailed code first.
func (c *exerciserComponentImpl) Call(ctx context.Context, req *types.CallReq) error {
	runID, err := newRunID()
	if err != nil {
		return err
	}
	ctx = log.WithRunID(ctx, runID)
	ctx, span := startSpan(ctx, "call "+string(req.Endpoint), attribute.String("run_id", runID))
	err = c.call(ctx, c.withDefaults(req))
	endSpan(span, err)
	return err
}

func (c *exerciserComponentImpl) call(ctx context.Context, r types.CallReq) error {
	switch r.Endpoint {
	case types.EndpointSendEmailCode:
		return c.callOnce(ctx, r.Endpoint, func(ctx context.Context) (*types.RawResponse, error) {
			resp, err := c.auth.SendEmailCode(ctx, r.Email)
			return rawOf(resp), err
		})
	case types.EndpointRegister:
		code, err := c.codeFor(ctx, r)
		if err != nil {
			return err
		}
		return c.callOnce(ctx, r.Endpoint, func(ctx context.Context) (*types.RawResponse, error) {
			resp, err := c.auth.Register(ctx, &types.RegisterReq{Email: r.Email, Username: r.Username, Password: r.Password, Code: code})
			return rawOf(resp), err
		})
	case types.EndpointLogin:
		_, err := c.login(ctx, r)
		return err
	case types.EndpointChangeUsername:
		if r.NewUsername == "" {
			return fmt.Errorf("%w: new username", errorx.ErrMissingArgument)
		}
		return c.callAuthenticated(ctx, r, func(ctx context.Context, sessionID string) (*types.RawResponse, error) {
			resp, err := c.auth.ChangeUsername(ctx, sessionID, r.NewUsername)
			return rawOf(resp), err
		})
	case types.EndpointChangeEmail:
		if r.NewEmail == "" {
			return fmt.Errorf("%w: new email", errorx.ErrMissingArgument)
		}
		return c.callAuthenticated(ctx, r, func(ctx context.Context, sessionID string) (*types.RawResponse, error) {
			resp, err := c.auth.ChangeEmail(ctx, sessionID, r.NewEmail)
			return rawOf(resp), err
		})
	case types.EndpointDeleteAccount:
		return c.callAuthenticated(ctx, r, func(ctx context.Context, sessionID string) (*types.RawResponse, error) {
			resp, err := c.auth.DeleteAccount(ctx, sessionID)
			return rawOf(resp), err
		})
	case types.EndpointUserInfo:
		return c.callAuthenticated(ctx, r, func(ctx context.Context, sessionID string) (*types.RawResponse, error) {
			resp, err := c.auth.UserInfo(ctx, sessionID)
			return rawOf(resp), err
		})
	case types.EndpointVerifyEmailCode:
		_, err := c.verifyCode(ctx, r)
		return err
	case types.EndpointResetPassword:
		if r.NewPassword == "" {
			return fmt.Errorf("%w: new password", errorx.ErrMissingArgument)
		}
		token := r.Token
		if token == "" {
			var err error
			if token, err = c.verifyCode(ctx, r); err != nil {
				return err
			}
		}
		return c.callOnce(ctx, r.Endpoint, func(ctx context.Context) (*types.RawResponse, error) {
			resp, err := c.auth.ResetPassword(ctx, token, r.NewPassword)
			return rawOf(resp), err
		})
	default:
		return fmt.Errorf("%w: %q", errorx.ErrUnknownEndpoint, r.Endpoint)
	}
}

func (c *exerciserComponentImpl) withDefaults(req *types.CallReq) types.CallReq {
	r := *req
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&r.Email, c.config.Account.Email)
	fill(&r.Username, c.config.Account.Username)
	fill(&r.Password, c.config.Account.Password)
	fill(&r.NewUsername, c.config.Account.NewUsername)
	fill(&r.NewEmail, c.config.Account.NewEmail)
	fill(&r.NewPassword, c.config.Account.NewPassword)
	return r
}

func (c *exerciserComponentImpl) callOnce(ctx context.Context, endpoint types.Endpoint, fn func(ctx context.Context) (*types.RawResponse, error)) error {
	_, err := c.runStep(ctx, step{name: endpoint.String(), fn: func(ctx context.Context, _ *runState) (*types.RawResponse, error) {
		return fn(ctx)
	}}, nil)
	return err
}

func (c *exerciserComponentImpl) callAuthenticated(ctx context.Context, r types.CallReq, fn func(ctx context.Context, sessionID string) (*types.RawResponse, error)) error {
	sessionID := r.SessionID
	if sessionID == "" {
		var err error
		if sessionID, err = c.login(ctx, r); err != nil {
			return err
		}
	}
	return c.callOnce(ctx, r.Endpoint, func(ctx context.Context) (*types.RawResponse, error) {
		return fn(ctx, sessionID)
	})
}

func (c *exerciserComponentImpl) login(ctx context.Context, r types.CallReq) (string, error) {
	var sessionID string
	err := c.callOnce(ctx, types.EndpointLogin, func(ctx context.Context) (*types.RawResponse, error) {
		resp, err := c.auth.Login(ctx, &types.LoginReq{Username: r.Username, Password: r.Password})
		if err == nil {
			sessionID = resp.SessionID
		}
		return rawOf(resp), err
	})
	return sessionID, err
}

func (c *exerciserComponentImpl) codeFor(ctx context.Context, r types.CallReq) (string, error) {
	if r.Code != "" {
		return r.Code, nil
	}
	code, err := c.codes.ObtainCode(ctx, r.Email)
	if err != nil {
		return "", fmt.Errorf("failed to obtain verification code for %s: %w", r.Email, err)
	}
	return code, nil
}

func (c *exerciserComponentImpl) verifyCode(ctx context.Context, r types.CallReq) (string, error) {
	code, err := c.codeFor(ctx, r)
	if err != nil {
		return "", err
	}
	var token string
	err = c.callOnce(ctx, types.EndpointVerifyEmailCode, func(ctx context.Context) (*types.RawResponse, error) {
		resp, err := c.auth.VerifyEmailCode(ctx, r.Email, code)
		if err == nil {
			token = resp.Token
		}
		return rawOf(resp), err
	})
	return token, err
}
