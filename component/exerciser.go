package component

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"opencsg.com/auth-exerciser/builder/codeprovider"
	"opencsg.com/auth-exerciser/builder/rpc"
	"opencsg.com/auth-exerciser/common/config"
	"opencsg.com/auth-exerciser/common/errorx"
	"opencsg.com/auth-exerciser/common/log"
	"opencsg.com/auth-exerciser/common/types"
)

// ExerciserComponent drives the authentication backend: scripted scenarios, contract checks and single calls.
// Every response received is written to the output as it arrives.
type ExerciserComponent interface {
	Run(ctx context.Context, scenario types.Scenario) (*types.RunResult, error)
	Check(ctx context.Context) (*types.CheckReport, error)
	Call(ctx context.Context, req *types.CallReq) error
}

type exerciserComponentImpl struct {
	config  *config.Config
	auth    rpc.AuthSvcClient
	codes   codeprovider.Provider
	printer *printer
}

func NewExerciserComponent(config *config.Config, codes codeprovider.Provider, out io.Writer) (ExerciserComponent, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	hc := rpc.NewHttpClient(config.BaseURL).
		WithTimeout(config.HTTPTimeout()).
		WithRetry(uint(config.HTTP.Attempts)).
		WithRetryDelay(config.RetryDelay())
	auth := rpc.NewAuthSvcHttpClient(hc, authPaths(config), rpc.CredentialTransport(config.Auth.Transport), config.Auth.CookieName)
	return newExerciserComponent(config, auth, codes, out), nil
}

func newExerciserComponent(config *config.Config, auth rpc.AuthSvcClient, codes codeprovider.Provider, out io.Writer) *exerciserComponentImpl {
	return &exerciserComponentImpl{
		config:  config,
		auth:    auth,
		codes:   codes,
		printer: newPrinter(out, config.Output.Indent),
	}
}

func authPaths(config *config.Config) rpc.AuthPaths {
	return rpc.AuthPaths{
		SendEmailCode:   config.Paths.SendEmailCode,
		Register:        config.Paths.Register,
		Login:           config.Paths.Login,
		ChangeUsername:  config.Paths.ChangeUsername,
		ChangeEmail:     config.Paths.ChangeEmail,
		DeleteAccount:   config.Paths.DeleteAccount,
		UserInfo:        config.Paths.UserInfo,
		VerifyEmailCode: config.Paths.VerifyEmailCode,
		ResetPassword:   config.Paths.ResetPassword,
	}
}

// runState is what earlier steps hand to later ones.
type runState struct {
	account   account
	code      string
	sessionID string
}

type step struct {
	name string
	fn   func(ctx context.Context, st *runState) (*types.RawResponse, error)
}

func (c *exerciserComponentImpl) scenarioSteps(scenario types.Scenario) ([]step, bool) {
	switch scenario {
	case types.ScenarioRegisterDelete:
		return []step{c.stepSendCode(), c.stepObtainCode(), c.stepRegister(), c.stepDeleteAccount()}, true
	case types.ScenarioRegisterRename:
		return []step{c.stepSendCode(), c.stepObtainCode(), c.stepRegister(), c.stepLogin(), c.stepChangeUsername()}, true
	case types.ScenarioLoginDelete:
		return []step{c.stepLogin(), c.stepDeleteAccount()}, true
	case types.ScenarioLoginRename:
		return []step{c.stepLogin(), c.stepChangeUsername()}, true
	default:
		return nil, false
	}
}

func (c *exerciserComponentImpl) Run(ctx context.Context, scenario types.Scenario) (*types.RunResult, error) {
	if scenario == "" {
		scenario = types.ScenarioRegisterDelete
	}
	steps, ok := c.scenarioSteps(scenario)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errorx.ErrUnknownScenario, scenario)
	}
	runID, err := newRunID()
	if err != nil {
		return nil, err
	}
	acct, err := newAccount(c.config)
	if err != nil {
		return nil, err
	}

	ctx = log.WithRunID(ctx, runID)
	ctx, span := startSpan(ctx, "scenario "+string(scenario), attribute.String("run_id", runID))
	st := &runState{account: acct}
	result := &types.RunResult{
		RunID:    runID,
		Scenario: scenario,
		Email:    acct.Email,
		Username: acct.Username,
	}
	slog.InfoContext(ctx, "scenario started", slog.String("scenario", string(scenario)),
		slog.String("base_url", c.config.BaseURL), slog.String("email", acct.Email), slog.String("username", acct.Username))

	for _, s := range steps {
		sr, err := c.runStep(ctx, s, st)
		result.Steps = append(result.Steps, sr)
		if err != nil {
			err = fmt.Errorf("scenario %s aborted at step %s: %w", scenario, s.name, err)
			endSpan(span, err)
			return result, err
		}
	}
	result.Username = st.account.Username
	slog.InfoContext(ctx, "scenario finished", slog.String("scenario", string(scenario)))
	endSpan(span, nil)
	return result, nil
}

func (c *exerciserComponentImpl) runStep(ctx context.Context, s step, st *runState) (types.StepResult, error) {
	ctx = log.WithStep(ctx, s.name)
	ctx, span := startSpan(ctx, s.name)
	slog.DebugContext(ctx, "step started")
	start := time.Now()
	raw, err := s.fn(ctx, st)
	sr := types.StepResult{Name: s.name, Duration: time.Since(start)}
	if raw != nil {
		sr.StatusCode = raw.StatusCode
		c.printer.response(s.name, raw)
	}
	if err != nil {
		sr.Error = err.Error()
		sr.ErrorCode = errorx.CodeOf(err)
		slog.ErrorContext(ctx, "step failed", slog.Any("error", err), slog.Int("status", sr.StatusCode))
		endSpan(span, err)
		return sr, err
	}
	slog.InfoContext(ctx, "step done", slog.Int("status", sr.StatusCode), slog.Duration("duration", sr.Duration))
	span.SetAttributes(attribute.Int("status", sr.StatusCode))
	endSpan(span, nil)
	return sr, nil
}

func (c *exerciserComponentImpl) stepSendCode() step {
	return step{name: "send-code", fn: func(ctx context.Context, st *runState) (*types.RawResponse, error) {
		resp, err := c.auth.SendEmailCode(ctx, st.account.Email)
		return rawOf(resp), err
	}}
}

func (c *exerciserComponentImpl) stepObtainCode() step {
	return step{name: "obtain-code", fn: func(ctx context.Context, st *runState) (*types.RawResponse, error) {
		code, err := c.codes.ObtainCode(ctx, st.account.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain verification code for %s: %w", st.account.Email, err)
		}
		st.code = code
		return nil, nil
	}}
}

func (c *exerciserComponentImpl) stepRegister() step {
	return step{name: "register", fn: func(ctx context.Context, st *runState) (*types.RawResponse, error) {
		resp, err := c.auth.Register(ctx, &types.RegisterReq{
			Email:    st.account.Email,
			Username: st.account.Username,
			Password: st.account.Password,
			Code:     st.code,
		})
		if err == nil {
			st.sessionID = resp.SessionID
		}
		return rawOf(resp), err
	}}
}

func (c *exerciserComponentImpl) stepLogin() step {
	return step{name: "login", fn: func(ctx context.Context, st *runState) (*types.RawResponse, error) {
		resp, err := c.auth.Login(ctx, &types.LoginReq{
			Username: st.account.Username,
			Password: st.account.Password,
		})
		if err == nil {
			st.sessionID = resp.SessionID
		}
		return rawOf(resp), err
	}}
}

func (c *exerciserComponentImpl) stepChangeUsername() step {
	return step{name: "change-username", fn: func(ctx context.Context, st *runState) (*types.RawResponse, error) {
		if st.account.NewUsername == "" {
			return nil, fmt.Errorf("%w: new username", errorx.ErrMissingArgument)
		}
		resp, err := c.auth.ChangeUsername(ctx, st.sessionID, st.account.NewUsername)
		if err == nil {
			st.account.Username = st.account.NewUsername
		}
		return rawOf(resp), err
	}}
}

func (c *exerciserComponentImpl) stepDeleteAccount() step {
	return step{name: "delete-account", fn: func(ctx context.Context, st *runState) (*types.RawResponse, error) {
		resp, err := c.auth.DeleteAccount(ctx, st.sessionID)
		return rawOf(resp), err
	}}
}

// rawOf returns the received body of resp, nil when nothing was received.
func rawOf[T any, PT interface {
	*T
	types.Response
}](resp PT) *types.RawResponse {
	if resp == nil {
		return nil
	}
	return resp.Raw()
}

// isRejection reports whether err means the backend answered and refused, as opposed to a transport failure.
func isRejection(err error) bool {
	var httpErr *errorx.HTTPError
	return errors.As(err, &httpErr)
}
