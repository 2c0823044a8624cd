package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"opencsg.com/auth-exerciser/builder/rpc"
	"opencsg.com/auth-exerciser/common/log"
	"opencsg.com/auth-exerciser/common/types"
)

const (
	checkSendCode          = "send-code-ok"
	checkWrongCode         = "wrong-code-rejected"
	checkRegisterSession   = "register-session"
	checkLoginSession      = "login-session"
	checkRenameThenLogin   = "rename-then-login"
	checkDeleteThenNoLogin = "delete-then-login-fails"
)

var errCheckSkipped = errors.New("skipped")

// checkState is shared by the checks of one run, in order.
type checkState struct {
	account   account
	code      string
	codeErr   error
	codeDone  bool
	sessionID string
}

type contractCheck struct {
	name string
	// checks that must have passed before this one can run
	needs []string
	fn    func(ctx context.Context, st *checkState) (string, error)
}

func (c *exerciserComponentImpl) contractChecks() []contractCheck {
	return []contractCheck{
		{name: checkSendCode, fn: c.checkSendCode},
		{name: checkWrongCode, needs: []string{checkSendCode}, fn: c.checkWrongCode},
		{name: checkRegisterSession, needs: []string{checkSendCode}, fn: c.checkRegisterSession},
		{name: checkLoginSession, needs: []string{checkRegisterSession}, fn: c.checkLoginSession},
		{name: checkRenameThenLogin, needs: []string{checkLoginSession}, fn: c.checkRenameThenLogin},
		{name: checkDeleteThenNoLogin, needs: []string{checkLoginSession}, fn: c.checkDeleteThenLoginFails},
	}
}

// Check runs the contract checks in order against a fresh account. A check whose prerequisites did not
// pass is skipped. The report lists every check; the error is only set when the run could not start.
func (c *exerciserComponentImpl) Check(ctx context.Context) (*types.CheckReport, error) {
	runID, err := newRunID()
	if err != nil {
		return nil, err
	}
	acct, err := newAccount(c.config)
	if err != nil {
		return nil, err
	}
	ctx = log.WithRunID(ctx, runID)
	ctx, span := startSpan(ctx, "check", attribute.String("run_id", runID))
	defer span.End()
	report := &types.CheckReport{
		RunID:    runID,
		BaseURL:  c.config.BaseURL,
		Email:    acct.Email,
		Username: acct.Username,
	}
	st := &checkState{account: acct}
	passed := map[string]bool{}

	for _, chk := range c.contractChecks() {
		res := types.CheckResult{Name: chk.name}
		if missing := unmet(chk.needs, passed); missing != "" {
			res.Status = types.CheckSkipped
			res.Detail = fmt.Sprintf("requires %s", missing)
			report.Checks = append(report.Checks, res)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Status = types.CheckSkipped
			res.Detail = err.Error()
			report.Checks = append(report.Checks, res)
			continue
		}

		checkCtx, checkSpan := startSpan(log.WithStep(ctx, chk.name), chk.name)
		start := time.Now()
		detail, err := chk.fn(checkCtx, st)
		if errors.Is(err, errCheckSkipped) {
			endSpan(checkSpan, nil)
		} else {
			endSpan(checkSpan, err)
		}
		res.Duration = time.Since(start)
		res.Detail = detail
		switch {
		case errors.Is(err, errCheckSkipped):
			res.Status = types.CheckSkipped
		case err != nil:
			res.Status = types.CheckFailed
			res.Detail = err.Error()
			slog.WarnContext(checkCtx, "check failed", slog.Any("error", err))
		default:
			res.Status = types.CheckPassed
			passed[chk.name] = true
			slog.InfoContext(checkCtx, "check passed", slog.Duration("duration", res.Duration))
		}
		report.Checks = append(report.Checks, res)
	}

	if err := c.printer.report(report, c.config.Output.Format); err != nil {
		return report, fmt.Errorf("failed to write check report: %w", err)
	}
	return report, nil
}

func unmet(needs []string, passed map[string]bool) string {
	for _, n := range needs {
		if !passed[n] {
			return n
		}
	}
	return ""
}

// obtainCode asks the code provider once per run.
func (c *exerciserComponentImpl) obtainCode(ctx context.Context, st *checkState) (string, error) {
	if !st.codeDone {
		st.code, st.codeErr = c.codes.ObtainCode(ctx, st.account.Email)
		st.codeDone = true
		if st.codeErr != nil {
			st.codeErr = fmt.Errorf("failed to obtain verification code for %s: %w", st.account.Email, st.codeErr)
		}
	}
	return st.code, st.codeErr
}

func (c *exerciserComponentImpl) checkSendCode(ctx context.Context, st *checkState) (string, error) {
	resp, err := c.auth.SendEmailCode(ctx, st.account.Email)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if rpc.HasErrorField(resp.Body) {
		return "", fmt.Errorf("response carries an error field: %s", rpc.ResponseMessage(resp.Body))
	}
	return resp.Msg, nil
}

func (c *exerciserComponentImpl) checkWrongCode(ctx context.Context, st *checkState) (string, error) {
	code, err := c.obtainCode(ctx, st)
	if err != nil {
		return "", err
	}
	wrong := wrongCode(code)
	_, err = c.auth.Register(ctx, &types.RegisterReq{
		Email:    st.account.Email,
		Username: st.account.Username,
		Password: st.account.Password,
		Code:     wrong,
	})
	if err == nil {
		return "", fmt.Errorf("registration with wrong code %s was accepted", wrong)
	}
	if !isRejection(err) {
		return "", fmt.Errorf("registration with wrong code did not get an answer: %w", err)
	}
	detail := fmt.Sprintf("register rejected: %v", err)

	_, err = c.auth.Login(ctx, &types.LoginReq{Username: st.account.Username, Password: st.account.Password})
	if err == nil {
		return "", fmt.Errorf("login succeeded after a rejected registration, account %s was created", st.account.Username)
	}
	if !isRejection(err) {
		return "", fmt.Errorf("login after rejected registration did not get an answer: %w", err)
	}
	return detail, nil
}

func (c *exerciserComponentImpl) checkRegisterSession(ctx context.Context, st *checkState) (string, error) {
	code, err := c.obtainCode(ctx, st)
	if err != nil {
		return "", err
	}
	resp, err := c.auth.Register(ctx, &types.RegisterReq{
		Email:    st.account.Email,
		Username: st.account.Username,
		Password: st.account.Password,
		Code:     code,
	})
	if err != nil {
		return "", err
	}
	st.sessionID = resp.SessionID
	return fmt.Sprintf("registered %s", st.account.Username), nil
}

func (c *exerciserComponentImpl) checkLoginSession(ctx context.Context, st *checkState) (string, error) {
	resp, err := c.auth.Login(ctx, &types.LoginReq{Username: st.account.Username, Password: st.account.Password})
	if err != nil {
		return "", err
	}
	st.sessionID = resp.SessionID
	return fmt.Sprintf("logged in as %s", st.account.Username), nil
}

func (c *exerciserComponentImpl) checkRenameThenLogin(ctx context.Context, st *checkState) (string, error) {
	newName := st.account.NewUsername
	if newName == "" {
		return "no new username configured", errCheckSkipped
	}
	if _, err := c.auth.ChangeUsername(ctx, st.sessionID, newName); err != nil {
		return "", err
	}
	st.account.Username = newName

	resp, err := c.auth.Login(ctx, &types.LoginReq{Username: newName, Password: st.account.Password})
	if err != nil {
		return "", fmt.Errorf("login with new username %s failed: %w", newName, err)
	}
	st.sessionID = resp.SessionID
	return fmt.Sprintf("renamed to %s", newName), nil
}

func (c *exerciserComponentImpl) checkDeleteThenLoginFails(ctx context.Context, st *checkState) (string, error) {
	if _, err := c.auth.DeleteAccount(ctx, st.sessionID); err != nil {
		return "", err
	}
	_, err := c.auth.Login(ctx, &types.LoginReq{Username: st.account.Username, Password: st.account.Password})
	if err == nil {
		return "", fmt.Errorf("login as %s still succeeds after deletion", st.account.Username)
	}
	if !isRejection(err) {
		return "", fmt.Errorf("login after deletion did not get an answer: %w", err)
	}
	return fmt.Sprintf("deleted %s", st.account.Username), nil
}
