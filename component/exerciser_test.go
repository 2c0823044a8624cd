package component

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	mock_codeprovider "opencsg.com/auth-exerciser/_mocks/opencsg.com/auth-exerciser/builder/codeprovider"
	mock_rpc "opencsg.com/auth-exerciser/_mocks/opencsg.com/auth-exerciser/builder/rpc"
	"opencsg.com/auth-exerciser/builder/codeprovider"
	"opencsg.com/auth-exerciser/common/config"
	"opencsg.com/auth-exerciser/common/errorx"
	"opencsg.com/auth-exerciser/common/tests"
	"opencsg.com/auth-exerciser/common/types"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.BaseURL = baseURL
	cfg.Account.Email = "tester@example.com"
	cfg.Account.Username = "tester001"
	cfg.Account.Password = "tester001"
	cfg.Account.NewUsername = "tester003"
	cfg.Account.UniqueSuffix = false
	cfg.Auth.Transport = "header"
	cfg.Output.Format = "text"
	return cfg
}

// serverCodes reads the code straight from the fake backend, like the redis provider does from the real one.
func serverCodes(srv *tests.FakeAuthServer) codeprovider.Provider {
	return codeprovider.ProviderFunc(func(ctx context.Context, email string) (string, error) {
		code := srv.Code(email)
		if code == "" {
			return "", errorx.ErrCodeNotFound
		}
		return code, nil
	})
}

type testExerciser struct {
	*exerciserComponentImpl
	srv *tests.FakeAuthServer
	out *bytes.Buffer
}

func newTestExerciser(t *testing.T, opts ...tests.FakeOption) *testExerciser {
	srv := tests.NewFakeAuthServer(opts...)
	t.Cleanup(srv.Close)
	out := &bytes.Buffer{}
	ec, err := NewExerciserComponent(testConfig(t, srv.URL), serverCodes(srv), out)
	require.NoError(t, err)
	return &testExerciser{exerciserComponentImpl: ec.(*exerciserComponentImpl), srv: srv, out: out}
}

type mockedExerciser struct {
	*exerciserComponentImpl
	auth  *mock_rpc.MockAuthSvcClient
	codes *mock_codeprovider.MockProvider
	out   *bytes.Buffer
}

func newMockedExerciser(t *testing.T) *mockedExerciser {
	auth := mock_rpc.NewMockAuthSvcClient(t)
	codes := mock_codeprovider.NewMockProvider(t)
	out := &bytes.Buffer{}
	ec := newExerciserComponent(testConfig(t, "http://auth.example.com"), auth, codes, out)
	return &mockedExerciser{exerciserComponentImpl: ec, auth: auth, codes: codes, out: out}
}

func stepNames(result *types.RunResult) []string {
	var names []string
	for _, s := range result.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestNewExerciserComponent_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "ftp://auth.example.com")
	_, err := NewExerciserComponent(cfg, codeprovider.NewStaticProvider("ABC123"), nil)
	require.Error(t, err)
}

func TestExerciserComponent_Run_RegisterDelete(t *testing.T) {
	ctx := context.TODO()
	te := newTestExerciser(t)

	result, err := te.Run(ctx, "")
	require.NoError(t, err)
	require.Equal(t, types.ScenarioRegisterDelete, result.Scenario)
	require.NotEmpty(t, result.RunID)
	require.Equal(t, []string{"send-code", "obtain-code", "register", "delete-account"}, stepNames(result))
	for _, s := range result.Steps {
		require.Empty(t, s.Error)
	}
	require.Equal(t, 200, result.Steps[2].StatusCode)
	require.False(t, te.srv.HasUser("tester001"))

	out := te.out.String()
	require.Contains(t, out, "==> send-code [200]")
	require.Contains(t, out, "==> register [200]")
	require.Contains(t, out, `"session_id": "`)
	require.Contains(t, out, `"msg": "account deleted"`)
	require.NotContains(t, out, "obtain-code")
}

func TestExerciserComponent_Run_RegisterRename(t *testing.T) {
	ctx := context.TODO()
	te := newTestExerciser(t)

	result, err := te.Run(ctx, types.ScenarioRegisterRename)
	require.NoError(t, err)
	require.Equal(t, []string{"send-code", "obtain-code", "register", "login", "change-username"}, stepNames(result))
	require.Equal(t, "tester003", result.Username)
	require.True(t, te.srv.HasUser("tester003"))
	require.False(t, te.srv.HasUser("tester001"))
}

func TestExerciserComponent_Run_LoginScenarios(t *testing.T) {
	ctx := context.TODO()
	te := newTestExerciser(t)
	te.srv.AddUser("tester@example.com", "tester001", "tester001")

	result, err := te.Run(ctx, types.ScenarioLoginRename)
	require.NoError(t, err)
	require.Equal(t, []string{"login", "change-username"}, stepNames(result))
	require.True(t, te.srv.HasUser("tester003"))

	te.srv.AddUser("other@example.com", "tester001", "tester001")
	_, err = te.Run(ctx, types.ScenarioLoginDelete)
	require.NoError(t, err)
	require.False(t, te.srv.HasUser("tester001"))
	require.True(t, te.srv.HasUser("tester003"))

	// the session id travels as the raw Authorization header
	var authorized int
	for _, r := range te.srv.Requests() {
		if r.Path == "/api/delete/account" {
			require.NotEmpty(t, r.Authorization)
			authorized++
		}
	}
	require.Equal(t, 1, authorized)
}

func TestExerciserComponent_Run_CookieTransport(t *testing.T) {
	ctx := context.TODO()
	te := newTestExerciser(t, tests.WithCookieAuth("session_id"))
	te.srv.AddUser("tester@example.com", "tester001", "tester001")

	_, err := te.Run(ctx, types.ScenarioLoginDelete)
	require.ErrorIs(t, err, errorx.ErrUnauthorized)

	te.config.Auth.Transport = "cookie"
	ec, err := NewExerciserComponent(te.config, serverCodes(te.srv), te.out)
	require.NoError(t, err)
	_, err = ec.Run(ctx, types.ScenarioLoginDelete)
	require.NoError(t, err)
	require.False(t, te.srv.HasUser("tester001"))
}

func TestExerciserComponent_Run_Aborts(t *testing.T) {
	ctx := context.TODO()
	te := newTestExerciser(t)

	result, err := te.Run(ctx, types.ScenarioLoginRename)
	require.ErrorIs(t, err, errorx.ErrUnauthorized)
	var httpErr *errorx.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "user does not exist", httpErr.Message)

	require.Len(t, result.Steps, 1)
	require.Equal(t, "login", result.Steps[0].Name)
	require.Equal(t, 401, result.Steps[0].StatusCode)
	require.Equal(t, errorx.ErrUnauthorized.Code(), result.Steps[0].ErrorCode)
	require.Contains(t, te.out.String(), "==> login [401]")
}

func TestExerciserComponent_Run_UnknownScenario(t *testing.T) {
	me := newMockedExerciser(t)
	_, err := me.Run(context.TODO(), "register-twice")
	require.ErrorIs(t, err, errorx.ErrUnknownScenario)
}

func TestExerciserComponent_Run_MissingSession(t *testing.T) {
	ctx := context.TODO()
	me := newMockedExerciser(t)

	me.auth.On("SendEmailCode", mock.Anything, "tester@example.com").Return(&types.MsgResp{Msg: "sent"}, nil)
	me.codes.On("ObtainCode", mock.Anything, "tester@example.com").Return("A1B2C3", nil)
	resp := &types.AuthResp{Msg: "registered"}
	resp.SetRaw(200, []byte(`{"msg":"registered"}`))
	me.auth.On("Register", mock.Anything, &types.RegisterReq{
		Email:    "tester@example.com",
		Username: "tester001",
		Password: "tester001",
		Code:     "A1B2C3",
	}).Return(resp, &errorx.MissingFieldError{Endpoint: "register", Field: "session_id"})

	result, err := me.Run(ctx, types.ScenarioRegisterDelete)
	require.ErrorIs(t, err, errorx.ErrMissingField)
	var mfe *errorx.MissingFieldError
	require.ErrorAs(t, err, &mfe)
	require.Equal(t, "session_id", mfe.Field)
	require.Len(t, result.Steps, 3)
	require.Contains(t, me.out.String(), `"msg": "registered"`)
}

func TestExerciserComponent_Run_CodeProviderFails(t *testing.T) {
	ctx := context.TODO()
	me := newMockedExerciser(t)

	me.auth.On("SendEmailCode", mock.Anything, "tester@example.com").Return(&types.MsgResp{Msg: "sent"}, nil)
	me.codes.On("ObtainCode", mock.Anything, "tester@example.com").Return("", errorx.ErrEmptyCode)

	result, err := me.Run(ctx, types.ScenarioRegisterDelete)
	require.ErrorIs(t, err, errorx.ErrEmptyCode)
	require.Len(t, result.Steps, 2)
	require.Equal(t, errorx.ErrEmptyCode.Code(), result.Steps[1].ErrorCode)
}

func TestExerciserComponent_Run_Transport(t *testing.T) {
	ctx := context.TODO()
	me := newMockedExerciser(t)

	me.auth.On("Login", mock.Anything, mock.Anything).Return(nil, errors.Join(errorx.ErrTransport, errors.New("connection refused")))

	result, err := me.Run(ctx, types.ScenarioLoginDelete)
	require.ErrorIs(t, err, errorx.ErrTransport)
	require.Equal(t, 0, result.Steps[0].StatusCode)
	require.Empty(t, me.out.String())
}
