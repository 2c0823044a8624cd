package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opencsg.com/auth-exerciser/common/errorx"
)

func TestMain(m *testing.M) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	os.Exit(m.Run())
}

func TestNewHttpClient(t *testing.T) {
	client := NewHttpClient("http://test.com/")
	assert.NotNil(t, client)
	assert.NotNil(t, client.logger)
	assert.Equal(t, uint(1), client.retry)
	assert.Equal(t, "http://test.com", client.endpoint)
}

func TestHttpClient_WithRetry(t *testing.T) {
	client := NewHttpClient("http://test.com")
	client.WithRetry(5).WithTimeout(3 * time.Second)
	assert.Equal(t, uint(5), client.retry)
	assert.Equal(t, 3*time.Second, client.hc.Timeout)
}

func TestHttpClient_Do_Get(t *testing.T) {
	httpmock.RegisterResponder("GET", "http://test.com/api/user/info",
		httpmock.NewStringResponder(200, `{"username": "alice"}`))

	client := NewHttpClient("http://test.com")
	resp, err := client.Do(context.Background(), http.MethodGet, "/api/user/info", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "alice", result["username"])
}

func TestHttpClient_Do_WithRetry(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", "http://test.com/api/v1/retry",
		httpmock.NewErrorResponder(errors.New("network error")))

	var logs bytes.Buffer
	client := NewHttpClient("http://test.com").WithRetry(3).WithRetryDelay(time.Millisecond).
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	_, err := client.Do(context.Background(), http.MethodGet, "/api/v1/retry", nil)

	assert.Error(t, err)
	assert.ErrorIs(t, err, errorx.ErrTransport)
	// 1 initial attempt + 2 retries = 3 calls
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
	assert.Equal(t, 2, strings.Count(logs.String(), "retrying"))
	assert.NotContains(t, logs.String(), "attempt=3")
}

func TestHttpClient_Do_SingleAttemptDoesNotLogRetry(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("POST", "http://test.com/login",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	var logs bytes.Buffer
	client := NewHttpClient("http://test.com").WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	_, err := client.Do(context.Background(), http.MethodPost, "/login", map[string]string{"username": "alice"})

	require.ErrorIs(t, err, errorx.ErrTransport)
	require.Equal(t, 1, httpmock.GetTotalCallCount())
	require.NotContains(t, logs.String(), "retrying")
}

func TestHttpClient_ResponseIsNotRetried(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("POST", "http://test.com/register",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"msg":"boom"}`))

	client := NewHttpClient("http://test.com").WithRetry(3).WithRetryDelay(time.Millisecond)
	resp, err := client.Do(context.Background(), http.MethodPost, "/register", map[string]string{"k": "v"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestHttpClient_Do_Post(t *testing.T) {
	httpmock.RegisterResponder("POST", "http://test.com/api/v1/test",
		func(req *http.Request) (*http.Response, error) {
			var reqBody map[string]interface{}
			if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
				return httpmock.NewStringResponse(400, ""), nil
			}
			assert.Equal(t, "value", reqBody["key"])
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			return httpmock.NewStringResponse(http.StatusCreated, `{"status":"created"}`), nil
		},
	)

	client := NewHttpClient("http://test.com")
	resp, err := client.Do(context.Background(), http.MethodPost, "/api/v1/test", map[string]interface{}{"key": "value"})
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"created"}`, string(body))
}

func TestHttpClient_Do_NilBodyAndOptions(t *testing.T) {
	httpmock.RegisterResponder("POST", "http://test.com/api/delete/account",
		func(req *http.Request) (*http.Response, error) {
			if req.Body != nil {
				b, _ := io.ReadAll(req.Body)
				assert.Empty(t, b)
			}
			assert.Empty(t, req.Header.Get("Content-Type"))
			assert.Equal(t, "sid-1", req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(200, `{"msg":"deleted"}`), nil
		})

	client := NewHttpClient("http://test.com")
	resp, err := client.Do(context.Background(), http.MethodPost, "/api/delete/account", nil,
		AuthWithSession(TransportHeader, "", "sid-1"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
