package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"opencsg.com/auth-exerciser/common/errorx"
)

func NewHttpClient(endpoint string, opts ...RequestOption) *HttpClient {
	return &HttpClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		hc:         &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		authOpts:   opts,
		logger:     slog.Default(),
		retry:      1,
		retryDelay: 100 * time.Millisecond,
	}
}

type HttpClient struct {
	endpoint   string
	hc         *http.Client
	authOpts   []RequestOption
	logger     *slog.Logger
	retry      uint
	retryDelay time.Duration
}

// WithRetry sets the total number of attempts. Only requests that got no response are attempted again.
func (c *HttpClient) WithRetry(attempts uint) *HttpClient {
	c.retry = attempts
	return c
}

func (c *HttpClient) WithRetryDelay(delay time.Duration) *HttpClient {
	c.retryDelay = delay
	return c
}

func (c *HttpClient) WithTimeout(timeout time.Duration) *HttpClient {
	c.hc.Timeout = timeout
	return c
}

func (c *HttpClient) WithLogger(logger *slog.Logger) *HttpClient {
	c.logger = logger
	return c
}

// Do sends data as a JSON body (no body when data is nil) and returns the response whatever its status.
// The caller closes the body.
func (c *HttpClient) Do(ctx context.Context, method, path string, data interface{}, opts ...RequestOption) (*http.Response, error) {
	fullPath := c.endpoint + path
	var body []byte
	if data != nil {
		var err error
		body, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body, path:%s, err:%w", fullPath, err)
		}
	}

	attempts := c.retry
	if attempts == 0 {
		attempts = 1
	}
	var resp *http.Response
	err := retry.Do(
		func() error {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, fullPath, reader)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("Accept", "application/json")
			for _, opt := range c.authOpts {
				opt.Set(req)
			}
			for _, opt := range opts {
				opt.Set(req)
			}

			start := time.Now()
			resp, err = c.hc.Do(req)
			if err != nil {
				return fmt.Errorf("failed to do http request, path:%s, err:%w", fullPath, err)
			}
			c.logger.DebugContext(ctx, "http request done",
				slog.String("method", method),
				slog.String("path", fullPath),
				slog.Int("status", resp.StatusCode),
				slog.Duration("latency", time.Since(start)),
			)
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			// retry-go reports the final failure here as well
			if uint(n)+1 >= attempts {
				return
			}
			c.logger.WarnContext(ctx, "http request failed, retrying",
				slog.Int("attempt", int(n)+1),
				slog.Int("max_attempts", int(attempts)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errorx.ErrTransport, err)
	}
	return resp, nil
}
