package codeprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"opencsg.com/auth-exerciser/builder/store/cache"
	"opencsg.com/auth-exerciser/common/errorx"
)

type codeStore interface {
	Get(ctx context.Context, key string) (string, error)
}

type redisProvider struct {
	store    codeStore
	prefix   string
	timeout  time.Duration
	interval time.Duration
}

// NewRedisProvider reads the code straight from the backend's redis, where it is kept under prefix+email
// until it expires. The key is polled every interval until it shows up or timeout elapses.
func NewRedisProvider(store codeStore, prefix string, timeout, interval time.Duration) Provider {
	return &redisProvider{
		store:    store,
		prefix:   prefix,
		timeout:  timeout,
		interval: interval,
	}
}

func (p *redisProvider) ObtainCode(ctx context.Context, email string) (string, error) {
	key := p.prefix + email
	waitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var code string
	err := retry.Do(
		func() error {
			v, err := p.store.Get(waitCtx, key)
			if errors.Is(err, cache.Nil) {
				return errorx.ErrCodeNotFound
			}
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to read verification code from redis: %w", err))
			}
			code = v
			return nil
		},
		retry.Attempts(0),
		retry.Context(waitCtx),
		retry.Delay(p.interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errorx.ErrCodeNotFound)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.DebugContext(ctx, "verification code not in redis yet", slog.String("key", key), slog.Int("attempt", int(n)+1))
		}),
	)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: key %s did not appear within %s", errorx.ErrCodeNotFound, key, p.timeout)
		}
		return "", err
	}
	if code == "" {
		return "", errorx.ErrEmptyCode
	}
	return code, nil
}
