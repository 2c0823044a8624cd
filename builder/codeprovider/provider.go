package codeprovider

import (
	"context"
	"fmt"
	"io"

	"opencsg.com/auth-exerciser/builder/store/cache"
	"opencsg.com/auth-exerciser/common/config"
	"opencsg.com/auth-exerciser/common/errorx"
)

// Provider obtains the verification code the backend mailed to email.
type Provider interface {
	ObtainCode(ctx context.Context, email string) (string, error)
}

type Kind string

const (
	KindConsole Kind = "console"
	KindStatic  Kind = "static"
	KindRedis   Kind = "redis"
)

// New builds the provider selected by the config. in and out are only used by the console provider.
// The returned close func releases the redis connection, if any.
func New(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (Provider, func() error, error) {
	noop := func() error { return nil }
	switch Kind(cfg.CodeProvider.Kind) {
	case KindConsole:
		return NewConsoleProvider(in, out), noop, nil
	case KindStatic:
		return NewStaticProvider(cfg.CodeProvider.StaticCode), noop, nil
	case KindRedis:
		client, err := cache.NewCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Endpoint,
			Username: cfg.Redis.User,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis for verification codes: %w", err)
		}
		p := NewRedisProvider(client, cfg.Redis.KeyPrefix, cfg.CodeWaitTimeout(), cfg.CodePollInterval())
		return p, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errorx.ErrUnknownProvider, cfg.CodeProvider.Kind)
	}
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, email string) (string, error)

func (f ProviderFunc) ObtainCode(ctx context.Context, email string) (string, error) {
	return f(ctx, email)
}
