package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/naoina/toml"
	"github.com/sethvargo/go-envconfig"
)

var configFile = ""

type Config struct {
	// base url of the authentication backend under test
	BaseURL string `env:"AUTH_EXERCISER_BASE_URL" default:"http://127.0.0.1:8080"`

	HTTP struct {
		TimeoutSEC int `env:"AUTH_EXERCISER_HTTP_TIMEOUT_SEC" default:"10"`
		// 1 means a single attempt, transport errors are not retried
		Attempts     int `env:"AUTH_EXERCISER_HTTP_ATTEMPTS" default:"1"`
		RetryDelayMS int `env:"AUTH_EXERCISER_HTTP_RETRY_DELAY_MS" default:"500"`
	}

	Auth struct {
		// how the session id travels on authenticated calls: header, cookie or both
		Transport  string `env:"AUTH_EXERCISER_AUTH_TRANSPORT" default:"header"`
		CookieName string `env:"AUTH_EXERCISER_AUTH_COOKIE_NAME" default:"session_id"`
	}

	Account struct {
		Email       string `env:"AUTH_EXERCISER_ACCOUNT_EMAIL" default:"tester@example.com"`
		Username    string `env:"AUTH_EXERCISER_ACCOUNT_USERNAME" default:"tester001"`
		Password    string `env:"AUTH_EXERCISER_ACCOUNT_PASSWORD" default:"tester001"`
		NewUsername string `env:"AUTH_EXERCISER_ACCOUNT_NEW_USERNAME" default:"tester003"`
		NewEmail    string `env:"AUTH_EXERCISER_ACCOUNT_NEW_EMAIL" default:""`
		NewPassword string `env:"AUTH_EXERCISER_ACCOUNT_NEW_PASSWORD" default:""`
		// append a random suffix to usernames and emails so every run uses a fresh account
		UniqueSuffix bool `env:"AUTH_EXERCISER_ACCOUNT_UNIQUE_SUFFIX" default:"false"`
	}

	Paths struct {
		SendEmailCode   string `env:"AUTH_EXERCISER_PATH_SEND_EMAIL_CODE" default:"/send/email"`
		Register        string `env:"AUTH_EXERCISER_PATH_REGISTER" default:"/register"`
		Login           string `env:"AUTH_EXERCISER_PATH_LOGIN" default:"/login"`
		ChangeUsername  string `env:"AUTH_EXERCISER_PATH_CHANGE_USERNAME" default:"/api/change/username"`
		ChangeEmail     string `env:"AUTH_EXERCISER_PATH_CHANGE_EMAIL" default:"/api/change/email"`
		DeleteAccount   string `env:"AUTH_EXERCISER_PATH_DELETE_ACCOUNT" default:"/api/delete/account"`
		UserInfo        string `env:"AUTH_EXERCISER_PATH_USER_INFO" default:"/api/user/info"`
		VerifyEmailCode string `env:"AUTH_EXERCISER_PATH_VERIFY_EMAIL_CODE" default:"/api/checkcode"`
		ResetPassword   string `env:"AUTH_EXERCISER_PATH_RESET_PASSWORD" default:"/api/reset/password"`
	}

	CodeProvider struct {
		// console, static or redis
		Kind           string `env:"AUTH_EXERCISER_CODE_PROVIDER" default:"console"`
		StaticCode     string `env:"AUTH_EXERCISER_CODE_PROVIDER_STATIC_CODE"`
		WaitTimeoutSEC int    `env:"AUTH_EXERCISER_CODE_PROVIDER_WAIT_TIMEOUT_SEC" default:"60"`
		PollIntervalMS int    `env:"AUTH_EXERCISER_CODE_PROVIDER_POLL_INTERVAL_MS" default:"500"`
	}

	// the backend's redis, read by the redis code provider
	Redis struct {
		Endpoint  string `env:"AUTH_EXERCISER_REDIS_ENDPOINT" default:"localhost:6379"`
		User      string `env:"AUTH_EXERCISER_REDIS_USER"`
		Password  string `env:"AUTH_EXERCISER_REDIS_PASSWORD"`
		DB        int    `env:"AUTH_EXERCISER_REDIS_DB" default:"0"`
		KeyPrefix string `env:"AUTH_EXERCISER_REDIS_KEY_PREFIX" default:"email_code:"`
	}

	Output struct {
		// text or json, used by the check report
		Format string `env:"AUTH_EXERCISER_OUTPUT_FORMAT" default:"text"`
		// pretty print response bodies
		Indent bool `env:"AUTH_EXERCISER_OUTPUT_INDENT" default:"true"`
	}

	Instrumentation struct {
		// OTLP gRPC collector, e.g. http://otel-collector:4317. Empty disables tracing and metrics.
		OTLPEndpoint string `env:"AUTH_EXERCISER_OTLP_ENDPOINT"`
		// also ship log records to the collector
		OTLPLogging bool `env:"AUTH_EXERCISER_OTLP_LOGGING"`
	}
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSEC) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelayMS) * time.Millisecond
}

func (c *Config) CodeWaitTimeout() time.Duration {
	return time.Duration(c.CodeProvider.WaitTimeoutSEC) * time.Second
}

func (c *Config) CodePollInterval() time.Duration {
	return time.Duration(c.CodeProvider.PollIntervalMS) * time.Millisecond
}

// Validate reports the first setting the exerciser cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}
	switch c.Auth.Transport {
	case "header", "cookie", "both":
	default:
		return fmt.Errorf("invalid auth transport %q, must be header, cookie or both", c.Auth.Transport)
	}
	if c.HTTP.Attempts < 1 {
		return fmt.Errorf("http attempts must be at least 1, got %d", c.HTTP.Attempts)
	}
	if c.HTTP.TimeoutSEC <= 0 {
		return fmt.Errorf("http timeout must be positive, got %d seconds", c.HTTP.TimeoutSEC)
	}
	if c.HTTP.RetryDelayMS < 0 {
		return fmt.Errorf("http retry delay must not be negative, got %d ms", c.HTTP.RetryDelayMS)
	}
	if c.CodeProvider.WaitTimeoutSEC <= 0 {
		return fmt.Errorf("code provider wait timeout must be positive, got %d seconds", c.CodeProvider.WaitTimeoutSEC)
	}
	if c.CodeProvider.PollIntervalMS <= 0 {
		return fmt.Errorf("code provider poll interval must be positive, got %d ms", c.CodeProvider.PollIntervalMS)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q, must be text or json", c.Output.Format)
	}
	if c.Instrumentation.OTLPEndpoint != "" {
		u, err := url.Parse(c.Instrumentation.OTLPEndpoint)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid otlp endpoint %q, want scheme://host:port", c.Instrumentation.OTLPEndpoint)
		}
	}
	return nil
}

func SetConfigFile(file string) {
	configFile = file
}

func LoadConfig() (*Config, error) {
	defer slog.Debug("end load config")
	slog.Debug("start load config")
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	toml.DefaultConfig.MissingField = func(typ reflect.Type, key string) error {
		return nil
	}

	if configFile != "" {
		f, err := os.Open(configFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		err = toml.NewDecoder(f).Decode(cfg)
		if err != nil {
			return nil, err
		}
	}

	// Environment variables always win over the config file. Values missing from both fall back to the
	// default tag of the struct field.
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:           cfg,
		DefaultOverwrite: true,
	})
	return cfg, err
}
