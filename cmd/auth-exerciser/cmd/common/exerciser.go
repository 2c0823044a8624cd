package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"opencsg.com/auth-exerciser/builder/codeprovider"
	"opencsg.com/auth-exerciser/builder/instrumentation"
	"opencsg.com/auth-exerciser/common/config"
	"opencsg.com/auth-exerciser/component"
)

const otelShutdownTimeout = 5 * time.Second

var (
	baseURL      string
	codeProvider string
	transport    string
)

// AddPersistentFlags registers the flags that override config for every subcommand.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "base url of the authentication backend, overrides config")
	root.PersistentFlags().StringVar(&codeProvider, "code-provider", "", "where verification codes come from: console, static or redis")
	root.PersistentFlags().StringVar(&transport, "auth-transport", "", "how the session id is sent: header, cookie or both")
}

// LoadConfig loads config and applies the command line overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config, %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if codeProvider != "" {
		cfg.CodeProvider.Kind = codeProvider
	}
	if transport != "" {
		cfg.Auth.Transport = transport
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewExerciser wires the exerciser for cmd: responses go to its stdout, code prompts to its stderr.
// The returned func flushes telemetry and releases what the code provider holds.
func NewExerciser(cmd *cobra.Command, cfg *config.Config) (component.ExerciserComponent, func(), error) {
	stopOtel, err := instrumentation.SetupOTelSDK(cmd.Context(), cfg, instrumentation.ServiceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup opentelemetry, %w", err)
	}
	shutdownOtel := func() {
		ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := stopOtel(ctx); err != nil {
			slog.Warn("failed to shutdown opentelemetry", slog.Any("error", err))
		}
	}
	provider, closeProvider, err := codeprovider.New(cmd.Context(), cfg, os.Stdin, cmd.ErrOrStderr())
	if err != nil {
		shutdownOtel()
		return nil, nil, err
	}
	release := func() {
		if err := closeProvider(); err != nil {
			slog.Warn("failed to close code provider", slog.Any("error", err))
		}
		shutdownOtel()
	}
	ec, err := component.NewExerciserComponent(cfg, provider, cmd.OutOrStdout())
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to create exerciser, %w", err)
	}
	return ec, release, nil
}
