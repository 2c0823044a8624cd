package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/call"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/check"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/common"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/run"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/version"
	"opencsg.com/auth-exerciser/common/config"
	"opencsg.com/auth-exerciser/common/log"
)

var (
	logLevel   string
	logFormat  string
	logFile    string
	configFile string
)

var RootCmd = &cobra.Command{
	Use:          "auth-exerciser",
	Short:        "Drive a live authentication backend through its register, login and account flows.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "set log level to debug, info, warn or error (case-insensitive). default is INFO")
	RootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "text", "set log format to json or text. default is text")
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append logs to this file")
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path of a toml config file, environment variables override it")
	common.AddPersistentFlags(RootCmd)
	RootCmd.DisableAutoGenTag = true

	cobra.OnInitialize(func() {
		setupLog(logLevel, logFormat, logFile)
		config.SetConfigFile(configFile)
	})

	RootCmd.AddCommand(
		run.Cmd,
		check.Cmd,
		call.Cmd,
		version.Cmd,
	)
}

// setupLog sends logs to stderr, stdout carries the backend's responses.
func setupLog(lvl, format, file string) {
	level, err := log.ParseLevel(lvl)
	// level stays INFO if parsing failed
	if err != nil {
		fmt.Fprintln(os.Stderr, "input invalid log level, use default log level INFO")
	}
	opt := &slog.HandlerOptions{AddSource: false, Level: level}
	writers := []io.Writer{os.Stderr}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", file, err)
		} else {
			writers = append(writers, f)
		}
	}
	slog.SetDefault(log.NewLogger(format, opt, writers...))
	slog.Debug("init logger", slog.String("level", level.String()), slog.String("format", format))
}
