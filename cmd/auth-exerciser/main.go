package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	command := cmd.RootCmd
	if err := command.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
