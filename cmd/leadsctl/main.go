package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"salesleads/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
