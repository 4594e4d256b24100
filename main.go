package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/kfalck/ghostfill-cli/cmd"
)

func main() {
	// Subcommands block on this context; Ctrl+C tears sessions down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
