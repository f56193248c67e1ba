package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/bindexpr/cli"
	"github.com/ardnew/bindexpr/log"
)

func main() {
	// Interrupts cancel a running digest between passes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.ErrorContext(ctx, "bindexpr failed", slog.Any("error", err))
		os.Exit(1)
	}
}
