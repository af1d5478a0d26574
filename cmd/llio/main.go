// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// llio is a command-line front end to the llio handle, path and pipe
// libraries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/cmd/llio/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own diagnosis (like a lock held
		// elsewhere) return an ExitError. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Library code without a handle-scoped logger (path overflow
	// aborts) logs through the default logger.
	slog.SetDefault(cli.NewCommandLogger(os.Stderr, slog.LevelInfo))

	root := commands.Root(commands.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	return root.Execute(ctx, os.Args[1:])
}
