// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"log/slog"
	"os"
)

// AbortExitCode is the status used by Abort, matching a shell's report
// of a process killed by SIGABRT.
const AbortExitCode = 134

// exit is os.Exit, replaced in tests.
var exit = os.Exit

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() when the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	exit(1)
}

// Abort logs message at error level with the given attributes and
// terminates the process with AbortExitCode. A nil logger falls back
// to slog.Default().
func Abort(logger *slog.Logger, message string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(message, append(args, "fatal", true)...)
	exit(AbortExitCode)
}
