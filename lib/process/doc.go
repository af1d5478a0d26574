// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process centralizes the two ways an llio program may end
// abruptly:
//
//   - [Fatal] reports an error from main() to stderr and exits 1. Use
//     it where the structured logger may not exist yet.
//   - [Abort] logs a broken invariant through the structured logger
//     and exits with [AbortExitCode]. Library code calls it only when
//     no caller remains that could observe a returned error: closing
//     a handle during teardown, releasing a byte-range lock, or
//     handing an untruncatable path to the kernel.
//
// This package depends on no other llio packages.
package process
