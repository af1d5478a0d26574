// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysio is the only llio code that issues system calls. It
// wraps golang.org/x/sys/unix with the small set of primitives the
// handle layer needs: opening relative to a directory descriptor with
// a NUL-terminated path, status flag negotiation, positional vectored
// transfers, byte-range record locks in both open-file-description and
// process scope, whole-file advisory locks, and fifo management.
//
// Every function returns the raw [syscall.Errno] on failure so callers
// can classify it; wrapping into portable errors happens one layer up.
// EINTR is retried here and never escapes.
//
// Paths arrive as byte slices that include their terminating zero, as
// produced by pathview's CStr. On Linux they are handed to the kernel
// without copying.
//
// Linux and Darwin are supported. Darwin has no open-file-description
// locks: [RecordLock] with [ScopeOpenFile] reports EINVAL there, the
// same answer an old Linux kernel gives, so callers exercise one
// fallback path on both.
package sysio
