// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package handle owns operating system file and pipe descriptors.
//
// A [Handle] is either empty or owns exactly one descriptor. It records
// the kernel caching mode negotiated for the descriptor and a
// [Disposition] bit set describing what the descriptor can do. Handles
// are closed explicitly with [Handle.Close]. A valid handle that
// becomes unreachable is closed by a runtime cleanup; if that close
// fails there is nobody left to tell, so the process is terminated
// through [process.Abort].
//
// [IOHandle] adds positional vectored reads and writes and advisory
// byte-range locking. Reads and writes take a [Request] of buffers and
// an offset, issue exactly one vectored system call, and return the
// same buffers truncated to what was actually transferred:
//
//	buffers, err := file.Read(handle.Request{Buffers: [][]byte{header, body}, Offset: 0}, handle.Infinite())
//
// Locks are taken in open-file-description scope so two handles in one
// process exclude each other. When the running kernel lacks that
// facility the handle falls back to process-scoped locks, logs a
// warning once and sets [DispositionByteLockInsanity]; the returned
// [ExtentGuard] also reports it through ProcessScoped.
//
// Errors are values: [ResourceError] carries the native errno,
// [ErrTimeout] reports that a non-blocking attempt would have blocked,
// and [ErrUnsupported] marks requests this synchronous layer does not
// offer (finite deadlines, too many buffers).
//
// [Open] and [OpenDirectory] are minimal constructors for regular files
// and base directories; package pipe builds fifo handles on the same
// types.
package handle
