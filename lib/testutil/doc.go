// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for llio packages.
//
// [RequireReceive] bounds a wait on a goroutine blocked in the kernel
// (a lock waiting for its holder, a fifo open waiting for a peer), so
// a wake-up that never comes fails the test instead of hanging it.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, used for fifo and file names that must not collide
// between parallel tests sharing a directory.
//
// [WriteFile] seeds a file with known content and [LogBuffer] returns
// a JSON logger whose records tests can inspect.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no llio-internal dependencies.
package testutil
