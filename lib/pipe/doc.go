// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipe creates and opens named fifos and anonymous pipes as
// [handle.IOHandle] values.
//
// Named pipes are created relative to a base directory, by default the
// storage-backed temporary directory from package pathdiscovery. Every
// [Handle] opened by [Open] removes its fifo from the filesystem on
// first close. Release the descriptor before closing to keep the
// entry.
//
// Opening a fifo read only blocks until a writer appears, and opening
// it write only blocks (or fails with ENXIO when non-blocking) until a
// reader appears. [handle.ModeWrite] opens both directions and never
// blocks; [handle.FlagMultiplexable] opens non-blocking.
//
// Creation is not atomic with the open: [handle.OnlyIfNotExist] and
// [handle.AlwaysNew] are emulated with separate mkfifo and unlink
// calls.
package pipe
