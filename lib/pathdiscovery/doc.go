// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathdiscovery finds a directory suitable for temporary files
// that must live on real storage: named pipes, lock files, scratch
// data that must survive memory pressure.
//
// Candidates are taken from the usual environment variables and then
// fixed system locations. The first candidate that exists, is a
// writable directory and is not backed by memory (tmpfs, ramfs) wins.
// If none is storage backed, the first usable candidate is returned
// instead.
//
// [StorageBackedTemporaryFilesDirectory] computes the answer once per
// process and caches the open directory handle. [Discover] is the
// uncached form, taking an explicit candidate list.
package pathdiscovery
