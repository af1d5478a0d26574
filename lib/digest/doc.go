// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes BLAKE3 digests of handle contents using
// scatter reads.
//
// [Handle] reads through a set of equally sized buffers with one
// vectored read per round trip and feeds whatever the kernel filled
// into the hasher. Seekable handles are read from offset zero; pipes
// and other streams are read until end of stream. The read loop checks
// its context between round trips, so a digest of a pipe whose writer
// never closes can be abandoned.
//
// Digests are formatted as 64 lower-case hexadecimal characters, the
// same form [Parse] accepts.
package digest
