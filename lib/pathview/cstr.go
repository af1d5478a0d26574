// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/bureau-foundation/llio/lib/process"
)

// CStrCapacity is the size of the scratch buffer used when a path must
// be copied before it can be handed to the kernel, including the
// terminating zero byte.
const CStrCapacity = 32768

// CStrBuffer is scratch storage for [View.CStr].
type CStrBuffer [CStrCapacity]byte

// abort terminates the process. Replaced in tests.
var abort = func(message string, args ...any) {
	process.Abort(slog.Default(), message, args...)
}

// CStr is a NUL-terminated byte string suitable for passing to a
// system call. It either aliases the caller's path memory (Borrowed
// reports true) or a CStrBuffer.
type CStr struct {
	terminated []byte
	borrowed   bool
}

// Bytes returns the path bytes including the terminating zero.
func (c CStr) Bytes() []byte { return c.terminated }

// Len returns the path length in bytes, excluding the terminator.
func (c CStr) Len() int { return len(c.terminated) - 1 }

// Pointer returns the address of the first byte.
func (c CStr) Pointer() *byte { return unsafe.SliceData(c.terminated) }

// Borrowed reports whether the string aliases the original view
// rather than a copy.
func (c CStr) Borrowed() bool { return c.borrowed }

// String returns the path without its terminator. It allocates.
func (c CStr) String() string { return string(c.terminated[:c.Len()]) }

// CStr materializes v as a NUL-terminated byte string.
//
// When v is byte encoded and the byte immediately after it, inside
// the capacity of the caller's slice, is zero, the caller's memory is
// returned as is. Otherwise the path is copied (and transcoded to
// UTF-8 for wide and UTF-16 views) into buffer and terminated there.
// A path that does not fit in buffer terminates the process: passing
// a truncated path to the kernel could touch the wrong file.
//
// The result is valid while v's backing array and buffer are.
func (v View) CStr(buffer *CStrBuffer) CStr {
	length := v.NativeSize()
	if length > CStrCapacity-1 {
		abort("path exceeds the kernel path buffer", "length", length, "capacity", CStrCapacity-1)
		buffer[0] = 0
		return CStr{terminated: buffer[:1]}
	}

	if v.state.encoding.byteBased() {
		data := v.state.bytes
		if cap(data) > length && data[:length+1][length] == 0 {
			return CStr{terminated: data[:length+1], borrowed: true}
		}
		copy(buffer[:], data)
		buffer[length] = 0
		return CStr{terminated: buffer[:length+1]}
	}

	written := transcodeInto(v.state, buffer[:CStrCapacity-1])
	buffer[written] = 0
	return CStr{terminated: buffer[:written+1]}
}

// transcodeInto converts a wide or UTF-16 view to UTF-8 in dst,
// aborting if the output does not fit.
func transcodeInto(c Component, dst []byte) int {
	batcher := newUTF8Batcher(c)
	written := 0
	for {
		batch := batcher.next()
		if batch == nil {
			return written
		}
		if written+len(batch) > len(dst) {
			abort("transcoded path exceeds the kernel path buffer",
				"encoding", c.encoding.String(), "capacity", len(dst))
			return written
		}
		written += copy(dst[written:], batch)
	}
}

var cstrBuffers = sync.Pool{
	New: func() any { return new(CStrBuffer) },
}

// WithCStr calls fn with v materialized as a NUL-terminated byte
// string, valid only for the duration of the call. Scratch buffers
// are pooled, so repeated calls do not allocate.
func (v View) WithCStr(fn func(CStr) error) error {
	buffer := cstrBuffers.Get().(*CStrBuffer)
	defer cstrBuffers.Put(buffer)
	return fn(v.CStr(buffer))
}
