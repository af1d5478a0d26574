// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrTimeout reports that a non-blocking attempt would have
	// blocked. Callers may poll again.
	ErrTimeout = errors.New("handle: operation would block")

	// ErrUnsupported reports a request this synchronous layer does not
	// offer. Nothing was attempted. It matches errors.ErrUnsupported.
	ErrUnsupported = fmt.Errorf("handle: %w", errors.ErrUnsupported)

	// ErrTooManyBuffers reports a request with more buffers than a
	// single vectored system call accepts. It matches ErrUnsupported.
	ErrTooManyBuffers = fmt.Errorf("%w: too many buffers", ErrUnsupported)

	// ErrClosed reports an operation on an empty handle.
	ErrClosed = errors.New("handle: handle is empty")
)

// ResourceError is a failed system call. Err is normally a
// syscall.Errno, so errors.Is matches the portable fs errors
// (fs.ErrNotExist, fs.ErrExist, fs.ErrPermission) and errors.As
// recovers the native code.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Errno returns the native error code, or zero when Err is not an
// errno.
func (e *ResourceError) Errno() syscall.Errno {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}

func resourceError(op string, err error) error {
	return &ResourceError{Op: op, Err: err}
}
