// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysio

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// HasOpenFileLocks reports whether the platform defines
// open-file-description record locks. A running kernel may still
// reject them (EINVAL before Linux 3.15).
const HasOpenFileLocks = true

// AtFDCWD names the working directory as an *at base descriptor.
const AtFDCWD = unix.AT_FDCWD

// Caching-related open flags. DirectIO is zero where the platform
// disables the page cache with a separate fcntl instead.
const (
	SyncIO   = unix.O_SYNC
	DataSync = unix.O_DSYNC
	DirectIO = unix.O_DIRECT
)

func lockCommand(scope Scope, wait bool) (int, error) {
	switch {
	case scope == ScopeOpenFile && wait:
		return unix.F_OFD_SETLKW, nil
	case scope == ScopeOpenFile:
		return unix.F_OFD_SETLK, nil
	case wait:
		return unix.F_SETLKW, nil
	default:
		return unix.F_SETLK, nil
	}
}

func pathPointer(path []byte) uintptr {
	if len(path) == 0 || path[len(path)-1] != 0 {
		panic("sysio: path is not NUL terminated")
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(path)))
}

// Openat opens path relative to dirfd. path must end with a zero byte;
// it is passed to the kernel as is. O_CLOEXEC is always added.
func Openat(dirfd int, path []byte, flags int, mode uint32) (int, error) {
	pointer := pathPointer(path)
	fd, err := retryCount(func() (int, error) {
		r, _, errno := unix.Syscall6(unix.SYS_OPENAT, uintptr(dirfd), pointer,
			uintptr(flags|unix.O_CLOEXEC), uintptr(mode), 0, 0)
		if errno != 0 {
			return -1, errno
		}
		return int(r), nil
	})
	runtime.KeepAlive(path)
	return fd, err
}

// Mkfifoat creates a fifo at path relative to dirfd.
func Mkfifoat(dirfd int, path []byte, mode uint32) error {
	pointer := pathPointer(path)
	err := retry(func() error {
		_, _, errno := unix.Syscall6(unix.SYS_MKNODAT, uintptr(dirfd), pointer,
			uintptr(mode|unix.S_IFIFO), 0, 0, 0)
		if errno != 0 {
			return errno
		}
		return nil
	})
	runtime.KeepAlive(path)
	return err
}

// Unlinkat removes the directory entry at path relative to dirfd.
func Unlinkat(dirfd int, path []byte) error {
	pointer := pathPointer(path)
	err := retry(func() error {
		_, _, errno := unix.Syscall(unix.SYS_UNLINKAT, uintptr(dirfd), pointer, 0)
		if errno != 0 {
			return errno
		}
		return nil
	})
	runtime.KeepAlive(path)
	return err
}

// Preadv reads into buffers in order starting at offset.
func Preadv(fd int, buffers [][]byte, offset int64) (int, error) {
	return retryCount(func() (int, error) { return unix.Preadv(fd, buffers, offset) })
}

// Pwritev writes buffers in order starting at offset.
func Pwritev(fd int, buffers [][]byte, offset int64) (int, error) {
	return retryCount(func() (int, error) { return unix.Pwritev(fd, buffers, offset) })
}

// Readv reads into buffers in order from the current position.
func Readv(fd int, buffers [][]byte) (int, error) {
	return retryCount(func() (int, error) { return unix.Readv(fd, buffers) })
}

// Writev writes buffers in order at the current position.
func Writev(fd int, buffers [][]byte) (int, error) {
	return retryCount(func() (int, error) { return unix.Writev(fd, buffers) })
}

// Pipe creates a connected pipe pair atomically. Both ends are
// close-on-exec; nonblocking sets O_NONBLOCK on both.
func Pipe(nonblocking bool) (read, write int, err error) {
	flags := unix.O_CLOEXEC
	if nonblocking {
		flags |= unix.O_NONBLOCK
	}
	var fds [2]int
	if err := unix.Pipe2(fds[:], flags); err != nil {
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}

// DisablePageCache turns off the page cache for fd after open. Linux
// does this with O_DIRECT at open or through F_SETFL, so there is
// nothing extra to do.
func DisablePageCache(fd int, disable bool) error {
	return nil
}
