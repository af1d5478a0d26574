// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysio

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// HasOpenFileLocks reports whether the platform defines
// open-file-description record locks.
const HasOpenFileLocks = false

// AtFDCWD names the working directory as an *at base descriptor.
const AtFDCWD = unix.AT_FDCWD

// Caching-related open flags. Darwin has no O_DIRECT; see
// DisablePageCache.
const (
	SyncIO   = unix.O_SYNC
	DataSync = unix.O_DSYNC
	DirectIO = 0
)

func lockCommand(scope Scope, wait bool) (int, error) {
	if scope == ScopeOpenFile {
		return 0, unix.EINVAL
	}
	if wait {
		return unix.F_SETLKW, nil
	}
	return unix.F_SETLK, nil
}

// pathString drops the terminator; x/sys/unix copies into its own
// terminated buffer.
func pathString(path []byte) string {
	if len(path) == 0 || path[len(path)-1] != 0 {
		panic("sysio: path is not NUL terminated")
	}
	return string(path[:len(path)-1])
}

// Openat opens path relative to dirfd. path must end with a zero byte.
// O_CLOEXEC is always added.
func Openat(dirfd int, path []byte, flags int, mode uint32) (int, error) {
	name := pathString(path)
	return retryCount(func() (int, error) { return unix.Openat(dirfd, name, flags|unix.O_CLOEXEC, mode) })
}

// Mkfifoat creates a fifo at path relative to dirfd.
func Mkfifoat(dirfd int, path []byte, mode uint32) error {
	name := pathString(path)
	return retry(func() error { return unix.Mkfifoat(dirfd, name, mode) })
}

// Unlinkat removes the directory entry at path relative to dirfd.
func Unlinkat(dirfd int, path []byte) error {
	name := pathString(path)
	return retry(func() error { return unix.Unlinkat(dirfd, name, 0) })
}

// Preadv reads into buffers in order starting at offset, one pread per
// buffer, stopping at the first short transfer.
func Preadv(fd int, buffers [][]byte, offset int64) (int, error) {
	total := 0
	for _, buffer := range buffers {
		if len(buffer) == 0 {
			continue
		}
		n, err := retryCount(func() (int, error) { return unix.Pread(fd, buffer, offset+int64(total)) })
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return n, err
		}
		total += n
		if n < len(buffer) {
			break
		}
	}
	return total, nil
}

// Pwritev writes buffers in order starting at offset, one pwrite per
// buffer, stopping at the first short transfer.
func Pwritev(fd int, buffers [][]byte, offset int64) (int, error) {
	total := 0
	for _, buffer := range buffers {
		if len(buffer) == 0 {
			continue
		}
		n, err := retryCount(func() (int, error) { return unix.Pwrite(fd, buffer, offset+int64(total)) })
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return n, err
		}
		total += n
		if n < len(buffer) {
			break
		}
	}
	return total, nil
}

// Readv reads into buffers in order from the current position.
func Readv(fd int, buffers [][]byte) (int, error) {
	total := 0
	for _, buffer := range buffers {
		if len(buffer) == 0 {
			continue
		}
		n, err := retryCount(func() (int, error) { return unix.Read(fd, buffer) })
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return n, err
		}
		total += n
		if n < len(buffer) {
			break
		}
	}
	return total, nil
}

// Writev writes buffers in order at the current position.
func Writev(fd int, buffers [][]byte) (int, error) {
	total := 0
	for _, buffer := range buffers {
		if len(buffer) == 0 {
			continue
		}
		n, err := retryCount(func() (int, error) { return unix.Write(fd, buffer) })
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return n, err
		}
		total += n
		if n < len(buffer) {
			break
		}
	}
	return total, nil
}

// Pipe creates a connected pipe pair. Darwin has no pipe2, so
// close-on-exec is applied immediately after creation under the fork
// lock.
func Pipe(nonblocking bool) (read, write int, err error) {
	var fds [2]int
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	if err := unix.Pipe(fds[:]); err != nil {
		return -1, -1, err
	}
	for _, fd := range fds {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return -1, -1, err
		}
		if nonblocking {
			if err := unix.SetNonblock(fd, true); err != nil {
				unix.Close(fds[0])
				unix.Close(fds[1])
				return -1, -1, err
			}
		}
	}
	return fds[0], fds[1], nil
}

// DisablePageCache sets or clears F_NOCACHE on fd.
func DisablePageCache(fd int, disable bool) error {
	value := 0
	if disable {
		value = 1
	}
	_, err := unix.FcntlInt(uintptr(fd), unix.F_NOCACHE, value)
	return err
}
