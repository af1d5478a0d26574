// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux || darwin

package sysio

import (
	"errors"

	"golang.org/x/sys/unix"
)

// MaxVectors is the largest number of buffers accepted by a single
// vectored transfer (IOV_MAX).
const MaxVectors = 1024

// Scope selects which owner a byte-range record lock belongs to.
type Scope uint8

const (
	// ScopeOpenFile locks belong to the open file description, so two
	// descriptors opened separately exclude each other even within one
	// process.
	ScopeOpenFile Scope = iota
	// ScopeProcess locks belong to the process. Any descriptor for the
	// file in the same process shares them, and closing any of those
	// descriptors drops them all.
	ScopeProcess
)

func (s Scope) String() string {
	if s == ScopeProcess {
		return "process"
	}
	return "open-file"
}

// LockKind is the type of a record or whole-file lock.
type LockKind uint8

const (
	Unlock LockKind = iota
	Shared
	Exclusive
)

// retry calls fn until it fails with something other than EINTR.
func retry(fn func() error) error {
	for {
		err := fn()
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

// retryCount is retry for calls returning a count.
func retryCount(fn func() (int, error)) (int, error) {
	for {
		n, err := fn()
		if !errors.Is(err, unix.EINTR) {
			return n, err
		}
	}
}

// Close closes fd. It is never retried: after EINTR the descriptor is
// already gone on Linux, and retrying could close a reused number.
func Close(fd int) error {
	return unix.Close(fd)
}

// Fsync flushes fd's data and metadata to storage.
func Fsync(fd int) error {
	return retry(func() error { return unix.Fsync(fd) })
}

// Dup duplicates fd onto the lowest free descriptor with close-on-exec
// set.
func Dup(fd int) (int, error) {
	return retryCount(func() (int, error) { return unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0) })
}

// StatusFlags returns fd's file status flags (F_GETFL).
func StatusFlags(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
}

// SetStatusFlags replaces fd's file status flags (F_SETFL). The kernel
// ignores bits it does not allow to change after open.
func SetStatusFlags(fd, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return err
}

// Fstat describes fd.
func Fstat(fd int) (unix.Stat_t, error) {
	var stat unix.Stat_t
	err := retry(func() error { return unix.Fstat(fd, &stat) })
	return stat, err
}

// Flock applies or releases a whole-file advisory lock. With wait
// false a conflicting lock fails with EWOULDBLOCK.
func Flock(fd int, kind LockKind, wait bool) error {
	operation := unix.LOCK_UN
	switch kind {
	case Shared:
		operation = unix.LOCK_SH
	case Exclusive:
		operation = unix.LOCK_EX
	}
	if !wait && kind != Unlock {
		operation |= unix.LOCK_NB
	}
	return retry(func() error { return unix.Flock(fd, operation) })
}

// RecordLock applies or releases a byte-range record lock covering
// length bytes from offset; a length of zero extends to the end of the
// file however large it grows. With wait false a conflicting lock
// fails with EAGAIN or EACCES.
func RecordLock(fd int, scope Scope, kind LockKind, offset, length int64, wait bool) error {
	command, err := lockCommand(scope, wait)
	if err != nil {
		return err
	}
	lock := unix.Flock_t{
		Whence: 0,
		Start:  offset,
		Len:    length,
	}
	switch kind {
	case Shared:
		lock.Type = unix.F_RDLCK
	case Exclusive:
		lock.Type = unix.F_WRLCK
	default:
		lock.Type = unix.F_UNLCK
	}
	return retry(func() error { return unix.FcntlFlock(uintptr(fd), command, &lock) })
}

// Statfs describes the filesystem holding path.
func Statfs(path string) (unix.Statfs_t, error) {
	var stat unix.Statfs_t
	err := retry(func() error { return unix.Statfs(path, &stat) })
	return stat, err
}

// Errno extracts the errno carried by err, or zero.
func Errno(err error) unix.Errno {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return 0
}
