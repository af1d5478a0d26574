// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/llio/internal/sysio"
)

// WholeFile as a lock length extends the lock to the end of the file,
// however large the file grows.
const WholeFile uint64 = 0

// reservedBit is the top bit of a lock extent, which the record lock
// API cannot represent.
const reservedBit = uint64(1) << 63

// openFileLocksRejected is set once the running kernel has refused an
// open-file-description lock. Later requests go straight to process
// scope.
var openFileLocksRejected atomic.Bool

// ExtentGuard holds a byte-range lock on an IOHandle until Unlock.
type ExtentGuard struct {
	handle        *IOHandle
	offset        uint64
	length        uint64
	exclusive     bool
	processScoped bool
}

// Handle returns the locked handle, or nil once the guard is unlocked
// or released.
func (g *ExtentGuard) Handle() *IOHandle { return g.handle }

// Offset returns the first locked byte.
func (g *ExtentGuard) Offset() uint64 { return g.offset }

// Length returns the number of locked bytes, or WholeFile.
func (g *ExtentGuard) Length() uint64 { return g.length }

// Exclusive reports whether the lock excludes other readers.
func (g *ExtentGuard) Exclusive() bool { return g.exclusive }

// ProcessScoped reports whether the lock was taken in process scope.
// Other handles in the same process do not conflict with such a lock,
// and closing any descriptor of the file in this process drops it.
func (g *ExtentGuard) ProcessScoped() bool { return g.processScoped }

// Locked reports whether the guard still holds its lock.
func (g *ExtentGuard) Locked() bool { return g.handle != nil }

// Unlock releases the lock. Calling it again does nothing.
func (g *ExtentGuard) Unlock() {
	if g.handle == nil {
		return
	}
	handle := g.handle
	g.handle = nil
	handle.Unlock(g.offset, g.length)
}

// Release detaches the guard without unlocking; the lock stays held
// until the caller unlocks it through the handle or closes it.
func (g *ExtentGuard) Release() {
	g.handle = nil
}

// maskExtent clears the reserved top bit of offset and length,
// warning when either had it set.
func (h *IOHandle) maskExtent(op string, offset, length uint64) (int64, int64) {
	if (offset|length)&reservedBit != 0 {
		h.Logger().Warn("masked reserved top bit of lock extent",
			"op", op, "fd", h.fd, "offset", offset, "length", length)
		offset &^= reservedBit
		length &^= reservedBit
	}
	return int64(offset), int64(length)
}

// Lock takes an advisory lock on length bytes from offset; WholeFile
// as the length extends to the end of the file. Only Immediate and
// Infinite deadlines are supported. With Immediate, a conflicting lock
// yields ErrTimeout.
//
// Locks are owned by the open file description, so they conflict with
// locks through any other handle, in this process or another. On a
// kernel without that facility the lock is taken in process scope
// instead, the handle gains DispositionByteLockInsanity and the guard
// reports ProcessScoped.
func (h *IOHandle) Lock(offset, length uint64, exclusive bool, d Deadline) (*ExtentGuard, error) {
	if !h.IsValid() {
		return nil, fmt.Errorf("lock: %w", ErrClosed)
	}
	if err := requireSynchronous("lock", d); err != nil {
		return nil, err
	}
	start, size := h.maskExtent("lock", offset, length)
	wait := d.IsInfinite()
	kind := sysio.Shared
	if exclusive {
		kind = sysio.Exclusive
	}

	processScoped := false
	var err error
	switch {
	case !sysio.HasOpenFileLocks && start == 0 && size == 0:
		err = h.wrapLockError("flock", sysio.Flock(h.fd, kind, wait), wait)
	default:
		var scope sysio.Scope
		scope, err = h.recordLock(kind, start, size, wait)
		processScoped = scope == sysio.ScopeProcess
	}
	if err != nil {
		return nil, err
	}
	return &ExtentGuard{
		handle:        h,
		offset:        uint64(start),
		length:        uint64(size),
		exclusive:     exclusive,
		processScoped: processScoped,
	}, nil
}

// recordLock takes a record lock in the narrowest scope the kernel
// supports and returns the scope used.
func (h *IOHandle) recordLock(kind sysio.LockKind, start, size int64, wait bool) (sysio.Scope, error) {
	if !h.ByteLockInsanity() && !openFileLocksRejected.Load() {
		err := sysio.RecordLock(h.fd, sysio.ScopeOpenFile, kind, start, size, wait)
		if !errors.Is(err, unix.EINVAL) {
			return sysio.ScopeOpenFile, h.wrapLockError("fcntl F_OFD_SETLK", err, wait)
		}
		openFileLocksRejected.Store(true)
	}
	h.degradeToProcessScope()
	err := sysio.RecordLock(h.fd, sysio.ScopeProcess, kind, start, size, wait)
	return sysio.ScopeProcess, h.wrapLockError("fcntl F_SETLK", err, wait)
}

// degradeToProcessScope records the capability downgrade, warning the
// first time it happens to this handle.
func (h *IOHandle) degradeToProcessScope() {
	if h.set(DispositionByteLockInsanity, true) {
		h.Logger().Warn("byte-range locks degraded to process scope; handles in this process no longer exclude each other",
			"fd", h.fd)
	}
}

// wrapLockError translates the would-block family into ErrTimeout for
// polling attempts.
func (h *IOHandle) wrapLockError(op string, err error, wait bool) error {
	if err == nil {
		return nil
	}
	if !wait && (errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EACCES) || errors.Is(err, unix.EWOULDBLOCK)) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return resourceError(op, err)
}

// Unlock releases a lock taken by Lock with the same offset and
// length, following the same fallback chain. Failure leaves the lock
// state unknown; it is logged and the process terminated.
func (h *IOHandle) Unlock(offset, length uint64) {
	if !h.IsValid() {
		abort(h.Logger(), "unlock on an empty handle", "offset", offset, "length", length)
		return
	}
	start, size := h.maskExtent("unlock", offset, length)

	var err error
	switch {
	case !sysio.HasOpenFileLocks && start == 0 && size == 0:
		err = sysio.Flock(h.fd, sysio.Unlock, false)
	case h.ByteLockInsanity() || openFileLocksRejected.Load():
		err = sysio.RecordLock(h.fd, sysio.ScopeProcess, sysio.Unlock, start, size, false)
	default:
		err = sysio.RecordLock(h.fd, sysio.ScopeOpenFile, sysio.Unlock, start, size, false)
		if errors.Is(err, unix.EINVAL) {
			openFileLocksRejected.Store(true)
			h.degradeToProcessScope()
			err = sysio.RecordLock(h.fd, sysio.ScopeProcess, sysio.Unlock, start, size, false)
		}
	}
	if err != nil {
		abort(h.Logger(), "unlock failed; lock state is unknown",
			"fd", h.fd, "offset", start, "length", size, "error", err)
	}
}
