// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/bureau-foundation/llio/internal/sysio"
	"github.com/bureau-foundation/llio/lib/process"
)

// abort terminates the process after logging. Replaced in tests.
var abort = process.Abort

// Handle owns at most one operating system descriptor. The zero value
// is not usable; construct handles with Open, OpenDirectory, FromFD or
// the pipe package.
//
// A Handle must not be copied. Use Clone for a second descriptor, or
// Move to transfer ownership.
type Handle struct {
	fd      int
	caching Caching
	flags   Flag
	state   *state
	cleanup runtime.Cleanup
	armed   bool
}

// state is the part of a handle its teardown reads. It lives in its
// own allocation so the cleanup can hold it without keeping the handle
// reachable.
type state struct {
	disposition atomic.Uint32
	logger      atomic.Pointer[slog.Logger]
	onAbandon   atomic.Pointer[func(*slog.Logger)]
}

func (s *state) logOrDefault() *slog.Logger {
	if logger := s.logger.Load(); logger != nil {
		return logger
	}
	return slog.Default()
}

// abandoned is the argument of the runtime cleanup.
type abandoned struct {
	fd    int
	state *state
}

// newHandle builds an unarmed handle around fd.
func newHandle(fd int, caching Caching, flags Flag, disposition Disposition) Handle {
	h := Handle{fd: fd, caching: caching, flags: flags, state: &state{}}
	h.state.disposition.Store(uint32(disposition))
	return h
}

// arm registers the teardown that closes h's descriptor if owner
// becomes unreachable while h is still valid. owner is the outermost
// object embedding h.
func arm[T any](owner *T, h *Handle) {
	h.cleanup = runtime.AddCleanup(owner, teardown, abandoned{fd: h.fd, state: h.state})
	h.armed = true
}

// disarm cancels the teardown registered by arm.
func (h *Handle) disarm() {
	if h.armed {
		h.cleanup.Stop()
		h.armed = false
	}
}

// teardown closes a descriptor whose handle was dropped while valid. A
// failure here has no caller to report to.
func teardown(a abandoned) {
	logger := a.state.logOrDefault()
	if hook := a.state.onAbandon.Load(); hook != nil {
		(*hook)(logger)
	}
	disposition := Disposition(a.state.disposition.Load())
	if disposition&DispositionSafetyFsyncs != 0 && disposition&DispositionWritable != 0 {
		if err := sysio.Fsync(a.fd); err != nil {
			abort(logger, "fsync of abandoned handle failed", "fd", a.fd, "error", err)
			return
		}
	}
	if err := sysio.Close(a.fd); err != nil {
		abort(logger, "close of abandoned handle failed", "fd", a.fd, "error", err)
	}
}

// FromFD adopts fd. The descriptor's access mode, kind and non-blocking
// state are read back from the kernel; caching is recorded as given
// and not applied.
func FromFD(fd int, caching Caching, flags Flag) (*Handle, error) {
	disposition, err := probe(fd)
	if err != nil {
		return nil, err
	}
	h := &Handle{}
	*h = newHandle(fd, caching, flags, disposition|cachingDisposition(caching, flags))
	arm(h, h)
	return h, nil
}

// probe reads back what the kernel knows about fd.
func probe(fd int) (Disposition, error) {
	status, err := sysio.StatusFlags(fd)
	if err != nil {
		return 0, resourceError("fcntl F_GETFL", err)
	}
	stat, err := sysio.Fstat(fd)
	if err != nil {
		return 0, resourceError("fstat", err)
	}
	disposition := dispositionFromStatus(status) | kindFor(uint32(stat.Mode))
	if status&sysio.DirectIO != 0 && sysio.DirectIO != 0 {
		disposition |= DispositionAlignedIO
	}
	return disposition, nil
}

func cachingDisposition(caching Caching, flags Flag) Disposition {
	var d Disposition
	if caching.flags().aligned {
		d |= DispositionAlignedIO
	}
	if caching == CachingSafetyFsyncs && flags&FlagDisableSafetyFsyncs == 0 {
		d |= DispositionSafetyFsyncs
	}
	return d
}

// FD returns the owned descriptor, or -1 for an empty handle.
func (h *Handle) FD() int { return h.fd }

// IsValid reports whether h owns a descriptor.
func (h *Handle) IsValid() bool { return h.fd >= 0 }

// Caching returns the caching mode last successfully negotiated.
func (h *Handle) Caching() Caching { return h.caching }

// Flags returns the flags the handle was created with.
func (h *Handle) Flags() Flag { return h.flags }

// Disposition returns the descriptor's current disposition bits.
func (h *Handle) Disposition() Disposition {
	if h.state == nil {
		return 0
	}
	return Disposition(h.state.disposition.Load())
}

func (h *Handle) has(d Disposition) bool { return h.Disposition()&d != 0 }

func (h *Handle) set(d Disposition, on bool) (changed bool) {
	if h.state == nil {
		h.state = &state{}
	}
	for {
		old := h.state.disposition.Load()
		updated := old &^ uint32(d)
		if on {
			updated |= uint32(d)
		}
		if old == updated {
			return false
		}
		if h.state.disposition.CompareAndSwap(old, updated) {
			return true
		}
	}
}

func (h *Handle) IsReadable() bool        { return h.has(DispositionReadable) }
func (h *Handle) IsWritable() bool        { return h.has(DispositionWritable) }
func (h *Handle) IsAppendOnly() bool      { return h.has(DispositionAppendOnly) }
func (h *Handle) IsNonBlocking() bool     { return h.has(DispositionNonBlocking) }
func (h *Handle) IsSeekable() bool        { return h.has(DispositionSeekable) }
func (h *Handle) RequiresAlignedIO() bool { return h.has(DispositionAlignedIO) }
func (h *Handle) IsRegular() bool         { return h.has(DispositionFile) }
func (h *Handle) IsDirectory() bool       { return h.has(DispositionDirectory) }
func (h *Handle) IsPipe() bool            { return h.has(DispositionPipe) }

// AreSafetyFsyncsIssued reports whether Close fsyncs first.
func (h *Handle) AreSafetyFsyncsIssued() bool { return h.has(DispositionSafetyFsyncs) }

// ByteLockInsanity reports whether byte-range locks on this handle
// have degraded to process scope.
func (h *Handle) ByteLockInsanity() bool { return h.has(DispositionByteLockInsanity) }

func (h *Handle) issuesSafetyFsync() bool {
	return h.AreSafetyFsyncsIssued() && h.IsWritable()
}

// Logger returns the handle's logger, slog.Default() unless replaced.
func (h *Handle) Logger() *slog.Logger {
	if h.state == nil {
		return slog.Default()
	}
	return h.state.logOrDefault()
}

// SetLogger replaces the logger used for warnings and fatal reports,
// including those of the teardown of an abandoned handle.
func (h *Handle) SetLogger(logger *slog.Logger) {
	if h.state == nil {
		h.state = &state{}
	}
	h.state.logger.Store(logger)
}

// OnAbandon registers fn to run, before the descriptor is flushed and
// closed, in the teardown of a handle dropped while still valid. It
// is not run by Close and does not follow the descriptor through Move
// or Clone. fn must not reference the object owning the handle, or
// that object never becomes unreachable.
func (h *Handle) OnAbandon(fn func(logger *slog.Logger)) {
	if h.state == nil {
		h.state = &state{}
	}
	h.state.onAbandon.Store(&fn)
}

// copyState gives h a fresh state holding source's values.
func (h *Handle) copyState(source *Handle) {
	h.state = &state{}
	if source.state != nil {
		h.state.disposition.Store(source.state.disposition.Load())
		h.state.logger.Store(source.state.logger.Load())
	}
}

// Close releases the descriptor. When safety fsyncs are issued the
// descriptor is flushed first, and if that fails the error is returned
// with the handle still valid. After the close system call the handle
// is empty whether or not the call reported an error: the kernel has
// released the descriptor number either way. Closing an empty handle
// does nothing.
func (h *Handle) Close() error {
	if !h.IsValid() {
		return nil
	}
	if h.issuesSafetyFsync() {
		if err := sysio.Fsync(h.fd); err != nil {
			return resourceError("fsync", err)
		}
	}
	h.disarm()
	fd := h.fd
	h.fd = -1
	if err := sysio.Close(fd); err != nil {
		return resourceError("close", err)
	}
	return nil
}

// Release gives up ownership of the descriptor without closing it and
// returns it. The handle becomes empty.
func (h *Handle) Release() int {
	h.disarm()
	fd := h.fd
	h.fd = -1
	return fd
}

// moveFrom transfers everything from source to h, leaving source
// empty. h must not be armed.
func (h *Handle) moveFrom(source *Handle) {
	source.disarm()
	h.fd = source.fd
	h.caching = source.caching
	h.flags = source.flags
	h.copyState(source)
	source.fd = -1
}

// Move returns a new handle owning h's descriptor and leaves h empty.
func (h *Handle) Move() *Handle {
	moved := &Handle{fd: -1}
	moved.moveFrom(h)
	if moved.IsValid() {
		arm(moved, moved)
	}
	return moved
}

// cloneInto duplicates h's descriptor into target.
func (h *Handle) cloneInto(target *Handle) error {
	if !h.IsValid() {
		return fmt.Errorf("clone: %w", ErrClosed)
	}
	fd, err := sysio.Dup(h.fd)
	if err != nil {
		return resourceError("fcntl F_DUPFD_CLOEXEC", err)
	}
	target.fd = fd
	target.caching = h.caching
	target.flags = h.flags
	target.copyState(h)
	return nil
}

// Clone returns a new handle owning a duplicate of h's descriptor.
// The duplicate shares the open file description: file position,
// status flags and open-file-description locks.
func (h *Handle) Clone() (*Handle, error) {
	clone := &Handle{fd: -1}
	if err := h.cloneInto(clone); err != nil {
		return nil, err
	}
	arm(clone, clone)
	return clone, nil
}

// SetCaching renegotiates the kernel caching mode. The new mode is
// recorded only once the kernel has accepted it. The kernel silently
// ignores O_SYNC and O_DSYNC changes after open on Linux; those modes
// are fully honoured only when passed to Open.
func (h *Handle) SetCaching(caching Caching) error {
	if !h.IsValid() {
		return fmt.Errorf("set caching: %w", ErrClosed)
	}
	if caching == CachingUnchanged {
		return nil
	}
	status, err := sysio.StatusFlags(h.fd)
	if err != nil {
		return resourceError("fcntl F_GETFL", err)
	}
	wanted := caching.flags()
	status = status&^cachingMask | wanted.status
	if err := sysio.SetStatusFlags(h.fd, status); err != nil {
		return resourceError("fcntl F_SETFL", err)
	}
	if err := sysio.DisablePageCache(h.fd, wanted.direct); err != nil {
		return resourceError("fcntl F_NOCACHE", err)
	}
	h.caching = caching
	h.set(DispositionAlignedIO, wanted.aligned)
	h.set(DispositionSafetyFsyncs, caching == CachingSafetyFsyncs && h.flags&FlagDisableSafetyFsyncs == 0)
	return nil
}

// SetAppendOnly switches O_APPEND on or off.
func (h *Handle) SetAppendOnly(enable bool) error {
	if !h.IsValid() {
		return fmt.Errorf("set append only: %w", ErrClosed)
	}
	status, err := sysio.StatusFlags(h.fd)
	if err != nil {
		return resourceError("fcntl F_GETFL", err)
	}
	if enable {
		status |= appendFlag
	} else {
		status &^= appendFlag
	}
	if err := sysio.SetStatusFlags(h.fd, status); err != nil {
		return resourceError("fcntl F_SETFL", err)
	}
	h.set(DispositionAppendOnly, enable)
	return nil
}

// SetNonBlocking switches O_NONBLOCK on or off.
func (h *Handle) SetNonBlocking(enable bool) error {
	if !h.IsValid() {
		return fmt.Errorf("set nonblocking: %w", ErrClosed)
	}
	status, err := sysio.StatusFlags(h.fd)
	if err != nil {
		return resourceError("fcntl F_GETFL", err)
	}
	if enable {
		status |= nonblockFlag
	} else {
		status &^= nonblockFlag
	}
	if err := sysio.SetStatusFlags(h.fd, status); err != nil {
		return resourceError("fcntl F_SETFL", err)
	}
	h.set(DispositionNonBlocking, enable)
	return nil
}
