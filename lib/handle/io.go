// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/llio/internal/sysio"
)

// MaxBuffers is the most buffers a single Read or Write accepts.
const MaxBuffers = sysio.MaxVectors

// IOHandle is a Handle that can transfer data and take byte-range
// locks.
type IOHandle struct {
	Handle
}

// Request is one vectored transfer: the buffers are filled or drained
// in order starting at Offset. Offset is ignored for descriptors that
// are not seekable, and by the kernel for append-only writes.
type Request struct {
	Buffers [][]byte
	Offset  int64
}

// NewIOHandle adopts fd as an IOHandle. See FromFD.
func NewIOHandle(fd int, caching Caching, flags Flag) (*IOHandle, error) {
	disposition, err := probe(fd)
	if err != nil {
		return nil, err
	}
	h := &IOHandle{Handle: newHandle(fd, caching, flags, disposition|cachingDisposition(caching, flags))}
	arm(h, &h.Handle)
	return h, nil
}

// Move returns a new IOHandle owning h's descriptor and leaves h
// empty.
func (h *IOHandle) Move() *IOHandle {
	moved := &IOHandle{Handle: Handle{fd: -1}}
	moved.moveFrom(&h.Handle)
	if moved.IsValid() {
		arm(moved, &moved.Handle)
	}
	return moved
}

// Clone returns a new IOHandle owning a duplicate of h's descriptor.
func (h *IOHandle) Clone() (*IOHandle, error) {
	clone := &IOHandle{Handle: Handle{fd: -1}}
	if err := h.cloneInto(&clone.Handle); err != nil {
		return nil, err
	}
	arm(clone, &clone.Handle)
	return clone, nil
}

// Read fills req.Buffers in order with one vectored system call and
// returns them truncated to the bytes actually read. Buffers past the
// end of the data come back empty; a read at end of file returns every
// buffer empty and a nil error. The returned slice is req.Buffers,
// modified in place.
func (h *IOHandle) Read(req Request, d Deadline) ([][]byte, error) {
	if err := h.checkTransfer("read", req, d); err != nil {
		return nil, err
	}
	var n int
	var err error
	if h.IsSeekable() {
		n, err = sysio.Preadv(h.fd, req.Buffers, req.Offset)
	} else {
		n, err = sysio.Readv(h.fd, req.Buffers)
	}
	if err != nil {
		return nil, h.transferError("read", err)
	}
	return redistribute(req.Buffers, n), nil
}

// Write drains req.Buffers in order with one vectored system call and
// returns them truncated to the bytes actually written. The returned
// slice is req.Buffers, modified in place.
func (h *IOHandle) Write(req Request, d Deadline) ([][]byte, error) {
	if err := h.checkTransfer("write", req, d); err != nil {
		return nil, err
	}
	var n int
	var err error
	if h.IsSeekable() {
		n, err = sysio.Pwritev(h.fd, req.Buffers, req.Offset)
	} else {
		n, err = sysio.Writev(h.fd, req.Buffers)
	}
	if err != nil {
		return nil, h.transferError("write", err)
	}
	return redistribute(req.Buffers, n), nil
}

func (h *IOHandle) checkTransfer(op string, req Request, d Deadline) error {
	if !h.IsValid() {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if err := requireSynchronous(op, d); err != nil {
		return err
	}
	if len(req.Buffers) > MaxBuffers {
		return fmt.Errorf("%s of %d buffers (limit %d): %w", op, len(req.Buffers), MaxBuffers, ErrTooManyBuffers)
	}
	return nil
}

// transferError classifies a failed transfer. A non-blocking
// descriptor with nothing ready reports ErrTimeout.
func (h *IOHandle) transferError(op string, err error) error {
	if errors.Is(err, unix.EAGAIN) && h.IsNonBlocking() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return resourceError(op, err)
}

// redistribute truncates buffers in order so their lengths add up to
// n, the byte count one vectored transfer reported. Buffers beyond the
// point where n runs out become empty.
func redistribute(buffers [][]byte, n int) [][]byte {
	for index, buffer := range buffers {
		take := min(len(buffer), n)
		buffers[index] = buffer[:take]
		n -= take
	}
	return buffers
}

// transferred sums the lengths of buffers.
func transferred(buffers [][]byte) int {
	total := 0
	for _, buffer := range buffers {
		total += len(buffer)
	}
	return total
}

// ReadAt reads into buffers at offset with an infinite deadline and
// returns the total byte count.
func (h *IOHandle) ReadAt(offset int64, buffers ...[]byte) (int, error) {
	result, err := h.Read(Request{Buffers: buffers, Offset: offset}, Infinite())
	if err != nil {
		return 0, err
	}
	return transferred(result), nil
}

// WriteAt writes buffers at offset with an infinite deadline and
// returns the total byte count.
func (h *IOHandle) WriteAt(offset int64, buffers ...[]byte) (int, error) {
	result, err := h.Write(Request{Buffers: buffers, Offset: offset}, Infinite())
	if err != nil {
		return 0, err
	}
	return transferred(result), nil
}

// ReaderAt returns an io.ReaderAt over h.
func (h *IOHandle) ReaderAt() io.ReaderAt { return readerAt{h} }

// WriterAt returns an io.WriterAt over h.
func (h *IOHandle) WriterAt() io.WriterAt { return writerAt{h} }

type readerAt struct{ h *IOHandle }

// ReadAt follows the io.ReaderAt contract: it keeps reading until p is
// full and reports io.EOF when the data ends first.
func (r readerAt) ReadAt(p []byte, offset int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := r.h.ReadAt(offset+int64(total), p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.EOF
		}
	}
	return total, nil
}

type writerAt struct{ h *IOHandle }

func (w writerAt) WriteAt(p []byte, offset int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := w.h.WriteAt(offset+int64(total), p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Transfer moves source's descriptor into target, an IOHandle embedded
// in owner, leaving source empty. The teardown of an abandoned
// descriptor is attached to owner. Packages that build richer handle
// types around IOHandle construct them this way.
func Transfer[T any](owner *T, target *IOHandle, source *IOHandle) {
	target.fd = -1
	target.moveFrom(&source.Handle)
	if target.IsValid() {
		arm(owner, &target.Handle)
	}
}
