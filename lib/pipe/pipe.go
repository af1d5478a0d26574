// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipe

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/llio/internal/sysio"
	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathdiscovery"
	"github.com/bureau-foundation/llio/lib/pathview"
)

// fifoPermissions is the mode given to fifos this package creates,
// before the umask.
const fifoPermissions = 0o660

// RandomSuffix ends every name chosen by Random.
const RandomSuffix = ".random"

// Handle is a pipe descriptor. For named pipes it remembers where the
// fifo lives so it can remove it.
type Handle struct {
	handle.IOHandle
	base *handle.PathHandle
	name []byte // NUL terminated; nil for anonymous pipes
}

// Name returns the fifo's path relative to its base directory, or ""
// for an anonymous pipe.
func (h *Handle) Name() string {
	if len(h.name) == 0 {
		return ""
	}
	return string(h.name[:len(h.name)-1])
}

// Base returns the directory the fifo was created in, or nil.
func (h *Handle) Base() *handle.PathHandle { return h.base }

// Close removes the fifo when FlagUnlinkOnFirstClose is set, ignoring
// an entry that is already gone, then closes the descriptor. The entry
// is removed only once even when Close is called again, and not at all
// once the descriptor has been released. A pipe dropped without Close
// has its entry removed by the teardown of its descriptor.
func (h *Handle) Close() error {
	if h.IsValid() && h.Flags()&handle.FlagUnlinkOnFirstClose != 0 && h.name != nil {
		name := h.name
		h.name = nil
		if err := unlink(h.base, name); err != nil {
			return err
		}
	}
	return h.IOHandle.Close()
}

// unlink removes the fifo entry name from base. An entry that is
// already gone is not an error.
func unlink(base *handle.PathHandle, name []byte) error {
	if err := sysio.Unlinkat(handle.BaseFD(base), name); err != nil && !errors.Is(err, unix.ENOENT) {
		return &handle.ResourceError{Op: "unlink " + string(name[:len(name)-1]), Err: err}
	}
	return nil
}

// defaultBase resolves a nil base to the discovered temporary
// directory.
func defaultBase(base *handle.PathHandle) (*handle.PathHandle, error) {
	if base != nil {
		return base, nil
	}
	return pathdiscovery.StorageBackedTemporaryFilesDirectory()
}

// Open creates or opens the fifo at path relative to base. A nil base
// is the storage-backed temporary directory. FlagUnlinkOnFirstClose is
// always added.
func Open(path pathview.View, mode handle.Mode, creation handle.Creation, caching handle.Caching, flags handle.Flag, base *handle.PathHandle) (*Handle, error) {
	base, err := defaultBase(base)
	if err != nil {
		return nil, fmt.Errorf("pipe %s: %w", path, err)
	}
	flags |= handle.FlagUnlinkOnFirstClose

	var name []byte
	if err := path.WithCStr(func(cstr pathview.CStr) error {
		name = append([]byte(nil), cstr.Bytes()...)
		return nil
	}); err != nil {
		return nil, err
	}
	dirfd := handle.BaseFD(base)

	created, err := prepare(dirfd, name, creation)
	if err != nil {
		return nil, &handle.ResourceError{Op: "mkfifo " + path.String(), Err: err}
	}
	h, err := openFifo(dirfd, name, mode, caching, flags)
	if err != nil {
		if created {
			sysio.Unlinkat(dirfd, name)
		}
		if failure, ok := err.(*handle.ResourceError); ok {
			failure.Op = "open " + path.String()
		}
		return nil, err
	}
	return newHandle(h, base, name), nil
}

// openFifo opens the existing entry name and checks that it is a fifo.
func openFifo(dirfd int, name []byte, mode handle.Mode, caching handle.Caching, flags handle.Flag) (*handle.IOHandle, error) {
	fd, err := sysio.Openat(dirfd, name, handle.OpenFlags(mode, handle.OpenExisting, caching, flags), 0)
	if err != nil {
		return nil, &handle.ResourceError{Op: "openat", Err: err}
	}
	h, err := handle.Adopt(fd, mode, caching, flags)
	if err != nil {
		return nil, err
	}
	if !h.IsPipe() {
		h.Close()
		return nil, &handle.ResourceError{Op: "openat", Err: unix.ENOTSUP}
	}
	return h, nil
}

// prepare makes sure a fifo is at name according to creation, and
// reports whether it made the entry itself.
func prepare(dirfd int, name []byte, creation handle.Creation) (bool, error) {
	switch creation {
	case handle.OpenExisting, handle.Truncate:
		return false, nil
	case handle.AlwaysNew:
		if err := sysio.Unlinkat(dirfd, name); err != nil && !errors.Is(err, unix.ENOENT) {
			return false, err
		}
	}
	err := sysio.Mkfifoat(dirfd, name, fifoPermissions)
	if errors.Is(err, unix.EEXIST) && creation == handle.IfNeeded {
		return false, nil
	}
	return err == nil, err
}

// newHandle moves source into a new pipe Handle.
func newHandle(source *handle.IOHandle, base *handle.PathHandle, name []byte) *Handle {
	h := &Handle{base: base, name: name}
	handle.Transfer(h, &h.IOHandle, source)
	if h.IsValid() && name != nil && h.Flags()&handle.FlagUnlinkOnFirstClose != 0 {
		h.OnAbandon(func(logger *slog.Logger) {
			if err := unlink(base, name); err != nil {
				logger.Warn("removing abandoned fifo", "name", string(name[:len(name)-1]), "error", err)
			}
		})
	}
	return h
}

// Create opens path for reading, creating the fifo if needed. Unless
// flags include FlagMultiplexable this blocks until a writer opens the
// other end.
func Create(path pathview.View, caching handle.Caching, flags handle.Flag, base *handle.PathHandle) (*Handle, error) {
	return Open(path, handle.ModeRead, handle.IfNeeded, caching, flags, base)
}

// OpenWriter opens an existing fifo write only. Unless flags include
// FlagMultiplexable this blocks until a reader is present; with it,
// the open fails with ENXIO instead.
func OpenWriter(path pathview.View, caching handle.Caching, flags handle.Flag, base *handle.PathHandle) (*Handle, error) {
	return Open(path, handle.ModeAppend, handle.OpenExisting, caching, flags, base)
}

// Random creates a fifo with a fresh random name in base and opens it.
// Names are 32 hexadecimal characters followed by RandomSuffix. A name
// collision is retried with a new name; any other error is returned.
func Random(mode handle.Mode, caching handle.Caching, flags handle.Flag, base *handle.PathHandle) (*Handle, error) {
	for {
		id := uuid.New()
		name := fmt.Sprintf("%x%s", id[:], RandomSuffix)
		h, err := Open(pathview.FromString(name), mode, handle.OnlyIfNotExist, caching, flags, base)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			return h, err
		}
	}
}

// Anonymous returns the read and write ends of a new anonymous pipe,
// created atomically with close-on-exec set on both.
func Anonymous(caching handle.Caching, flags handle.Flag) (read, write *Handle, err error) {
	readFD, writeFD, err := sysio.Pipe(flags&handle.FlagMultiplexable != 0)
	if err != nil {
		return nil, nil, &handle.ResourceError{Op: "pipe", Err: err}
	}
	flags &^= handle.FlagUnlinkOnFirstClose
	reader, err := handle.Adopt(readFD, handle.ModeRead, caching, flags)
	if err != nil {
		sysio.Close(writeFD)
		return nil, nil, err
	}
	writer, err := handle.Adopt(writeFD, handle.ModeAppend, caching, flags)
	if err != nil {
		reader.Close()
		return nil, nil, err
	}
	return newHandle(reader, nil, nil), newHandle(writer, nil, nil), nil
}
