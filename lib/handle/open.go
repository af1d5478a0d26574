// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/llio/internal/sysio"
	"github.com/bureau-foundation/llio/lib/pathview"
)

// defaultPermissions is the mode given to files and fifos this package
// creates, before the umask.
const defaultPermissions = 0o660

// PathHandle is an open directory used as the base of relative opens.
type PathHandle struct {
	Handle
	path string
}

// Path returns the path the directory was opened with.
func (p *PathHandle) Path() string { return p.path }

// BaseFD returns the descriptor to pass as an *at base: p's descriptor,
// or the working directory when p is nil.
func BaseFD(p *PathHandle) int {
	if p == nil || !p.IsValid() {
		return sysio.AtFDCWD
	}
	return p.fd
}

// OpenDirectory opens path, relative to base when it is not absolute,
// as a directory handle.
func OpenDirectory(base *PathHandle, path pathview.View) (*PathHandle, error) {
	fd, err := OpenAt(base, path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}
	p := &PathHandle{
		Handle: newHandle(fd, CachingAll, FlagNone, DispositionDirectory|DispositionReadable),
		path:   path.String(),
	}
	arm(p, &p.Handle)
	return p, nil
}

// OpenAt opens path relative to base's descriptor with raw open flags
// and returns the new descriptor. The path is handed to the kernel
// without copying when it is already NUL terminated in memory.
func OpenAt(base *PathHandle, path pathview.View, flags int, permissions uint32) (int, error) {
	fd := -1
	err := path.WithCStr(func(name pathview.CStr) error {
		var err error
		fd, err = sysio.Openat(BaseFD(base), name.Bytes(), flags, permissions)
		return err
	})
	if err != nil {
		return -1, resourceError(fmt.Sprintf("open %s", path), err)
	}
	return fd, nil
}

// OpenFlags returns the open(2) flags for the given mode, creation,
// caching and flags.
func OpenFlags(mode Mode, creation Creation, caching Caching, flags Flag) int {
	openFlags := mode.openFlags() | creation.openFlags() | caching.flags().status
	if flags&FlagMultiplexable != 0 {
		openFlags |= unix.O_NONBLOCK
	}
	return openFlags
}

// Open opens a regular file at path, relative to base when the path is
// not absolute. A nil base means the working directory.
func Open(base *PathHandle, path pathview.View, mode Mode, creation Creation, caching Caching, flags Flag) (*IOHandle, error) {
	fd, err := OpenAt(base, path, OpenFlags(mode, creation, caching, flags), defaultPermissions)
	if err != nil {
		return nil, err
	}
	return Adopt(fd, mode, caching, flags)
}

// Adopt wraps a descriptor just opened with OpenFlags(mode, ...,
// caching, flags) as an IOHandle. On failure fd is closed.
func Adopt(fd int, mode Mode, caching Caching, flags Flag) (*IOHandle, error) {
	if caching.flags().direct {
		if err := sysio.DisablePageCache(fd, true); err != nil {
			sysio.Close(fd)
			return nil, resourceError("fcntl F_NOCACHE", err)
		}
	}
	stat, err := sysio.Fstat(fd)
	if err != nil {
		sysio.Close(fd)
		return nil, resourceError("fstat", err)
	}
	disposition := dispositionFor(mode, flags) | kindFor(uint32(stat.Mode)) | cachingDisposition(caching, flags)
	h := &IOHandle{Handle: newHandle(fd, caching, flags, disposition)}
	arm(h, &h.Handle)
	return h, nil
}
