// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mode is the access requested when opening.
type Mode uint8

const (
	// ModeUnchanged keeps the access of an existing descriptor.
	ModeUnchanged Mode = iota
	// ModeNone opens for neither reading nor writing contents.
	ModeNone
	// ModeAttrRead permits reading metadata only.
	ModeAttrRead
	// ModeAttrWrite permits changing metadata only.
	ModeAttrWrite
	// ModeRead opens read only.
	ModeRead
	// ModeWrite opens read and write. For a fifo this is full duplex.
	ModeWrite
	// ModeAppend opens write only with every write going to the end.
	ModeAppend
)

var modeNames = [...]string{
	ModeUnchanged: "unchanged",
	ModeNone:      "none",
	ModeAttrRead:  "attr_read",
	ModeAttrWrite: "attr_write",
	ModeRead:      "read",
	ModeWrite:     "write",
	ModeAppend:    "append",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// openFlags returns the access bits for m.
func (m Mode) openFlags() int {
	switch m {
	case ModeWrite:
		return unix.O_RDWR
	case ModeAppend:
		return unix.O_WRONLY | unix.O_APPEND
	default:
		return unix.O_RDONLY
	}
}

// Creation says what to do about the path's existence when opening.
type Creation uint8

const (
	// OpenExisting fails unless the path exists.
	OpenExisting Creation = iota
	// OnlyIfNotExist creates the path and fails if it exists.
	OnlyIfNotExist
	// IfNeeded creates the path when it is missing.
	IfNeeded
	// Truncate opens an existing path and discards its contents.
	Truncate
	// AlwaysNew replaces whatever is at the path with a new, empty
	// entry.
	AlwaysNew
)

var creationNames = [...]string{
	OpenExisting:   "open_existing",
	OnlyIfNotExist: "only_if_not_exist",
	IfNeeded:       "if_needed",
	Truncate:       "truncate",
	AlwaysNew:      "always_new",
}

func (c Creation) String() string {
	if int(c) < len(creationNames) {
		return creationNames[c]
	}
	return fmt.Sprintf("Creation(%d)", uint8(c))
}

func (c Creation) openFlags() int {
	switch c {
	case OnlyIfNotExist:
		return unix.O_CREAT | unix.O_EXCL
	case IfNeeded:
		return unix.O_CREAT
	case Truncate:
		return unix.O_TRUNC
	case AlwaysNew:
		return unix.O_CREAT | unix.O_TRUNC
	}
	return 0
}

// Flag requests optional behaviour from a handle.
type Flag uint32

const (
	FlagNone Flag = 0
	// FlagUnlinkOnFirstClose removes the handle's directory entry
	// when it is first closed. Pipes always set it.
	FlagUnlinkOnFirstClose Flag = 1 << iota
	// FlagMultiplexable opens the descriptor non-blocking.
	FlagMultiplexable
	// FlagDisableSafetyFsyncs suppresses the fsync on close that
	// CachingSafetyFsyncs would otherwise issue.
	FlagDisableSafetyFsyncs
)

// Disposition describes what a descriptor is and what it can do.
type Disposition uint32

const (
	DispositionReadable Disposition = 1 << iota
	DispositionWritable
	DispositionAppendOnly
	DispositionSeekable
	// DispositionAlignedIO means transfers must be aligned to the
	// storage sector size because the page cache is bypassed.
	DispositionAlignedIO
	DispositionNonBlocking
	// DispositionByteLockInsanity means byte-range locks on this
	// handle are process scoped: other handles in the same process no
	// longer conflict with them.
	DispositionByteLockInsanity
	DispositionFile
	DispositionDirectory
	DispositionPipe
	// DispositionSafetyFsyncs means Close fsyncs before releasing the
	// descriptor.
	DispositionSafetyFsyncs
)

// dispositionFor derives the access bits implied by open flags.
func dispositionFor(mode Mode, flags Flag) Disposition {
	var d Disposition
	switch mode {
	case ModeRead, ModeAttrRead, ModeAttrWrite, ModeNone:
		d |= DispositionReadable
	case ModeWrite:
		d |= DispositionReadable | DispositionWritable
	case ModeAppend:
		d |= DispositionWritable | DispositionAppendOnly
	}
	if flags&FlagMultiplexable != 0 {
		d |= DispositionNonBlocking
	}
	return d
}

// kindFor derives the descriptor kind bits from its file mode.
func kindFor(mode uint32) Disposition {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return DispositionFile | DispositionSeekable
	case unix.S_IFDIR:
		return DispositionDirectory
	case unix.S_IFIFO:
		return DispositionPipe
	case unix.S_IFBLK:
		return DispositionSeekable
	}
	return 0
}

// dispositionFromStatus reconstructs access bits from the status flags
// of an adopted descriptor.
func dispositionFromStatus(status int) Disposition {
	var d Disposition
	switch status & unix.O_ACCMODE {
	case unix.O_RDONLY:
		d |= DispositionReadable
	case unix.O_WRONLY:
		d |= DispositionWritable
	case unix.O_RDWR:
		d |= DispositionReadable | DispositionWritable
	}
	if status&unix.O_APPEND != 0 {
		d |= DispositionAppendOnly
	}
	if status&unix.O_NONBLOCK != 0 {
		d |= DispositionNonBlocking
	}
	return d
}

const (
	appendFlag   = unix.O_APPEND
	nonblockFlag = unix.O_NONBLOCK
)
