// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"fmt"

	"github.com/bureau-foundation/llio/internal/sysio"
)

// Caching is how much of the kernel's caching a handle asks for.
type Caching uint8

const (
	// CachingUnchanged keeps whatever the descriptor already has.
	CachingUnchanged Caching = iota
	// CachingNone bypasses the page cache and writes through
	// synchronously. Transfers must be sector aligned.
	CachingNone
	// CachingOnlyMetadata bypasses the page cache for data. Transfers
	// must be sector aligned.
	CachingOnlyMetadata
	// CachingReads caches reads; writes complete synchronously.
	CachingReads
	// CachingReadsAndMetadata caches reads and metadata; data writes
	// complete synchronously.
	CachingReadsAndMetadata
	// CachingAll uses the kernel's normal caching.
	CachingAll
	// CachingSafetyFsyncs is CachingAll with an fsync on close.
	CachingSafetyFsyncs
	// CachingTemporary is CachingAll for data that need never reach
	// storage.
	CachingTemporary
)

var cachingNames = [...]string{
	CachingUnchanged:        "unchanged",
	CachingNone:             "none",
	CachingOnlyMetadata:     "only_metadata",
	CachingReads:            "reads",
	CachingReadsAndMetadata: "reads_and_metadata",
	CachingAll:              "all",
	CachingSafetyFsyncs:     "safety_fsyncs",
	CachingTemporary:        "temporary",
}

func (c Caching) String() string {
	if int(c) < len(cachingNames) {
		return cachingNames[c]
	}
	return fmt.Sprintf("Caching(%d)", uint8(c))
}

// ParseCaching returns the caching mode named s, as produced by
// [Caching.String].
func ParseCaching(s string) (Caching, error) {
	for index, name := range cachingNames {
		if name == s {
			return Caching(index), nil
		}
	}
	return 0, fmt.Errorf("unknown caching mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Caching) MarshalText() ([]byte, error) {
	if int(c) >= len(cachingNames) {
		return nil, fmt.Errorf("invalid caching mode %d", uint8(c))
	}
	return []byte(cachingNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Caching) UnmarshalText(text []byte) error {
	parsed, err := ParseCaching(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// cachingFlags is the kernel side of a caching mode.
type cachingFlags struct {
	status  int  // O_SYNC, O_DSYNC and O_DIRECT bits
	direct  bool // page cache bypassed
	aligned bool // DispositionAlignedIO
}

// cachingMask covers every status bit a caching mode may set.
const cachingMask = sysio.SyncIO | sysio.DataSync | sysio.DirectIO

func (c Caching) flags() cachingFlags {
	switch c {
	case CachingNone:
		return cachingFlags{status: sysio.SyncIO | sysio.DirectIO, direct: true, aligned: true}
	case CachingOnlyMetadata:
		return cachingFlags{status: sysio.DirectIO, direct: true, aligned: true}
	case CachingReads:
		return cachingFlags{status: sysio.SyncIO}
	case CachingReadsAndMetadata:
		return cachingFlags{status: sysio.DataSync}
	}
	return cachingFlags{}
}
