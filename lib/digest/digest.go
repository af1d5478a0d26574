// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/llio/lib/handle"
)

// Size is the length of a digest in bytes.
const Size = 32

// Digest is a BLAKE3-256 digest.
type Digest [Size]byte

// String returns the hex form of d.
func (d Digest) String() string { return Format(d) }

// Bytes computes the digest of data.
func Bytes(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// Handle reads h to its end and returns the digest of everything read
// along with the byte count. Each round trip is a single vectored read
// into buffers buffers of bufferSize bytes each.
func Handle(ctx context.Context, h *handle.IOHandle, bufferSize, buffers int) (Digest, int64, error) {
	if bufferSize <= 0 {
		return Digest{}, 0, fmt.Errorf("digest: buffer size %d must be positive", bufferSize)
	}
	if buffers <= 0 || buffers > handle.MaxBuffers {
		return Digest{}, 0, fmt.Errorf("digest: buffer count %d outside 1..%d", buffers, handle.MaxBuffers)
	}

	backing := make([]byte, bufferSize*buffers)
	scatter := make([][]byte, buffers)
	hasher := blake3.New()

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return Digest{}, total, err
		}
		for index := range scatter {
			scatter[index] = backing[index*bufferSize : (index+1)*bufferSize]
		}
		filled, err := h.Read(handle.Request{Buffers: scatter, Offset: total}, handle.Infinite())
		if err != nil {
			return Digest{}, total, fmt.Errorf("digest: reading at %d: %w", total, err)
		}
		count := 0
		for _, buffer := range filled {
			hasher.Write(buffer)
			count += len(buffer)
		}
		if count == 0 {
			break
		}
		total += int64(count)
	}

	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d, total, nil
}

// Format returns the hex-encoded form of d.
func Format(d Digest) string {
	return hex.EncodeToString(d[:])
}

// Parse parses a 64-character hex string into a Digest.
func Parse(text string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return d, fmt.Errorf("parsing digest: got %d bytes, want %d", len(decoded), Size)
	}
	copy(d[:], decoded)
	return d, nil
}
