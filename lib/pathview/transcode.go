// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// batchUnits is how many source code units are converted per refill,
// both for the kernel form and for comparison. Neither materializes a
// whole path.
const batchUnits = 32

// newUTF8Transformer returns a transformer converting the
// little-endian serialization of the given encoding to UTF-8, or nil
// when the encoding is already byte based.
func newUTF8Transformer(encoding Encoding) transform.Transformer {
	switch encoding {
	case UTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case Wide:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder()
	}
	return nil
}

// utf8Batcher converts a 16- or 32-bit view to UTF-8 a bounded batch
// at a time. Each refill serializes up to batchUnits code units into
// source and transforms them into output.
type utf8Batcher struct {
	component   Component
	transformer transform.Transformer
	consumed    int

	source [batchUnits * 4]byte
	output [batchUnits * utf8.UTFMax]byte
}

func newUTF8Batcher(c Component) *utf8Batcher {
	return &utf8Batcher{component: c, transformer: newUTF8Transformer(c.encoding)}
}

// next returns the next batch of UTF-8, or nil once the view is
// exhausted. The returned slice is only valid until the next call.
func (b *utf8Batcher) next() []byte {
	total := b.component.NativeSize()
	for b.consumed < total {
		count := min(batchUnits, total-b.consumed)
		width := b.serialize(b.consumed, count)
		atEOF := b.consumed+count == total

		written, read, err := b.transformer.Transform(b.output[:], b.source[:width], atEOF)
		unitSize := 2
		if b.component.encoding == Wide {
			unitSize = 4
		}
		b.consumed += read / unitSize
		if written > 0 {
			return b.output[:written]
		}
		if err != nil && err != transform.ErrShortSrc {
			// The decoders substitute U+FFFD for malformed input
			// rather than failing, so this is unreachable in practice.
			// Skip a unit to guarantee progress.
			b.consumed++
		} else if read == 0 {
			b.consumed++
		}
	}
	return nil
}

func (b *utf8Batcher) serialize(offset, count int) int {
	switch b.component.encoding {
	case UTF16:
		for index, u := range b.component.utf16[offset : offset+count] {
			binary.LittleEndian.PutUint16(b.source[index*2:], u)
		}
		return count * 2
	default:
		for index, r := range b.component.wide[offset : offset+count] {
			binary.LittleEndian.PutUint32(b.source[index*4:], uint32(r))
		}
		return count * 4
	}
}
