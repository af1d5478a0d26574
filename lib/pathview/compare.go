// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"
)

// maxNormalizedUnit is the longest form appendUnit produces.
const maxNormalizedUnit = 7

// Comparison across encodings happens on a normalized byte form. Byte
// based views are their own normalized form. Wide and UTF-16 views are
// encoded as UTF-8 generalized to every value a unit can hold: lone
// surrogates keep their three-byte form, as in WTF-8, and values above
// U+10FFFF continue the variable-length scheme up to seven bytes. The
// mapping is injective for each encoding, and its byte order is code
// point order, so equal normalized forms mean equal content and the
// resulting order is total.

func continuation(v uint32, shift uint) byte { return 0x80 | byte(v>>shift)&0x3F }

// appendUnit appends the normalized form of one code point or lone
// surrogate. Longer forms start with larger lead bytes and no form is
// a prefix of another, so byte order follows numeric order.
func appendUnit(dst []byte, v uint32) []byte {
	switch {
	case v < 0x80:
		return append(dst, byte(v))
	case v < 0x800:
		return append(dst, 0xC0|byte(v>>6), continuation(v, 0))
	case v < 0x10000:
		return append(dst, 0xE0|byte(v>>12), continuation(v, 6), continuation(v, 0))
	case v < 0x200000:
		return append(dst, 0xF0|byte(v>>18), continuation(v, 12), continuation(v, 6), continuation(v, 0))
	case v < 0x4000000:
		return append(dst, 0xF8|byte(v>>24), continuation(v, 18), continuation(v, 12),
			continuation(v, 6), continuation(v, 0))
	case v < 0x80000000:
		return append(dst, 0xFC|byte(v>>30), continuation(v, 24), continuation(v, 18),
			continuation(v, 12), continuation(v, 6), continuation(v, 0))
	default:
		return append(dst, 0xFE, continuation(v, 30), continuation(v, 24), continuation(v, 18),
			continuation(v, 12), continuation(v, 6), continuation(v, 0))
	}
}

// normalizer produces the normalized form of a component a batch of
// batchUnits code points at a time.
type normalizer struct {
	component Component
	consumed  int
	pending   []byte
	buffer    [batchUnits * maxNormalizedUnit]byte
}

func (n *normalizer) reset(c Component) {
	n.component = c
	n.consumed = 0
	n.pending = nil
	if c.encoding.byteBased() {
		n.pending = c.bytes
		n.consumed = len(c.bytes)
	}
}

// fill returns the normalized bytes not yet compared, converting the
// next batch once the previous one is used up. The result is empty
// only when the component is exhausted.
func (n *normalizer) fill() []byte {
	if len(n.pending) > 0 || n.consumed >= n.component.NativeSize() {
		return n.pending
	}
	out := n.buffer[:0]
	switch n.component.encoding {
	case Wide:
		end := min(n.consumed+batchUnits, len(n.component.wide))
		for _, r := range n.component.wide[n.consumed:end] {
			out = appendUnit(out, uint32(r))
		}
		n.consumed = end
	case UTF16:
		units := n.component.utf16
		for count := 0; count < batchUnits && n.consumed < len(units); count++ {
			v := rune(units[n.consumed])
			n.consumed++
			if v >= 0xD800 && v < 0xDC00 && n.consumed < len(units) {
				if paired := utf16.DecodeRune(v, rune(units[n.consumed])); paired != utf8.RuneError {
					v = paired
					n.consumed++
				}
			}
			out = appendUnit(out, uint32(v))
		}
	}
	n.pending = out
	return n.pending
}

// compareNormalized compares two components of any encodings by their
// normalized forms. The first differing byte decides; when one side is
// a prefix of the other, the shorter sorts first.
func compareNormalized(a, b Component) int {
	var left, right normalizer
	left.reset(a)
	right.reset(b)
	for {
		l, r := left.fill(), right.fill()
		switch {
		case len(l) == 0 && len(r) == 0:
			return 0
		case len(l) == 0:
			return -1
		case len(r) == 0:
			return 1
		}
		n := min(len(l), len(r))
		if result := bytes.Compare(l[:n], r[:n]); result != 0 {
			return result
		}
		left.pending = l[n:]
		right.pending = r[n:]
	}
}

// compareWide orders wide views by unsigned unit value, which is the
// order of their normalized forms.
func compareWide(a, b []rune) int {
	for index := 0; index < len(a) && index < len(b); index++ {
		left, right := uint32(a[index]), uint32(b[index])
		if left != right {
			if left < right {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
