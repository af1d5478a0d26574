// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import (
	"bytes"
	"unicode/utf16"
	"unsafe"
)

// Component is a borrowed view of path text in one encoding. It is a
// small value type: copies share the same borrow, and no method
// allocates except String.
//
// Exactly one of the three slices is in use, selected by encoding.
type Component struct {
	bytes          []byte
	wide           []rune
	utf16          []uint16
	encoding       Encoding
	zeroTerminated bool
}

// ComponentFromBytes borrows b as raw bytes.
func ComponentFromBytes(b []byte, zeroTerminated bool) Component {
	return Component{bytes: b, encoding: Bytes, zeroTerminated: zeroTerminated}
}

// ComponentFromNarrow borrows b as narrow characters.
func ComponentFromNarrow(b []byte, zeroTerminated bool) Component {
	return Component{bytes: b, encoding: Narrow, zeroTerminated: zeroTerminated}
}

// ComponentFromUTF8 borrows b as UTF-8 code units.
func ComponentFromUTF8(b []byte, zeroTerminated bool) Component {
	return Component{bytes: b, encoding: UTF8, zeroTerminated: zeroTerminated}
}

// ComponentFromWide borrows w as wide characters.
func ComponentFromWide(w []rune, zeroTerminated bool) Component {
	return Component{wide: w, encoding: Wide, zeroTerminated: zeroTerminated}
}

// ComponentFromUTF16 borrows u as UTF-16 code units.
func ComponentFromUTF16(u []uint16, zeroTerminated bool) Component {
	return Component{utf16: u, encoding: UTF16, zeroTerminated: zeroTerminated}
}

// ComponentFromString borrows the bytes of s as narrow characters
// without copying. Go strings carry no terminator, so the view is
// never zero terminated.
func ComponentFromString(s string) Component {
	return ComponentFromNarrow(unsafe.Slice(unsafe.StringData(s), len(s)), false)
}

// Encoding returns the encoding of the borrowed text.
func (c Component) Encoding() Encoding { return c.encoding }

// ZeroTerminated reports whether the creator of the view asserted
// that a zero code unit follows the view. The assertion is advisory;
// [View.CStr] verifies it before relying on it.
func (c Component) ZeroTerminated() bool { return c.zeroTerminated }

// NativeSize returns the length of the view in code units.
func (c Component) NativeSize() int {
	switch c.encoding {
	case Wide:
		return len(c.wide)
	case UTF16:
		return len(c.utf16)
	default:
		return len(c.bytes)
	}
}

// Empty reports whether the view has no code units.
func (c Component) Empty() bool { return c.NativeSize() == 0 }

// Bytes returns the borrowed slice for byte-based encodings and nil
// otherwise.
func (c Component) Bytes() []byte {
	if c.encoding.byteBased() {
		return c.bytes
	}
	return nil
}

// Wide returns the borrowed slice for [Wide] views and nil otherwise.
func (c Component) Wide() []rune { return c.wide }

// UTF16 returns the borrowed slice for [UTF16] views and nil
// otherwise.
func (c Component) UTF16() []uint16 { return c.utf16 }

// slice returns the view of code units [begin, end) over the same
// borrow. The zero-terminated flag survives only when the subrange
// reaches the end of the original view.
func (c Component) slice(begin, end int) Component {
	result := Component{encoding: c.encoding, zeroTerminated: c.zeroTerminated && end == c.NativeSize()}
	switch c.encoding {
	case Wide:
		result.wide = c.wide[begin:end]
	case UTF16:
		result.utf16 = c.utf16[begin:end]
	default:
		result.bytes = c.bytes[begin:end]
	}
	return result
}

// ContainsGlob reports whether the view contains a glob
// metacharacter under the native style.
func (c Component) ContainsGlob() bool { return c.ContainsGlobStyle(Native) }

// ContainsGlobStyle is ContainsGlob under an explicit style.
func (c Component) ContainsGlobStyle(style Style) bool {
	set := style.globCharacters()
	return Visit(c,
		func(s []byte) bool { return containsAnyUnit(s, set) },
		func(s []rune) bool { return containsAnyUnit(s, set) },
		func(s []uint16) bool { return containsAnyUnit(s, set) })
}

// Stem returns the final segment of the view without its extension.
func (c Component) Stem() Component { return c.StemStyle(Native) }

// StemStyle is Stem under an explicit style.
func (c Component) StemStyle(style Style) Component {
	begin, dot := c.filenameAndExtension(style)
	return c.slice(begin, dot)
}

// Extension returns the extension of the final segment, including its
// leading '.', or an empty view when there is none.
func (c Component) Extension() Component { return c.ExtensionStyle(Native) }

// ExtensionStyle is Extension under an explicit style.
func (c Component) ExtensionStyle(style Style) Component {
	_, dot := c.filenameAndExtension(style)
	return c.slice(dot, c.NativeSize())
}

func (c Component) filenameAndExtension(style Style) (begin, dot int) {
	begin = Visit(c,
		func(s []byte) int { return filenameStart(style, s) },
		func(s []rune) int { return filenameStart(style, s) },
		func(s []uint16) int { return filenameStart(style, s) })
	dot = Visit(c,
		func(s []byte) int { return extensionStart(style, s) },
		func(s []rune) int { return extensionStart(style, s) },
		func(s []uint16) int { return extensionStart(style, s) })
	return begin, dot
}

// Compare orders c against other. Byte-based views compare byte by
// byte and wide views by unit value. Any other pair, including two
// UTF-16 views, compares by code point, batch by batch, with invalid
// bytes and lone surrogates ordered as distinct values rather than
// replaced. The result is negative, zero or positive, and zero only
// for identical content.
func (c Component) Compare(other Component) int {
	if c.encoding.byteBased() && other.encoding.byteBased() {
		return bytes.Compare(c.bytes, other.bytes)
	}
	if c.encoding == Wide && other.encoding == Wide {
		return compareWide(c.wide, other.wide)
	}
	return compareNormalized(c, other)
}

// Equal reports whether c and other compare equal.
func (c Component) Equal(other Component) bool {
	if c.encoding == other.encoding && c.NativeSize() != other.NativeSize() {
		return false
	}
	return c.Compare(other) == 0
}

// String converts the view to a Go string, decoding UTF-16 and wide
// text. It allocates.
func (c Component) String() string {
	switch c.encoding {
	case Wide:
		return string(c.wide)
	case UTF16:
		return string(utf16.Decode(c.utf16))
	default:
		return string(c.bytes)
	}
}
