// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import "fmt"

// Encoding identifies which code unit type a [Component] borrows.
type Encoding uint8

const (
	// Bytes is an uninterpreted byte sequence. The zero Component is
	// an empty Bytes view.
	Bytes Encoding = iota
	// Narrow is the platform narrow character encoding. On POSIX
	// systems this is taken to be UTF-8.
	Narrow
	// Wide is a sequence of 32-bit code points (wchar_t on POSIX).
	Wide
	// UTF8 is a sequence of UTF-8 code units.
	UTF8
	// UTF16 is a sequence of UTF-16 code units in native byte order.
	UTF16
)

var encodingNames = [...]string{
	Bytes:  "bytes",
	Narrow: "narrow",
	Wide:   "wide",
	UTF8:   "utf8",
	UTF16:  "utf16",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseEncoding returns the Encoding named by s, as produced by
// [Encoding.String].
func ParseEncoding(s string) (Encoding, error) {
	for index, name := range encodingNames {
		if name == s {
			return Encoding(index), nil
		}
	}
	return 0, fmt.Errorf("unknown path encoding %q (want bytes, narrow, wide, utf8 or utf16)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	if int(e) >= len(encodingNames) {
		return nil, fmt.Errorf("invalid path encoding %d", uint8(e))
	}
	return []byte(encodingNames[e]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	parsed, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// byteBased reports whether the encoding stores 8-bit code units.
func (e Encoding) byteBased() bool {
	return e == Bytes || e == Narrow || e == UTF8
}

// unit is the set of code unit types a view can borrow.
type unit interface {
	~byte | ~uint16 | ~rune
}

// Visit calls whichever of the three functions matches the active
// variant of c and returns its result. Byte, narrow and UTF-8 views
// all go to bytes. Algorithms in this package are written once as
// generic functions over []T and instantiated at each Visit site.
func Visit[R any](c Component, bytes func([]byte) R, wide func([]rune) R, utf16 func([]uint16) R) R {
	switch c.encoding {
	case Wide:
		return wide(c.wide)
	case UTF16:
		return utf16(c.utf16)
	default:
		return bytes(c.bytes)
	}
}

func indexUnit[T unit](s []T, from int, u T) int {
	for index := from; index < len(s); index++ {
		if s[index] == u {
			return index
		}
	}
	return -1
}

func lastIndexUnit[T unit](s []T, u T) int {
	for index := len(s) - 1; index >= 0; index-- {
		if s[index] == u {
			return index
		}
	}
	return -1
}

func containsAnyUnit[T unit](s []T, set string) bool {
	for _, u := range s {
		for index := 0; index < len(set); index++ {
			if u == T(set[index]) {
				return true
			}
		}
	}
	return false
}
