// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import "fmt"

// Style selects the lexical rules used to split a path: which code
// units separate segments, what forms a root, and which characters are
// glob metacharacters.
type Style uint8

const (
	// POSIX paths separate on '/' only. A path is absolute when its
	// first character is '/'.
	POSIX Style = iota
	// Windows paths separate on '/' and '\'. Roots may carry a drive
	// letter, a doubled leading separator (UNC), a long-path prefix
	// (\\?\ or \\.\) or a kernel namespace prefix (\??\ or \!!\).
	Windows
)

func (s Style) String() string {
	if s == Windows {
		return "windows"
	}
	return "posix"
}

// ParseStyle returns the style named by s: "posix", "windows" or
// "native".
func ParseStyle(s string) (Style, error) {
	switch s {
	case "posix":
		return POSIX, nil
	case "windows":
		return Windows, nil
	case "native", "":
		return Native, nil
	}
	return 0, fmt.Errorf("unknown path style %q (want posix, windows or native)", s)
}

// globCharacters returns the metacharacters recognised by
// ContainsGlob. Brackets only form character classes on POSIX.
func (s Style) globCharacters() string {
	if s == Windows {
		return "*?"
	}
	return "*?[]"
}

func isSeparator[T unit](style Style, u T) bool {
	return u == '/' || (style == Windows && u == '\\')
}

func indexSeparator[T unit](style Style, s []T, from int) int {
	for index := from; index < len(s); index++ {
		if isSeparator(style, s[index]) {
			return index
		}
	}
	return -1
}

// lastIndexSeparator returns the index of the last separator in
// s[from:end], or -1.
func lastIndexSeparator[T unit](style Style, s []T, from, end int) int {
	for index := end - 1; index >= from; index-- {
		if isSeparator(style, s[index]) {
			return index
		}
	}
	return -1
}

func isDriveLetter[T unit](u T) bool {
	return (u >= 'a' && u <= 'z') || (u >= 'A' && u <= 'Z')
}

// isNTPath reports whether s begins with one of the NT kernel
// namespace prefixes \??\ or \!!\.
func isNTPath[T unit](s []T) bool {
	if len(s) < 4 || s[0] != '\\' || s[3] != '\\' {
		return false
	}
	return (s[1] == '?' && s[2] == '?') || (s[1] == '!' && s[2] == '!')
}

// root locates the root of a path. The root name occupies
// s[0:nameEnd] and the root directory s[nameEnd:directoryEnd]; either
// may be empty. The relative part begins after directoryEnd once any
// redundant separators are skipped.
type root struct {
	nameEnd      int
	directoryEnd int
}

func (r root) hasName() bool      { return r.nameEnd > 0 }
func (r root) hasDirectory() bool { return r.directoryEnd > r.nameEnd }

func splitRoot[T unit](style Style, s []T) root {
	if style == POSIX {
		if len(s) > 0 && s[0] == '/' {
			return root{nameEnd: 0, directoryEnd: 1}
		}
		return root{}
	}

	length := len(s)
	nameEnd := 0
	switch {
	case isNTPath(s):
		nameEnd = 4
	case length >= 4 && isSeparator(style, s[0]) && isSeparator(style, s[1]) &&
		(s[2] == '?' || s[2] == '.') && isSeparator(style, s[3]):
		nameEnd = 4
	case length >= 2 && isSeparator(style, s[0]) && isSeparator(style, s[1]):
		// UNC: \\server is the root name.
		nameEnd = indexSeparator(style, s, 2)
		if nameEnd < 0 {
			nameEnd = length
		}
	}

	if (nameEnd == 0 || nameEnd == 4) && length >= nameEnd+2 &&
		isDriveLetter(s[nameEnd]) && s[nameEnd+1] == ':' {
		nameEnd += 2
	}

	if nameEnd < length && isSeparator(style, s[nameEnd]) {
		return root{nameEnd: nameEnd, directoryEnd: nameEnd + 1}
	}
	return root{nameEnd: nameEnd, directoryEnd: nameEnd}
}

// relativeStart returns the index of the first code unit after the
// root and any separators that follow it.
func relativeStart[T unit](style Style, s []T, r root) int {
	index := r.directoryEnd
	for index < len(s) && isSeparator(style, s[index]) {
		index++
	}
	return index
}

// isAbsolute applies the platform rule for absolute paths. A path
// with no separator at all is never absolute.
func isAbsolute[T unit](style Style, s []T) bool {
	first := indexSeparator(style, s, 0)
	if first < 0 {
		return false
	}
	if style == POSIX {
		return first == 0
	}
	if isNTPath(s) {
		return true
	}
	if first == 0 && len(s) > 1 && isSeparator(style, s[1]) {
		return true
	}
	colon := indexUnit(s, 0, T(':'))
	return colon >= 0 && colon < first
}

// filenameStart returns the index at which the final segment begins.
func filenameStart[T unit](style Style, s []T) int {
	start := relativeStart(style, s, splitRoot(style, s))
	if start > len(s) {
		return len(s)
	}
	last := lastIndexSeparator(style, s, start, len(s))
	if last < 0 {
		return start
	}
	return last + 1
}

// extensionStart returns the index of the '.' that begins the
// extension of the final segment, or len(s) when there is none. A
// leading dot (".hidden") and the special name ".." never start an
// extension.
func extensionStart[T unit](style Style, s []T) int {
	start := filenameStart(style, s)
	segment := s[start:]
	dot := lastIndexUnit(segment, T('.'))
	if dot <= 0 || (dot == 1 && segment[0] == '.') {
		return len(s)
	}
	return start + dot
}
