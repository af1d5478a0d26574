// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import "bytes"

// View is a borrowed view of a whole path. All decompositions return
// subranges of the same borrowed slice.
type View struct {
	state Component
}

// FromComponent widens a component to a path view.
func FromComponent(c Component) View { return View{state: c} }

// FromString borrows s as a narrow path without copying.
func FromString(s string) View { return View{state: ComponentFromString(s)} }

// FromBytes borrows b as a raw byte path.
func FromBytes(b []byte) View { return View{state: ComponentFromBytes(b, false)} }

// FromNarrow borrows b as a narrow path.
func FromNarrow(b []byte) View { return View{state: ComponentFromNarrow(b, false)} }

// FromUTF8 borrows b as a UTF-8 path.
func FromUTF8(b []byte) View { return View{state: ComponentFromUTF8(b, false)} }

// FromWide borrows w as a wide path.
func FromWide(w []rune) View { return View{state: ComponentFromWide(w, false)} }

// FromUTF16 borrows u as a UTF-16 path.
func FromUTF16(u []uint16) View { return View{state: ComponentFromUTF16(u, false)} }

// FromCString borrows a NUL-terminated byte string. The view ends at
// the first zero byte (or the end of b) and is marked zero terminated
// when the zero byte is present. b itself keeps its capacity, so
// [View.CStr] can confirm the terminator and pass b through.
func FromCString(b []byte) View {
	if index := bytes.IndexByte(b, 0); index >= 0 {
		return View{state: ComponentFromNarrow(b[:index], true)}
	}
	return View{state: ComponentFromNarrow(b, false)}
}

// Component returns the whole path as a single component.
func (v View) Component() Component { return v.state }

// Encoding returns the encoding of the borrowed text.
func (v View) Encoding() Encoding { return v.state.encoding }

// NativeSize returns the length of the path in code units.
func (v View) NativeSize() int { return v.state.NativeSize() }

// Empty reports whether the path has no code units.
func (v View) Empty() bool { return v.state.Empty() }

// String converts the path to a Go string. It allocates.
func (v View) String() string { return v.state.String() }

// ContainsGlob reports whether the path contains '*' or '?' (and on
// POSIX '[' or ']').
func (v View) ContainsGlob() bool { return v.state.ContainsGlob() }

// ContainsGlobStyle is ContainsGlob under an explicit style.
func (v View) ContainsGlobStyle(style Style) bool { return v.state.ContainsGlobStyle(style) }

// IsAbsolute reports whether the path is absolute under the native
// style.
func (v View) IsAbsolute() bool { return v.IsAbsoluteStyle(Native) }

// IsAbsoluteStyle is IsAbsolute under an explicit style.
func (v View) IsAbsoluteStyle(style Style) bool {
	return Visit(v.state,
		func(s []byte) bool { return isAbsolute(style, s) },
		func(s []rune) bool { return isAbsolute(style, s) },
		func(s []uint16) bool { return isAbsolute(style, s) })
}

// IsRelative is the negation of IsAbsolute.
func (v View) IsRelative() bool { return !v.IsAbsolute() }

// IsNTPath reports whether the path begins with an NT kernel
// namespace prefix (\??\ or \!!\). Only meaningful for Windows style.
func (v View) IsNTPath() bool {
	return Visit(v.state, isNTPath[byte], isNTPath[rune], isNTPath[uint16])
}

func (v View) root(style Style) root {
	return Visit(v.state,
		func(s []byte) root { return splitRoot(style, s) },
		func(s []rune) root { return splitRoot(style, s) },
		func(s []uint16) root { return splitRoot(style, s) })
}

func (v View) relativeStart(style Style, r root) int {
	return Visit(v.state,
		func(s []byte) int { return relativeStart(style, s, r) },
		func(s []rune) int { return relativeStart(style, s, r) },
		func(s []uint16) int { return relativeStart(style, s, r) })
}

func (v View) lastSeparator(style Style, from, end int) int {
	return Visit(v.state,
		func(s []byte) int { return lastIndexSeparator(style, s, from, end) },
		func(s []rune) int { return lastIndexSeparator(style, s, from, end) },
		func(s []uint16) int { return lastIndexSeparator(style, s, from, end) })
}

func (v View) nextSeparator(style Style, from int) int {
	return Visit(v.state,
		func(s []byte) int { return indexSeparator(style, s, from) },
		func(s []rune) int { return indexSeparator(style, s, from) },
		func(s []uint16) int { return indexSeparator(style, s, from) })
}

func (v View) separatorAt(style Style, index int) bool {
	return Visit(v.state,
		func(s []byte) bool { return isSeparator(style, s[index]) },
		func(s []rune) bool { return isSeparator(style, s[index]) },
		func(s []uint16) bool { return isSeparator(style, s[index]) })
}

func (v View) sub(begin, end int) View { return View{state: v.state.slice(begin, end)} }

// RootName returns the root name, such as "C:" or "\\server" under
// Windows style. POSIX paths have no root name.
func (v View) RootName() View { return v.RootNameStyle(Native) }

// RootNameStyle is RootName under an explicit style.
func (v View) RootNameStyle(style Style) View {
	return v.sub(0, v.root(style).nameEnd)
}

// RootDirectory returns the separator that makes the path rooted, if
// any.
func (v View) RootDirectory() View { return v.RootDirectoryStyle(Native) }

// RootDirectoryStyle is RootDirectory under an explicit style.
func (v View) RootDirectoryStyle(style Style) View {
	r := v.root(style)
	return v.sub(r.nameEnd, r.directoryEnd)
}

// RootPath returns the root name followed by the root directory.
func (v View) RootPath() View { return v.RootPathStyle(Native) }

// RootPathStyle is RootPath under an explicit style.
func (v View) RootPathStyle(style Style) View {
	return v.sub(0, v.root(style).directoryEnd)
}

// RelativePath returns everything after the root path.
func (v View) RelativePath() View { return v.RelativePathStyle(Native) }

// RelativePathStyle is RelativePath under an explicit style.
func (v View) RelativePathStyle(style Style) View {
	return v.sub(v.relativeStart(style, v.root(style)), v.NativeSize())
}

// ParentPath returns the path without its final segment and the
// separators preceding it. The parent of a root-only path is the root
// itself; the parent of a single relative segment is empty.
func (v View) ParentPath() View { return v.ParentPathStyle(Native) }

// ParentPathStyle is ParentPath under an explicit style.
func (v View) ParentPathStyle(style Style) View {
	r := v.root(style)
	start := v.relativeStart(style, r)
	if start >= v.NativeSize() {
		return v.sub(0, r.directoryEnd)
	}
	last := v.lastSeparator(style, start, v.NativeSize())
	if last < 0 {
		return v.sub(0, r.directoryEnd)
	}
	end := last
	for end > start && v.separatorAt(style, end-1) {
		end--
	}
	return v.sub(0, end)
}

// Filename returns the final segment of the path. A path ending in a
// separator has an empty filename.
func (v View) Filename() Component { return v.FilenameStyle(Native) }

// FilenameStyle is Filename under an explicit style.
func (v View) FilenameStyle(style Style) Component {
	begin, _ := v.state.filenameAndExtension(style)
	return v.state.slice(begin, v.NativeSize())
}

// RemoveFilename returns the path with its final segment removed. The
// separator before the segment is kept, so RemoveFilename followed by
// Filename reassembles the original text.
func (v View) RemoveFilename() View { return v.RemoveFilenameStyle(Native) }

// RemoveFilenameStyle is RemoveFilename under an explicit style.
func (v View) RemoveFilenameStyle(style Style) View {
	begin, _ := v.state.filenameAndExtension(style)
	return v.sub(0, begin)
}

// Stem returns the final segment without its extension.
func (v View) Stem() Component { return v.state.Stem() }

// StemStyle is Stem under an explicit style.
func (v View) StemStyle(style Style) Component { return v.state.StemStyle(style) }

// Extension returns the extension of the final segment, including the
// leading '.'.
func (v View) Extension() Component { return v.state.Extension() }

// ExtensionStyle is Extension under an explicit style.
func (v View) ExtensionStyle(style Style) Component { return v.state.ExtensionStyle(style) }

// HasRootName reports whether RootName is non-empty.
func (v View) HasRootName() bool { return !v.RootName().Empty() }

// HasRootDirectory reports whether RootDirectory is non-empty.
func (v View) HasRootDirectory() bool { return !v.RootDirectory().Empty() }

// HasRootPath reports whether RootPath is non-empty.
func (v View) HasRootPath() bool { return !v.RootPath().Empty() }

// HasRelativePath reports whether RelativePath is non-empty.
func (v View) HasRelativePath() bool { return !v.RelativePath().Empty() }

// HasParentPath reports whether ParentPath is non-empty.
func (v View) HasParentPath() bool { return !v.ParentPath().Empty() }

// HasFilename reports whether Filename is non-empty.
func (v View) HasFilename() bool { return !v.Filename().Empty() }

// HasStem reports whether Stem is non-empty.
func (v View) HasStem() bool { return !v.Stem().Empty() }

// HasExtension reports whether Extension is non-empty.
func (v View) HasExtension() bool { return !v.Extension().Empty() }

// Compare orders v against other by comparing their segments pairwise
// under the native style. Root directories compare equal whichever
// separator spells them, and sort before any other segment. If every
// shared segment is equal, the path with fewer segments sorts first.
func (v View) Compare(other View) int { return v.CompareStyle(other, Native) }

// CompareStyle is Compare under an explicit style.
func (v View) CompareStyle(other View, style Style) int {
	left := v.beginStyle(style)
	right := other.beginStyle(style)
	for !left.AtEnd() && !right.AtEnd() {
		leftRoot, rightRoot := left.onRootDirectory(), right.onRootDirectory()
		switch {
		case leftRoot && rightRoot:
			left = left.Next()
			right = right.Next()
			continue
		case leftRoot:
			return -1
		case rightRoot:
			return 1
		}
		if result := left.Component().Compare(right.Component()); result != 0 {
			if result < 0 {
				return -1
			}
			return 1
		}
		left = left.Next()
		right = right.Next()
	}
	switch {
	case left.AtEnd() && right.AtEnd():
		return 0
	case left.AtEnd():
		return -1
	default:
		return 1
	}
}

// Equal reports whether v and other compare equal.
func (v View) Equal(other View) bool { return v.Compare(other) == 0 }
