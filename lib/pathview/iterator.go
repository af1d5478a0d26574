// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathview

import (
	"iter"
	"unsafe"
)

// Iterator walks the segments of a View. Each step rescans from the
// current segment to the neighbouring separator, so a full traversal
// is linear in the length of the path and nothing is precomputed.
//
// The root name and the root directory are reported as segments of
// their own: "/a/b" yields "/", "a", "b". Runs of separators between
// segments and trailing separators yield nothing.
//
// An Iterator is a value; Next and Prev return new iterators.
type Iterator struct {
	parent View
	style  Style
	begin  int
	end    int
}

// Begin returns an iterator positioned on the first segment, or equal
// to End when the path is empty.
func (v View) Begin() Iterator { return v.beginStyle(Native) }

// End returns the past-the-end iterator.
func (v View) End() Iterator { return v.endStyle(Native) }

// BeginStyle is Begin under an explicit style.
func (v View) BeginStyle(style Style) Iterator { return v.beginStyle(style) }

// EndStyle is End under an explicit style.
func (v View) EndStyle(style Style) Iterator { return v.endStyle(style) }

func (v View) beginStyle(style Style) Iterator {
	length := v.NativeSize()
	it := Iterator{parent: v, style: style}
	if length == 0 {
		return it
	}
	r := v.root(style)
	switch {
	case r.hasName():
		it.end = r.nameEnd
	case r.hasDirectory():
		it.begin, it.end = r.nameEnd, r.directoryEnd
	default:
		it.end = v.segmentEnd(style, 0)
	}
	return it
}

func (v View) endStyle(style Style) Iterator {
	length := v.NativeSize()
	return Iterator{parent: v, style: style, begin: length, end: length}
}

// segmentEnd returns the index of the separator ending the segment
// that starts at from, or the path length.
func (v View) segmentEnd(style Style, from int) int {
	if next := v.nextSeparator(style, from); next >= 0 {
		return next
	}
	return v.NativeSize()
}

// AtEnd reports whether the iterator is past the last segment.
func (it Iterator) AtEnd() bool {
	return it.begin >= it.parent.NativeSize()
}

// onRootDirectory reports whether the iterator is positioned on the
// root directory separator.
func (it Iterator) onRootDirectory() bool {
	r := it.parent.root(it.style)
	return r.hasDirectory() && it.begin == r.nameEnd && it.end == r.directoryEnd
}

// Component returns the current segment. The segment is zero
// terminated only when it ends where a zero-terminated parent ends.
// Calling Component on an end iterator returns an empty component.
func (it Iterator) Component() Component {
	if it.AtEnd() {
		return it.parent.state.slice(it.parent.NativeSize(), it.parent.NativeSize())
	}
	return it.parent.state.slice(it.begin, it.end)
}

// Next returns the iterator for the following segment. Advancing an
// end iterator returns it unchanged.
func (it Iterator) Next() Iterator {
	length := it.parent.NativeSize()
	if it.AtEnd() {
		return it
	}
	r := it.parent.root(it.style)
	if it.begin == 0 && it.end == r.nameEnd && r.hasName() && r.hasDirectory() {
		it.begin, it.end = r.nameEnd, r.directoryEnd
		return it
	}
	position := it.end
	for position < length && it.parent.separatorAt(it.style, position) {
		position++
	}
	if position >= length {
		it.begin, it.end = length, length
		return it
	}
	it.begin = position
	it.end = it.parent.segmentEnd(it.style, position)
	return it
}

// Prev returns the iterator for the preceding segment. Stepping back
// from the first segment returns it unchanged.
func (it Iterator) Prev() Iterator {
	r := it.parent.root(it.style)
	if it.begin == 0 && !it.AtEnd() {
		return it
	}
	if it.begin == r.nameEnd && it.end == r.directoryEnd && r.hasDirectory() {
		if r.hasName() {
			it.begin, it.end = 0, r.nameEnd
		}
		return it
	}

	position := it.begin
	for position > r.directoryEnd && it.parent.separatorAt(it.style, position-1) {
		position--
	}
	if position <= r.directoryEnd {
		switch {
		case r.hasDirectory():
			it.begin, it.end = r.nameEnd, r.directoryEnd
		case r.hasName():
			it.begin, it.end = 0, r.nameEnd
		}
		return it
	}
	last := it.parent.lastSeparator(it.style, r.directoryEnd, position)
	if last < 0 {
		it.begin = r.directoryEnd
	} else {
		it.begin = last + 1
	}
	it.end = position
	return it
}

// Equal reports whether two iterators denote the same position: both
// past the end, or the same segment of the same borrowed path.
func (it Iterator) Equal(other Iterator) bool {
	if it.AtEnd() && other.AtEnd() {
		return true
	}
	return sameBorrow(it.parent.state, other.parent.state) &&
		it.begin == other.begin && it.end == other.end
}

// sameBorrow reports whether two components view exactly the same
// memory.
func sameBorrow(a, b Component) bool {
	if a.encoding != b.encoding || a.NativeSize() != b.NativeSize() {
		return false
	}
	return dataPointer(a) == dataPointer(b)
}

func dataPointer(c Component) unsafe.Pointer {
	switch c.encoding {
	case Wide:
		return unsafe.Pointer(unsafe.SliceData(c.wide))
	case UTF16:
		return unsafe.Pointer(unsafe.SliceData(c.utf16))
	default:
		return unsafe.Pointer(unsafe.SliceData(c.bytes))
	}
}

// Segments returns a sequence over the path's segments in order.
func (v View) Segments() iter.Seq[Component] { return v.SegmentsStyle(Native) }

// SegmentsStyle is Segments under an explicit style.
func (v View) SegmentsStyle(style Style) iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for it := v.beginStyle(style); !it.AtEnd(); it = it.Next() {
			if !yield(it.Component()) {
				return
			}
		}
	}
}

// Backward returns a sequence over the path's segments from last to
// first.
func (v View) Backward() iter.Seq[Component] { return v.BackwardStyle(Native) }

// BackwardStyle is Backward under an explicit style.
func (v View) BackwardStyle(style Style) iter.Seq[Component] {
	return func(yield func(Component) bool) {
		if v.Empty() {
			return
		}
		first := v.beginStyle(style)
		it := v.endStyle(style)
		for {
			previous := it.Prev()
			if previous.Equal(it) {
				return
			}
			it = previous
			if !yield(it.Component()) {
				return
			}
			if it.Equal(first) {
				return
			}
		}
	}
}
