// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathview provides borrowed, encoding-polymorphic views of
// filesystem paths.
//
// A [View] never owns or copies the text it describes. It wraps a
// slice supplied by the caller in one of five encodings:
//
//   - [Bytes] -- raw bytes passed through to the kernel untranslated
//   - [Narrow] -- the platform narrow encoding (UTF-8 on POSIX)
//   - [Wide] -- 32-bit code units, the POSIX wchar_t
//   - [UTF8] -- UTF-8 code units
//   - [UTF16] -- UTF-16 code units
//
// Every narrower view ([View.RootName], [View.ParentPath],
// [View.Filename], [View.Stem], [View.Extension], iterated segments)
// is a subslice of the same backing array. The caller must keep the
// backing array alive and unmodified for as long as any view over it
// is in use; Go's garbage collector guarantees the former, nothing can
// guarantee the latter.
//
// Comparison of byte-based views is ordinal. Wide and UTF-16 views are
// converted lazily, a small batch at a time, to UTF-8 extended so that
// lone surrogates and out-of-range units keep distinct encodings, and
// compared byte by byte against the other side. Invalid bytes are never
// replaced, so equal views always hold the same content. The kernel
// form of a wide or UTF-16 view is transcoded through
// golang.org/x/text transformers, which substitute U+FFFD for
// malformed input.
//
// [View.CStr] and [View.WithCStr] produce the NUL-terminated byte
// string the kernel expects. When the view is already byte-encoded
// and the byte following it in the caller's slice is zero, the
// caller's memory is handed out directly and nothing is copied.
//
// Lexical rules (separators, roots, glob characters) follow a [Style].
// [Native] is selected at build time; the Windows rules are available
// on every platform through the *Style methods.
//
// This package depends only on lib/process, for the fatal path taken
// when a path cannot be materialized without truncation.
package pathview
