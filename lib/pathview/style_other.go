// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package pathview

// Native is the lexical style of the build platform.
const Native = POSIX
