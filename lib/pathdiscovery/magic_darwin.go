// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathdiscovery

// Darwin reports filesystem types by name rather than magic number,
// and its temporary directories are always on disk.
func memoryBacked(filesystem int64) bool { return false }
