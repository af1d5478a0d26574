// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathdiscovery

import "golang.org/x/sys/unix"

func memoryBacked(filesystem int64) bool {
	switch filesystem {
	case unix.TMPFS_MAGIC, unix.RAMFS_MAGIC:
		return true
	}
	return false
}
