// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/bureau-foundation/llio/lib/digest"
	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathview"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/llio/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// selfDigestBuffers is the scatter geometry for hashing the binary.
const (
	selfDigestBufferSize = 256 * 1024
	selfDigestBuffers    = 4
)

// SelfDigest returns the digest and absolute path of the running
// binary. On Linux os.Executable reads /proc/self/exe, which names the
// original binary even if it has since been replaced on disk.
func SelfDigest(ctx context.Context) (digest.Digest, string, error) {
	executable, err := os.Executable()
	if err != nil {
		return digest.Digest{}, "", fmt.Errorf("resolving own executable path: %w", err)
	}
	h, err := handle.Open(nil, pathview.FromString(executable), handle.ModeRead, handle.OpenExisting, handle.CachingAll, handle.FlagNone)
	if err != nil {
		return digest.Digest{}, "", fmt.Errorf("opening own binary: %w", err)
	}
	defer h.Close()

	sum, _, err := digest.Handle(ctx, h, selfDigestBufferSize, selfDigestBuffers)
	if err != nil {
		return digest.Digest{}, "", fmt.Errorf("hashing own binary at %s: %w", executable, err)
	}
	return sum, executable, nil
}
