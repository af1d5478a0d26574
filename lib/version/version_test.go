// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/bureau-foundation/llio/lib/digest"
)

func TestInfo(t *testing.T) {
	original := [...]string{GitCommit, GitDirty, BuildTime, Version}
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime, Version = original[0], original[1], original[2], original[3]
	})

	GitCommit, GitDirty, BuildTime, Version = "abc1234", "false", "2026-01-02T03:04:05Z", "1.2.3"
	if got, want := Info(), "1.2.3 (abc1234, 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("dirty Info() = %q", got)
	}
	if Short() != "1.2.3" {
		t.Errorf("Short() = %q", Short())
	}
}

func TestFull(t *testing.T) {
	full := Full()
	for _, want := range []string{Info(), runtime.Version(), runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() = %q, missing %q", full, want)
		}
	}
}

func TestSelfDigest(t *testing.T) {
	sum, path, err := SelfDigest(context.Background())
	if err != nil {
		t.Fatalf("SelfDigest: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if want := digest.Bytes(content); sum != want {
		t.Errorf("SelfDigest = %s, want %s", sum, want)
	}
}
