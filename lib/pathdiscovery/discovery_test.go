// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathdiscovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/llio/lib/testutil"
)

func TestCandidatesOrder(t *testing.T) {
	environment := map[string]string{
		"TMPDIR":         "/custom/tmpdir",
		"XDG_CACHE_HOME": "/custom/cache",
		"HOME":           "/home/user",
	}
	candidates := Candidates(func(name string) string { return environment[name] })

	want := []Candidate{
		{"/custom/tmpdir", "TMPDIR"},
		{"/custom/cache", "XDG_CACHE_HOME"},
		{"/home/user/.cache", "HOME"},
		{"/tmp", "system"},
		{"/var/tmp", "system"},
	}
	if len(candidates) != len(want) {
		t.Fatalf("Candidates = %v, want %v", candidates, want)
	}
	for index := range want {
		if candidates[index] != want[index] {
			t.Errorf("candidate %d = %v, want %v", index, candidates[index], want[index])
		}
	}
}

func TestCheckRejectsUnusable(t *testing.T) {
	directory := t.TempDir()
	file := testutil.WriteFile(t, directory, "plain", nil)

	missing := Check(Candidate{Path: filepath.Join(directory, "missing")})
	if missing.Usable || !errors.Is(missing.Err, os.ErrNotExist) {
		t.Errorf("missing directory: usable %v err %v", missing.Usable, missing.Err)
	}
	notDirectory := Check(Candidate{Path: file})
	if notDirectory.Usable || notDirectory.Err == nil {
		t.Errorf("regular file: usable %v err %v", notDirectory.Usable, notDirectory.Err)
	}
	usable := Check(Candidate{Path: directory})
	if !usable.Usable || usable.Err != nil {
		t.Errorf("temp directory: usable %v err %v", usable.Usable, usable.Err)
	}
}

func TestDiscoverSkipsUnusable(t *testing.T) {
	directory := t.TempDir()
	chosen, results, err := Discover([]Candidate{
		{Path: filepath.Join(directory, "missing"), Source: "TMPDIR"},
		{Path: directory, Source: "TMP"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if chosen.Path != directory || chosen.Source != "TMP" {
		t.Errorf("chose %v", chosen.Candidate)
	}
	if len(results) == 0 || results[0].Usable {
		t.Errorf("results = %v", results)
	}
}

func TestDiscoverNothingUsable(t *testing.T) {
	_, results, err := Discover([]Candidate{{Path: filepath.Join(t.TempDir(), "gone")}})
	if !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("Discover: %v, want ErrNoCandidate", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %v", results)
	}
}

func TestStorageBackedDirectoryIsCached(t *testing.T) {
	first, err := StorageBackedTemporaryFilesDirectory()
	if err != nil {
		t.Skipf("no temporary directory on this machine: %v", err)
	}
	second, err := StorageBackedTemporaryFilesDirectory()
	if err != nil || second != first {
		t.Fatalf("second call returned %p, %v; want %p", second, err, first)
	}
	if !first.IsValid() || !first.IsDirectory() {
		t.Errorf("directory handle valid %v directory %v", first.IsValid(), first.IsDirectory())
	}
	result, err := Chosen()
	if err != nil || result.Path != first.Path() {
		t.Errorf("Chosen = %v, %v; handle path %q", result, err, first.Path())
	}
}
