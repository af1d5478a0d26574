// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathdiscovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/llio/internal/sysio"
	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathview"
)

// ErrNoCandidate reports that no candidate directory was usable.
var ErrNoCandidate = errors.New("pathdiscovery: no usable temporary directory")

// Candidate is one directory considered by Discover.
type Candidate struct {
	// Path is the directory.
	Path string
	// Source names where the path came from: an environment variable
	// or "system".
	Source string
}

// Result is the outcome of checking one candidate.
type Result struct {
	Candidate
	// Usable reports whether the path is an existing writable
	// directory.
	Usable bool
	// StorageBacked reports whether the directory's filesystem is
	// backed by storage rather than memory.
	StorageBacked bool
	// Filesystem is the statfs magic number, zero when not checked.
	Filesystem int64
	// Err explains why the candidate is not usable.
	Err error
}

var environmentVariables = []string{"TMPDIR", "TMP", "TEMP", "TEMPDIR", "XDG_RUNTIME_DIR", "XDG_CACHE_HOME"}

// Candidates returns the directories checked by
// StorageBackedTemporaryFilesDirectory, in priority order, from the
// given environment lookup.
func Candidates(getenv func(string) string) []Candidate {
	var candidates []Candidate
	for _, name := range environmentVariables {
		if value := getenv(name); value != "" {
			candidates = append(candidates, Candidate{Path: value, Source: name})
		}
	}
	if home := getenv("HOME"); home != "" {
		candidates = append(candidates, Candidate{Path: filepath.Join(home, ".cache"), Source: "HOME"})
	}
	candidates = append(candidates,
		Candidate{Path: "/tmp", Source: "system"},
		Candidate{Path: "/var/tmp", Source: "system"},
	)
	return candidates
}

// Check examines one candidate.
func Check(candidate Candidate) Result {
	result := Result{Candidate: candidate}
	info, err := os.Stat(candidate.Path)
	if err != nil {
		result.Err = err
		return result
	}
	if !info.IsDir() {
		result.Err = fmt.Errorf("%s is not a directory", candidate.Path)
		return result
	}
	if err := unix.Access(candidate.Path, unix.W_OK|unix.X_OK); err != nil {
		result.Err = fmt.Errorf("%s is not writable: %w", candidate.Path, err)
		return result
	}
	result.Usable = true
	stat, err := sysio.Statfs(candidate.Path)
	if err != nil {
		result.Err = fmt.Errorf("statfs %s: %w", candidate.Path, err)
		return result
	}
	result.Filesystem = int64(stat.Type)
	result.StorageBacked = !memoryBacked(result.Filesystem)
	return result
}

// Discover checks candidates in order and returns the chosen one with
// every result examined. The first storage-backed candidate wins;
// failing that, the first usable one.
func Discover(candidates []Candidate) (Result, []Result, error) {
	results := make([]Result, 0, len(candidates))
	fallback := -1
	for _, candidate := range candidates {
		result := Check(candidate)
		results = append(results, result)
		if !result.Usable {
			continue
		}
		if result.StorageBacked {
			return result, results, nil
		}
		if fallback < 0 {
			fallback = len(results) - 1
		}
	}
	if fallback >= 0 {
		return results[fallback], results, nil
	}
	return Result{}, results, ErrNoCandidate
}

var cached struct {
	once      sync.Once
	directory *handle.PathHandle
	result    Result
	err       error
}

// StorageBackedTemporaryFilesDirectory returns an open handle to the
// discovered directory. The first call does the work; later calls
// return the same handle. The handle lives for the rest of the process
// and must not be closed.
func StorageBackedTemporaryFilesDirectory() (*handle.PathHandle, error) {
	cached.once.Do(func() {
		result, _, err := Discover(Candidates(os.Getenv))
		if err != nil {
			cached.err = err
			return
		}
		cached.result = result
		cached.directory, cached.err = handle.OpenDirectory(nil, pathview.FromString(result.Path))
	})
	return cached.directory, cached.err
}

// Chosen returns the result behind StorageBackedTemporaryFilesDirectory.
func Chosen() (Result, error) {
	if _, err := StorageBackedTemporaryFilesDirectory(); err != nil {
		return Result{}, err
	}
	return cached.result, nil
}
