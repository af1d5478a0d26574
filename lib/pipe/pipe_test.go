// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipe

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathdiscovery"
	"github.com/bureau-foundation/llio/lib/pathview"
	"github.com/bureau-foundation/llio/lib/testutil"
)

// baseDirectory opens a fresh temporary directory as a base handle.
func baseDirectory(t *testing.T) *handle.PathHandle {
	t.Helper()
	base, err := handle.OpenDirectory(nil, pathview.FromString(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenDirectory: %v", err)
	}
	t.Cleanup(func() { base.Close() })
	return base
}

func exists(t *testing.T, base *handle.PathHandle, name string) bool {
	t.Helper()
	_, err := os.Lstat(filepath.Join(base.Path(), name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("stat %s: %v", name, err)
	}
	return err == nil
}

func readAll(t *testing.T, h *Handle, size int) string {
	t.Helper()
	buffer := make([]byte, size)
	n, err := h.ReadAt(0, buffer)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	return string(buffer[:n])
}

func TestDuplexPipeRoundTrip(t *testing.T) {
	base := baseDirectory(t)
	name := testutil.UniqueID("duplex")

	h, err := Open(pathview.FromString(name), handle.ModeWrite, handle.IfNeeded, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !h.IsPipe() || h.IsSeekable() || !h.IsReadable() || !h.IsWritable() {
		t.Errorf("disposition %b", h.Disposition())
	}
	if h.Flags()&handle.FlagUnlinkOnFirstClose == 0 {
		t.Error("named pipe lacks FlagUnlinkOnFirstClose")
	}
	if h.Name() != name || h.Base() != base {
		t.Errorf("Name %q Base %p", h.Name(), h.Base())
	}

	if _, err := h.WriteAt(12345, []byte("through "), []byte("the fifo")); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if got := readAll(t, h, 64); got != "through the fifo" {
		t.Errorf("read %q", got)
	}

	if !exists(t, base, name) {
		t.Fatal("fifo missing before close")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if exists(t, base, name) {
		t.Error("fifo still present after close")
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestReaderAndWriterEnds(t *testing.T) {
	base := baseDirectory(t)
	path := pathview.FromString(testutil.UniqueID("ends"))

	reader, err := Create(path, handle.CachingAll, handle.FlagMultiplexable, base)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer reader.Close()
	if !reader.IsNonBlocking() || reader.IsWritable() {
		t.Errorf("reader disposition %b", reader.Disposition())
	}

	writer, err := OpenWriter(path, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	defer writer.Close()
	if !writer.IsAppendOnly() || writer.IsReadable() {
		t.Errorf("writer disposition %b", writer.Disposition())
	}

	if _, err := reader.Read(handle.Request{Buffers: [][]byte{make([]byte, 8)}}, handle.Immediate()); !errors.Is(err, handle.ErrTimeout) {
		t.Fatalf("read from empty non-blocking fifo: %v, want ErrTimeout", err)
	}
	if _, err := writer.WriteAt(0, []byte("ping")); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if got := readAll(t, reader, 8); got != "ping" {
		t.Errorf("read %q", got)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	if err := reader.Close(); err != nil {
		t.Errorf("closing reader after the entry was removed: %v", err)
	}
}

func TestBlockingReaderWaitsForWriter(t *testing.T) {
	base := baseDirectory(t)
	path := pathview.FromString(testutil.UniqueID("blocking"))
	if err := unix.Mkfifo(filepath.Join(base.Path(), path.String()), 0o600); err != nil {
		t.Fatalf("mkfifo: %v", err)
	}

	type opened struct {
		h   *Handle
		err error
	}
	readers := make(chan opened, 1)
	go func() {
		h, err := Create(path, handle.CachingAll, handle.FlagNone, base)
		readers <- opened{h, err}
	}()

	writer, err := OpenWriter(path, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	defer writer.Close()

	result := testutil.RequireReceive(t, readers, 10*time.Second, "reader open never returned")
	if result.err != nil {
		t.Fatalf("Create: %v", result.err)
	}
	defer result.h.Close()
	if _, err := writer.WriteAt(0, []byte("hello")); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if got := readAll(t, result.h, 5); got != "hello" {
		t.Errorf("read %q", got)
	}
}

func TestNonBlockingWriterWithoutReader(t *testing.T) {
	base := baseDirectory(t)
	name := testutil.UniqueID("lonely")
	if err := unix.Mkfifo(filepath.Join(base.Path(), name), 0o600); err != nil {
		t.Fatalf("mkfifo: %v", err)
	}

	_, err := OpenWriter(pathview.FromString(name), handle.CachingAll, handle.FlagMultiplexable, base)
	if !errors.Is(err, unix.ENXIO) {
		t.Fatalf("OpenWriter without a reader: %v, want ENXIO", err)
	}
	if !exists(t, base, name) {
		t.Error("failed open removed a fifo it did not create")
	}
}

func TestFailedOpenRemovesCreatedEntry(t *testing.T) {
	base := baseDirectory(t)

	_, err := Random(handle.ModeAppend, handle.CachingAll, handle.FlagMultiplexable, base)
	if !errors.Is(err, unix.ENXIO) {
		t.Fatalf("Random write end without a reader: %v, want ENXIO", err)
	}
	entries, err := os.ReadDir(base.Path())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed open left %d entries, first %q", len(entries), entries[0].Name())
	}
}

// abandon opens a named fifo and drops it without closing it.
func abandon(t *testing.T, base *handle.PathHandle, name string) {
	t.Helper()
	if _, err := Open(pathview.FromString(name), handle.ModeWrite, handle.IfNeeded, handle.CachingAll, handle.FlagNone, base); err != nil {
		t.Fatalf("Open: %v", err)
	}
}

func TestAbandonedPipeRemovesEntry(t *testing.T) {
	base := baseDirectory(t)
	name := testutil.UniqueID("abandoned")
	abandon(t, base, name)
	if !exists(t, base, name) {
		t.Fatal("fifo was not created")
	}

	deadline := time.Now().Add(10 * time.Second)
	for exists(t, base, name) {
		if time.Now().After(deadline) {
			t.Fatal("fifo entry survived the teardown of its abandoned handle")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCreationDispositions(t *testing.T) {
	base := baseDirectory(t)
	path := pathview.FromString(testutil.UniqueID("exclusive"))

	if _, err := Open(path, handle.ModeWrite, handle.OpenExisting, handle.CachingAll, handle.FlagNone, base); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("OpenExisting on a missing fifo: %v, want fs.ErrNotExist", err)
	}
	first, err := Open(path, handle.ModeWrite, handle.OnlyIfNotExist, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("OnlyIfNotExist: %v", err)
	}
	defer first.Close()
	if _, err := Open(path, handle.ModeWrite, handle.OnlyIfNotExist, handle.CachingAll, handle.FlagNone, base); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second OnlyIfNotExist: %v, want fs.ErrExist", err)
	}
	renewed, err := Open(path, handle.ModeWrite, handle.AlwaysNew, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("AlwaysNew: %v", err)
	}
	defer renewed.Close()
}

func TestOpenRejectsRegularFile(t *testing.T) {
	base := baseDirectory(t)
	testutil.WriteFile(t, base.Path(), "regular", []byte("data"))
	_, err := Open(pathview.FromString("regular"), handle.ModeWrite, handle.OpenExisting, handle.CachingAll, handle.FlagNone, base)
	if err == nil {
		t.Fatal("opened a regular file as a pipe")
	}
	if !exists(t, base, "regular") {
		t.Error("rejecting the regular file removed it")
	}
}

func TestReleaseKeepsEntry(t *testing.T) {
	base := baseDirectory(t)
	name := testutil.UniqueID("released")
	h, err := Open(pathview.FromString(name), handle.ModeWrite, handle.IfNeeded, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	fd := h.Release()
	defer unix.Close(fd)
	if err := h.Close(); err != nil {
		t.Fatalf("Close after Release: %v", err)
	}
	if !exists(t, base, name) {
		t.Error("fifo removed although the descriptor was released")
	}
}

func TestRandomNames(t *testing.T) {
	base := baseDirectory(t)
	first, err := Random(handle.ModeWrite, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	defer first.Close()
	second, err := Random(handle.ModeWrite, handle.CachingAll, handle.FlagNone, base)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	defer second.Close()

	for _, h := range []*Handle{first, second} {
		name := h.Name()
		if !strings.HasSuffix(name, RandomSuffix) || len(name) != 32+len(RandomSuffix) {
			t.Errorf("random name %q", name)
		}
		if strings.Trim(strings.TrimSuffix(name, RandomSuffix), "0123456789abcdef") != "" {
			t.Errorf("random name %q is not lower-case hex", name)
		}
		if !exists(t, base, name) {
			t.Errorf("%s not created in the base directory", name)
		}
	}
	if first.Name() == second.Name() {
		t.Error("two random pipes share a name")
	}
}

func TestRandomInDiscoveredDirectory(t *testing.T) {
	if _, err := pathdiscovery.StorageBackedTemporaryFilesDirectory(); err != nil {
		t.Skipf("no temporary directory: %v", err)
	}
	h, err := Random(handle.ModeWrite, handle.CachingAll, handle.FlagNone, nil)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	base := h.Base()
	name := h.Name()
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if exists(t, base, name) {
		t.Error("random pipe left behind in the temporary directory")
	}
}

func TestAnonymousPipe(t *testing.T) {
	reader, writer, err := Anonymous(handle.CachingAll, handle.FlagNone)
	if err != nil {
		t.Fatalf("Anonymous: %v", err)
	}
	defer reader.Close()
	defer writer.Close()

	if reader.Name() != "" || writer.Name() != "" {
		t.Errorf("anonymous pipe has names %q %q", reader.Name(), writer.Name())
	}
	if !reader.IsPipe() || !reader.IsReadable() || reader.IsWritable() {
		t.Errorf("reader disposition %b", reader.Disposition())
	}
	if !writer.IsPipe() || !writer.IsWritable() {
		t.Errorf("writer disposition %b", writer.Disposition())
	}
	for _, h := range []*Handle{reader, writer} {
		flags, err := unix.FcntlInt(uintptr(h.FD()), unix.F_GETFD, 0)
		if err != nil || flags&unix.FD_CLOEXEC == 0 {
			t.Errorf("descriptor %d not close-on-exec: %v", h.FD(), err)
		}
	}

	written, err := writer.Write(handle.Request{Buffers: [][]byte{[]byte("ab"), []byte("cd")}}, handle.Infinite())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(written[0])+len(written[1]) != 4 {
		t.Errorf("wrote %d bytes", len(written[0])+len(written[1]))
	}
	if got := readAll(t, reader, 4); got != "abcd" {
		t.Errorf("read %q", got)
	}
}

func TestAnonymousMultiplexable(t *testing.T) {
	reader, writer, err := Anonymous(handle.CachingAll, handle.FlagMultiplexable)
	if err != nil {
		t.Fatalf("Anonymous: %v", err)
	}
	defer reader.Close()
	defer writer.Close()
	if !reader.IsNonBlocking() || !writer.IsNonBlocking() {
		t.Fatal("multiplexable pipe ends are blocking")
	}
	if _, err := reader.ReadAt(0, make([]byte, 1)); !errors.Is(err, handle.ErrTimeout) {
		t.Errorf("read from empty pipe: %v, want ErrTimeout", err)
	}
}
