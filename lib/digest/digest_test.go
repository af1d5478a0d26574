// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathview"
	"github.com/bureau-foundation/llio/lib/pipe"
	"github.com/bureau-foundation/llio/lib/testutil"
)

func openRead(t *testing.T, path string) *handle.IOHandle {
	t.Helper()
	h, err := handle.Open(nil, pathview.FromString(path), handle.ModeRead, handle.OpenExisting, handle.CachingAll, handle.FlagNone)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHandleMatchesBytes(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 1000)

	tests := []struct {
		name       string
		bufferSize int
		buffers    int
	}{
		{"single small buffer", 7, 1},
		{"several buffers", 100, 4},
		{"one read covers all", 1 << 16, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "content", content)
			h := openRead(t, path)

			got, size, err := Handle(context.Background(), h, test.bufferSize, test.buffers)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if size != int64(len(content)) {
				t.Errorf("size = %d, want %d", size, len(content))
			}
			if want := Digest(blake3.Sum256(content)); got != want {
				t.Errorf("digest = %s, want %s", got, want)
			}
		})
	}
}

func TestHandleEmptyFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "empty", nil)
	got, size, err := Handle(context.Background(), openRead(t, path), 16, 2)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if size != 0 || got != Bytes(nil) {
		t.Errorf("empty file: size %d digest %s", size, got)
	}
}

func TestHandlePipe(t *testing.T) {
	reader, writer, err := pipe.Anonymous(handle.CachingAll, handle.FlagNone)
	if err != nil {
		t.Fatalf("Anonymous: %v", err)
	}
	defer reader.Close()

	content := []byte(strings.Repeat("streamed ", 200))
	done := make(chan error, 1)
	go func() {
		_, err := writer.WriteAt(0, content)
		writer.Close()
		done <- err
	}()

	got, size, err := Handle(context.Background(), &reader.IOHandle, 64, 3)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("writer: %v", err)
	}
	if size != int64(len(content)) || got != Bytes(content) {
		t.Errorf("pipe digest %s over %d bytes, want %s over %d", got, size, Bytes(content), len(content))
	}
}

func TestHandleCancelled(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "content", []byte("data"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Handle(ctx, openRead(t, path), 16, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled digest: %v, want context.Canceled", err)
	}
}

func TestHandleRejectsBadGeometry(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "content", []byte("data"))
	h := openRead(t, path)
	for _, geometry := range [][2]int{{0, 1}, {16, 0}, {16, handle.MaxBuffers + 1}} {
		if _, _, err := Handle(context.Background(), h, geometry[0], geometry[1]); err == nil {
			t.Errorf("Handle(%d, %d) succeeded", geometry[0], geometry[1])
		}
	}
}

func TestHandleClosed(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "content", []byte("data"))
	h := openRead(t, path)
	h.Close()
	if _, _, err := Handle(context.Background(), h, 16, 1); !errors.Is(err, handle.ErrClosed) {
		t.Errorf("digest of closed handle: %v, want ErrClosed", err)
	}
}

func TestFormatParse(t *testing.T) {
	d := Bytes([]byte("round trip"))
	text := Format(d)
	if len(text) != 2*Size || text != strings.ToLower(text) {
		t.Fatalf("Format = %q", text)
	}
	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != d {
		t.Errorf("Parse(Format(d)) = %s, want %s", parsed, d)
	}

	for _, bad := range []string{"", "zz", text[:62], text + "00"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded", bad)
		}
	}
}
