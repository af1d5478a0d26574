// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strings"
	"testing"
	"time"
)

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 42
	if got := RequireReceive(t, ch, time.Second, "buffered value"); got != 42 {
		t.Errorf("RequireReceive = %d, want 42", got)
	}
}

type fatalRecorder struct {
	message string
}

func (f *fatalRecorder) Helper() {}
func (f *fatalRecorder) Fatalf(format string, args ...any) {
	f.message = format
	panic(f)
}

func TestRequireReceiveTimesOut(t *testing.T) {
	recorder := &fatalRecorder{}
	func() {
		defer func() {
			if recovered := recover(); recovered != recorder {
				t.Fatalf("unexpected panic %v", recovered)
			}
		}()
		RequireReceive(recorder, make(chan int), time.Millisecond, "never")
	}()
	if !strings.Contains(recorder.message, "nothing received") {
		t.Errorf("failure message %q does not mention the timeout", recorder.message)
	}
}

func TestUniqueIDIncreases(t *testing.T) {
	first := UniqueID("fifo")
	second := UniqueID("fifo")
	if first == second || !strings.HasPrefix(first, "fifo-") {
		t.Errorf("UniqueID returned %q then %q", first, second)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "seed", []byte("content"))
	if got := string(ReadFile(t, path)); got != "content" {
		t.Errorf("ReadFile = %q", got)
	}
}

func TestLogBufferCounts(t *testing.T) {
	logger, buffer := NewLogBuffer()
	logger.Warn("first", "n", 1)
	logger.Warn("first", "n", 2)
	logger.Info("second")
	if got := buffer.Count(t, "first"); got != 2 {
		t.Errorf("Count(first) = %d, want 2", got)
	}
	if records := buffer.Records(t); len(records) != 3 || records[2]["level"] != "INFO" {
		t.Errorf("records = %v", records)
	}
}

func TestRequireReceiveFailsOnClose(t *testing.T) {
	recorder := &fatalRecorder{}
	closed := make(chan int)
	close(closed)
	func() {
		defer func() {
			if recovered := recover(); recovered != recorder {
				t.Fatalf("unexpected panic %v", recovered)
			}
		}()
		RequireReceive(recorder, closed, time.Second, "closed")
	}()
	if !strings.Contains(recorder.message, "channel closed") {
		t.Errorf("failure message %q does not mention the close", recorder.message)
	}
}
