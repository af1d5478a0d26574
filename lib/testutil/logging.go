// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

// LogBuffer collects JSON log records written by a logger from
// NewLogBuffer.
type LogBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

// String returns everything written so far. Safe to call while
// another goroutine writes, which makes a LogBuffer usable as the
// output stream of a command running in the background.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

// NewLogBuffer returns a debug-level JSON logger writing into a fresh
// LogBuffer.
func NewLogBuffer() (*slog.Logger, *LogBuffer) {
	buffer := &LogBuffer{}
	logger := slog.New(slog.NewJSONHandler(buffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buffer
}

// Records decodes every record logged so far.
func (b *LogBuffer) Records(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var records []map[string]any
	decoder := json.NewDecoder(bytes.NewReader(b.buffer.Bytes()))
	for decoder.More() {
		var record map[string]any
		if err := decoder.Decode(&record); err != nil {
			t.Fatalf("decoding log record: %v", err)
		}
		records = append(records, record)
	}
	return records
}

// Count returns how many records have the given message.
func (b *LogBuffer) Count(t *testing.T, message string) int {
	t.Helper()
	count := 0
	for _, record := range b.Records(t) {
		if record["msg"] == message {
			count++
		}
	}
	return count
}
