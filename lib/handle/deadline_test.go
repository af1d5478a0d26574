// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"errors"
	"testing"
	"time"
)

func unixEpoch() time.Time { return time.Unix(0, 0) }

func TestDeadlineKinds(t *testing.T) {
	var zero Deadline
	if !zero.IsInfinite() || zero.IsImmediate() {
		t.Error("zero Deadline is not infinite")
	}
	if !Immediate().IsImmediate() {
		t.Error("Immediate is not immediate")
	}
	if !After(0).IsImmediate() || !After(-time.Second).IsImmediate() {
		t.Error("non-positive After is not immediate")
	}
	if After(time.Second).IsImmediate() || After(time.Second).IsInfinite() {
		t.Error("After(1s) is not finite")
	}
	if At(unixEpoch()).IsInfinite() {
		t.Error("At is infinite")
	}
}

func TestRequireSynchronous(t *testing.T) {
	for _, deadline := range []Deadline{Infinite(), Immediate()} {
		if err := requireSynchronous("op", deadline); err != nil {
			t.Errorf("%v rejected: %v", deadline, err)
		}
	}
	if err := requireSynchronous("op", After(time.Millisecond)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("finite deadline: %v, want ErrUnsupported", err)
	}
}

func TestParseWait(t *testing.T) {
	tests := map[string]Deadline{"immediate": Immediate(), "infinite": Infinite(), "": Infinite()}
	for input, want := range tests {
		got, err := ParseWait(input)
		if err != nil || got != want {
			t.Errorf("ParseWait(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseWait("soon"); err == nil {
		t.Error("ParseWait accepted an unknown mode")
	}
}
