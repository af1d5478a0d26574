// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"fmt"
	"time"
)

type deadlineKind uint8

const (
	deadlineInfinite deadlineKind = iota
	deadlineImmediate
	deadlineRelative
	deadlineAbsolute
)

// Deadline bounds how long an operation may wait. The zero value waits
// indefinitely. This layer is synchronous: locks honour only Immediate
// and Infinite, and every other deadline fails with ErrUnsupported
// before anything is attempted.
type Deadline struct {
	kind     deadlineKind
	duration time.Duration
	at       time.Time
}

// Infinite returns a deadline that never expires.
func Infinite() Deadline { return Deadline{} }

// Immediate returns a deadline that has already expired: the operation
// polls once and never blocks.
func Immediate() Deadline { return Deadline{kind: deadlineImmediate} }

// After returns a deadline d from when the operation starts. A
// non-positive d is Immediate.
func After(d time.Duration) Deadline {
	if d <= 0 {
		return Immediate()
	}
	return Deadline{kind: deadlineRelative, duration: d}
}

// At returns a deadline at wall-clock time t.
func At(t time.Time) Deadline {
	return Deadline{kind: deadlineAbsolute, at: t}
}

// IsInfinite reports whether d never expires.
func (d Deadline) IsInfinite() bool { return d.kind == deadlineInfinite }

// IsImmediate reports whether d forbids blocking.
func (d Deadline) IsImmediate() bool { return d.kind == deadlineImmediate }

func (d Deadline) String() string {
	switch d.kind {
	case deadlineImmediate:
		return "immediate"
	case deadlineRelative:
		return "after " + d.duration.String()
	case deadlineAbsolute:
		return "at " + d.at.Format(time.RFC3339Nano)
	}
	return "infinite"
}

// ParseWait returns the deadline named by a configuration wait mode:
// "immediate" or "infinite".
func ParseWait(s string) (Deadline, error) {
	switch s {
	case "immediate":
		return Immediate(), nil
	case "infinite", "":
		return Infinite(), nil
	}
	return Deadline{}, fmt.Errorf("unknown wait mode %q (want immediate or infinite)", s)
}

// requireSynchronous rejects deadlines that would need a timer.
func requireSynchronous(op string, d Deadline) error {
	if d.IsInfinite() || d.IsImmediate() {
		return nil
	}
	return fmt.Errorf("%s with deadline %s: %w", op, d, ErrUnsupported)
}
