// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handle

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/llio/internal/sysio"
	"github.com/bureau-foundation/llio/lib/testutil"
)

// lockPair opens the same file twice so the two handles have separate
// open file descriptions.
func lockPair(t *testing.T) (*IOHandle, *IOHandle) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locked")
	first := openFile(t, path, ModeWrite, IfNeeded, CachingAll)
	second := openFile(t, path, ModeWrite, OpenExisting, CachingAll)
	return first, second
}

// requireOpenFileScope skips when the kernel only offers process-scoped
// locks, under which two handles in one process never conflict.
func requireOpenFileScope(t *testing.T, guard *ExtentGuard) {
	t.Helper()
	if guard.ProcessScoped() {
		guard.Unlock()
		t.Skip("kernel lacks open file description locks")
	}
}

// forceProcessScope makes every lock in the test take the fallback
// path, as on a kernel without open file description locks.
func forceProcessScope(t *testing.T) {
	t.Helper()
	previous := openFileLocksRejected.Load()
	openFileLocksRejected.Store(true)
	t.Cleanup(func() { openFileLocksRejected.Store(previous) })
}

func TestExclusiveLocksConflictBetweenHandles(t *testing.T) {
	first, second := lockPair(t)

	guard, err := first.Lock(0, 100, true, Immediate())
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}
	requireOpenFileScope(t, guard)
	defer guard.Unlock()

	if _, err := second.Lock(50, 10, true, Immediate()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("overlapping exclusive lock: %v, want ErrTimeout", err)
	}
	if _, err := second.Lock(50, 10, false, Immediate()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("shared lock inside exclusive range: %v, want ErrTimeout", err)
	}
	disjoint, err := second.Lock(100, 10, true, Immediate())
	if err != nil {
		t.Fatalf("disjoint lock: %v", err)
	}
	disjoint.Unlock()
}

func TestSharedLocksCoexist(t *testing.T) {
	first, second := lockPair(t)

	a, err := first.Lock(0, WholeFile, false, Immediate())
	if err != nil {
		t.Fatalf("first shared Lock: %v", err)
	}
	defer a.Unlock()
	b, err := second.Lock(0, WholeFile, false, Immediate())
	if err != nil {
		t.Fatalf("second shared Lock: %v", err)
	}
	defer b.Unlock()
	if a.Exclusive() || b.Exclusive() {
		t.Error("shared guards report exclusive")
	}
}

func TestUnlockReleasesForOthers(t *testing.T) {
	first, second := lockPair(t)

	guard, err := first.Lock(0, WholeFile, true, Immediate())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	requireOpenFileScope(t, guard)
	guard.Unlock()
	if guard.Locked() || guard.Handle() != nil {
		t.Error("guard still reports a lock after Unlock")
	}
	guard.Unlock()

	again, err := second.Lock(0, WholeFile, true, Immediate())
	if err != nil {
		t.Fatalf("Lock after Unlock: %v", err)
	}
	again.Unlock()
}

func TestBlockingLockWaitsForHolder(t *testing.T) {
	first, second := lockPair(t)

	guard, err := first.Lock(0, 10, true, Infinite())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	requireOpenFileScope(t, guard)

	acquired := make(chan error, 1)
	go func() {
		waiter, err := second.Lock(0, 10, true, Infinite())
		if err == nil {
			waiter.Unlock()
		}
		acquired <- err
	}()

	select {
	case err := <-acquired:
		t.Fatalf("blocking lock returned while the range was held: %v", err)
	default:
	}

	guard.Unlock()
	if err := testutil.RequireReceive(t, acquired, 10*time.Second, "blocked lock never acquired"); err != nil {
		t.Fatalf("blocking Lock: %v", err)
	}
}

func TestGuardAccessors(t *testing.T) {
	h, _ := lockPair(t)
	guard, err := h.Lock(7, 13, true, Immediate())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer guard.Unlock()
	if guard.Handle() != h || guard.Offset() != 7 || guard.Length() != 13 || !guard.Exclusive() || !guard.Locked() {
		t.Errorf("guard = handle %p offset %d length %d exclusive %v", guard.Handle(), guard.Offset(), guard.Length(), guard.Exclusive())
	}
}

func TestReleasedGuardKeepsLock(t *testing.T) {
	first, second := lockPair(t)
	guard, err := first.Lock(0, 10, true, Immediate())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	requireOpenFileScope(t, guard)

	guard.Release()
	guard.Unlock()
	if _, err := second.Lock(0, 10, true, Immediate()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("lock after Release: %v, want ErrTimeout", err)
	}
	first.Unlock(0, 10)
}

func TestReservedTopBitIsMasked(t *testing.T) {
	h, _ := lockPair(t)
	logger, records := testutil.NewLogBuffer()
	h.SetLogger(logger)

	guard, err := h.Lock(reservedBit|5, reservedBit|10, true, Immediate())
	if err != nil {
		t.Fatalf("Lock with reserved bit: %v", err)
	}
	if guard.Offset() != 5 || guard.Length() != 10 {
		t.Errorf("guard extent = %d+%d, want 5+10", guard.Offset(), guard.Length())
	}
	guard.Unlock()
	if got := records.Count(t, "masked reserved top bit of lock extent"); got != 1 {
		t.Errorf("mask warning logged %d times, want 1", got)
	}
}

func TestProcessScopeFallback(t *testing.T) {
	forceProcessScope(t)
	first, second := lockPair(t)
	logger, records := testutil.NewLogBuffer()
	first.SetLogger(logger)

	guard, err := first.Lock(0, 10, true, Immediate())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !guard.ProcessScoped() || !first.ByteLockInsanity() {
		t.Fatalf("fallback not reported: guard %v handle %v", guard.ProcessScoped(), first.ByteLockInsanity())
	}
	if second.ByteLockInsanity() {
		t.Error("untouched handle reports byte lock insanity")
	}

	// Process-scoped locks do not exclude other handles in this process.
	other, err := second.Lock(0, 10, true, Immediate())
	if err != nil {
		t.Fatalf("second handle under process scope: %v", err)
	}
	other.Unlock()
	guard.Unlock()

	again, err := first.Lock(20, 10, false, Immediate())
	if err != nil {
		t.Fatalf("second Lock: %v", err)
	}
	again.Unlock()
	if got := records.Count(t, "byte-range locks degraded to process scope; handles in this process no longer exclude each other"); got != 1 {
		t.Errorf("degradation warning logged %d times, want 1", got)
	}
}

func TestUnlockFailureAborts(t *testing.T) {
	messages := captureAbort(t)
	h, _ := lockPair(t)
	guard, err := h.Lock(0, 10, true, Immediate())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	guard.Unlock()
	if len(*messages) != 1 {
		t.Fatalf("abort called %d times, want 1", len(*messages))
	}
}

func TestLockOnEmptyHandle(t *testing.T) {
	h, _ := lockPair(t)
	h.Close()
	if _, err := h.Lock(0, WholeFile, true, Immediate()); !errors.Is(err, ErrClosed) {
		t.Errorf("Lock on closed handle: %v, want ErrClosed", err)
	}
}

func TestWholeFileLockUsesPlatformPrimitive(t *testing.T) {
	first, second := lockPair(t)
	guard, err := first.Lock(0, WholeFile, true, Immediate())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer guard.Unlock()
	if !sysio.HasOpenFileLocks && guard.ProcessScoped() {
		t.Error("whole-file flock reported process scope")
	}
	requireOpenFileScope(t, guard)
	if _, err := second.Lock(0, WholeFile, true, Immediate()); !errors.Is(err, ErrTimeout) {
		t.Errorf("second whole-file lock: %v, want ErrTimeout", err)
	}
}
