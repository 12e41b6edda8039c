package keylock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	t.Parallel()

	l := New()
	var inside atomic.Int32
	var maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("match-1")
			defer unlock()

			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	if got := maxInside.Load(); got != 1 {
		t.Fatalf("unexpected concurrent holders: got=%d want=1", got)
	}
	if got := l.size(); got != 0 {
		t.Fatalf("expected lock table to drain, got=%d entries", got)
	}
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	l := New()
	unlockA := l.Lock("match-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("match-b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("lock on a different key blocked")
	}
}

func TestLocker_LockContextCancelled(t *testing.T) {
	t.Parallel()

	l := New()
	unlock := l.Lock("match-1")
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := l.LockContext(ctx, "match-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLocker_TryLock(t *testing.T) {
	t.Parallel()

	l := New()
	unlock, ok := l.TryLock("k")
	if !ok {
		t.Fatalf("expected first TryLock to succeed")
	}
	if _, ok := l.TryLock("k"); ok {
		t.Fatalf("expected second TryLock to fail")
	}
	unlock()
	unlock()
	if _, ok := l.TryLock("k"); !ok {
		t.Fatalf("expected TryLock after release to succeed")
	}
}
