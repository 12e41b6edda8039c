package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1})

	now := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	var changes []CircuitState
	b.OnStateChange(func(_, to CircuitState) { changes = append(changes, to) })

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second half-open probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}

	want := []CircuitState{CircuitStateOpen, CircuitStateHalfOpen, CircuitStateClosed}
	if len(changes) != len(want) {
		t.Fatalf("unexpected state changes: got=%v want=%v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("unexpected state change %d: got=%s want=%s", i, changes[i], want[i])
		}
	}
}

func TestCircuitBreaker_ExecuteIgnoresNonFailures(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
	rejected := errors.New("rejected by server")

	err := b.Execute(func() error { return rejected }, func(err error) bool { return !errors.Is(err, rejected) })
	if !errors.Is(err, rejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected breaker to stay closed, got %s", state)
	}

	_ = b.Execute(func() error { return errors.New("connection refused") }, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected breaker to open, got %s", state)
	}
}

func TestNilCircuitBreakerAllowsEverything(t *testing.T) {
	t.Parallel()

	b := NewOptionalCircuitBreaker(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	for i := 0; i < 10; i++ {
		b.RecordFailure()
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected nil breaker to allow, got %v", err)
	}
}
