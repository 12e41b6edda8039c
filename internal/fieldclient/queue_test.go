package fieldclient

import (
	"context"
	"sync"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	mu        sync.Mutex
	state     map[string]string
	accepted  []string
	seen      map[string]int
	deliverFn func(ctx context.Context, e QueuedEvent) error
	pingErr   error
}

func newFakeDeliverer() *fakeDeliverer {
	return &fakeDeliverer{state: make(map[string]string), seen: make(map[string]int)}
}

func (f *fakeDeliverer) Deliver(ctx context.Context, e QueuedEvent) error {
	f.mu.Lock()
	fn := f.deliverFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, e); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[e.ID]++
	if f.seen[e.ID] == 1 {
		f.accepted = append(f.accepted, e.ID)
	}
	return nil
}

func (f *fakeDeliverer) MatchState(_ context.Context, matchID string) (ServerMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.state[matchID]
	if state == "" {
		state = "LIVE"
	}
	return ServerMatch{ID: matchID, State: state}, nil
}

func (f *fakeDeliverer) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeDeliverer) setDeliver(fn func(ctx context.Context, e QueuedEvent) error) {
	f.mu.Lock()
	f.deliverFn = fn
	f.mu.Unlock()
}

func (f *fakeDeliverer) setState(matchID, state string) {
	f.mu.Lock()
	f.state[matchID] = state
	f.mu.Unlock()
}

func (f *fakeDeliverer) acceptedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.accepted...)
}

func newTestQueue(t *testing.T, store Store, d Deliverer, clock clockwork.Clock) *Queue {
	t.Helper()

	if store == nil {
		store = NewMemoryStore()
	}
	q, err := Open(context.Background(), store, d, Options{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		AttemptTimeout: time.Second,
		Clock:          clock,
		IDs:            idgen.NewSequenceGenerator("qe"),
		Logger:         logging.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(q.Close)
	return q
}

func goal(minute int) matchevent.Draft {
	return matchevent.Draft{Type: matchevent.TypeGoal, Minute: minute, TeamID: "team-home", PlayerID: "p-9"}
}

func enqueue(t *testing.T, q *Queue, matchID string, drafts ...matchevent.Draft) []string {
	t.Helper()

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		id, err := q.Enqueue(context.Background(), matchID, d)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func eventByID(t *testing.T, q *Queue, id string) QueuedEvent {
	t.Helper()

	events, err := q.Events(context.Background(), "")
	require.NoError(t, err)
	for _, e := range events {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("event %s not queued", id)
	return QueuedEvent{}
}

func TestQueue_EnqueueRequiresMatch(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t, nil, newFakeDeliverer(), clockwork.NewFakeClock())
	_, err := q.Enqueue(context.Background(), "  ", goal(1))
	require.Error(t, err)
}

func TestQueue_ReplaysInEnqueueOrderAfterReconnect(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	q.SetOnline(false)

	ids := enqueue(t, q, "m-1", goal(3), goal(17), goal(44))

	_, err := q.Flush(context.Background(), "m-1")
	require.ErrorIs(t, err, ErrOffline)
	require.Empty(t, d.acceptedIDs())

	require.True(t, q.SetOnline(true))
	res, err := q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	require.Equal(t, 3, res.Delivered)
	require.Equal(t, 0, res.Remaining)
	require.Equal(t, ids, d.acceptedIDs())

	status, err := q.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusReport{Online: true, Conflicted: []string{}}, status)
}

func TestQueue_FinishedMatchIsConflicted(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	d.setState("m-1", "FINISHED")
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	enqueue(t, q, "m-1", goal(88), goal(90))

	_, err := q.Flush(context.Background(), "m-1")
	require.ErrorIs(t, err, ErrConflict)
	require.Empty(t, d.acceptedIDs())

	status, err := q.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, status.Pending)
	require.Equal(t, []string{"m-1"}, status.Conflicted)

	// Flagged matches stay untouched until someone resolves them.
	d.setState("m-1", "LIVE")
	_, err = q.Flush(context.Background(), "m-1")
	require.ErrorIs(t, err, ErrConflict)

	_, err = q.ResolveConflict(context.Background(), "m-1", ResolutionDiscard)
	require.NoError(t, err)
	status, err = q.Status(context.Background())
	require.NoError(t, err)
	require.Zero(t, status.Pending)
	require.Empty(t, status.Conflicted)
}

func TestQueue_ReapplyConflictsAgainWhileFinished(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	d.setState("m-1", "FINISHED")
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	ids := enqueue(t, q, "m-1", goal(88))

	_, err := q.Flush(context.Background(), "m-1")
	require.ErrorIs(t, err, ErrConflict)

	_, err = q.ResolveConflict(context.Background(), "m-1", ResolutionReapply)
	require.ErrorIs(t, err, ErrConflict)

	d.setState("m-1", "LIVE")
	res, err := q.ResolveConflict(context.Background(), "m-1", ResolutionReapply)
	require.NoError(t, err)
	require.Equal(t, 1, res.Delivered)
	require.Equal(t, ids, d.acceptedIDs())

	_, err = q.ResolveConflict(context.Background(), "m-1", Resolution("merge"))
	require.ErrorIs(t, err, ErrUnknownResolution)
}

func TestQueue_DeliveryConflictStopsReplay(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	d.setDeliver(func(context.Context, QueuedEvent) error {
		return crerr.Mark(crerr.New("finished"), ErrConflict)
	})
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	ids := enqueue(t, q, "m-1", goal(1), goal(2))

	_, err := q.Flush(context.Background(), "m-1")
	require.ErrorIs(t, err, ErrConflict)

	e := eventByID(t, q, ids[0])
	require.Equal(t, StatusPending, e.Status)
	require.Zero(t, e.RetryCount)

	status, err := q.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"m-1"}, status.Conflicted)
}

func TestQueue_RejectedHeadBlocksMatchUntilRetried(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	ids := enqueue(t, q, "m-1", goal(5), goal(6))

	d.setDeliver(func(_ context.Context, e QueuedEvent) error {
		if e.ID == ids[0] {
			return crerr.Mark(crerr.New("status=400"), ErrRejected)
		}
		return nil
	})

	res, err := q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	require.True(t, res.Blocked)
	require.Equal(t, 2, res.Remaining)

	head := eventByID(t, q, ids[0])
	require.Equal(t, StatusFailed, head.Status)
	require.Contains(t, head.LastError, "status=400")
	require.Equal(t, StatusPending, eventByID(t, q, ids[1]).Status)

	res, err = q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	require.True(t, res.Blocked)
	require.Empty(t, d.acceptedIDs())

	d.setDeliver(nil)
	res, err = q.RetryFailed(context.Background(), "m-1")
	require.NoError(t, err)
	require.Equal(t, 2, res.Delivered)
	require.Equal(t, ids, d.acceptedIDs())
}

func TestQueue_TransientFailureRetriesAfterBackoff(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := newFakeDeliverer()
	q := newTestQueue(t, nil, d, clock)
	ids := enqueue(t, q, "m-1", goal(10))

	calls := 0
	d.setDeliver(func(context.Context, QueuedEvent) error {
		calls++
		if calls == 1 {
			return crerr.Mark(crerr.New("status=503"), ErrDeliveryFailed)
		}
		return nil
	})

	res, err := q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	require.True(t, res.Blocked)

	e := eventByID(t, q, ids[0])
	require.Equal(t, StatusPending, e.Status)
	require.Equal(t, 1, e.RetryCount)
	require.NotNil(t, e.NextAttemptAt)
	require.Equal(t, clock.Now().Add(time.Second), *e.NextAttemptAt)

	// Not due yet.
	res, err = q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	require.True(t, res.Blocked)
	require.Empty(t, d.acceptedIDs())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return len(d.acceptedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueue_MaxRetriesMarksFailed(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := newFakeDeliverer()
	d.setDeliver(func(context.Context, QueuedEvent) error {
		return crerr.Mark(crerr.New("status=500"), ErrDeliveryFailed)
	})
	q := newTestQueue(t, nil, d, clock)
	ids := enqueue(t, q, "m-1", goal(10))

	_, err := q.Flush(context.Background(), "m-1")
	require.NoError(t, err)

	for retry, delay := range []time.Duration{time.Second, 2 * time.Second} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		cancel()

		clock.Advance(delay)
		want := retry + 2
		require.Eventually(t, func() bool {
			return eventByID(t, q, ids[0]).RetryCount == want
		}, 2*time.Second, 10*time.Millisecond)
	}

	e := eventByID(t, q, ids[0])
	require.Equal(t, StatusFailed, e.Status)
	require.Nil(t, e.NextAttemptAt)
}

func TestQueue_AttemptTimeoutCountsAsFailure(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	d.setDeliver(func(ctx context.Context, _ QueuedEvent) error {
		<-ctx.Done()
		return ctx.Err()
	})
	q, err := Open(context.Background(), NewMemoryStore(), d, Options{
		AttemptTimeout: 20 * time.Millisecond,
		Clock:          clockwork.NewFakeClock(),
		Logger:         logging.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(q.Close)
	ids := enqueue(t, q, "m-1", goal(10))

	_, err = q.Flush(context.Background(), "m-1")
	require.NoError(t, err)

	e := eventByID(t, q, ids[0])
	require.Equal(t, StatusPending, e.Status)
	require.Equal(t, 1, e.RetryCount)
}

func TestQueue_GoingOfflineCancelsInflightWithoutPenalty(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	d := newFakeDeliverer()
	d.setDeliver(func(ctx context.Context, _ QueuedEvent) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	ids := enqueue(t, q, "m-1", goal(10))

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Flush(context.Background(), "m-1")
		errCh <- err
	}()

	<-started
	require.True(t, q.SetOnline(false))
	require.ErrorIs(t, <-errCh, ErrOffline)

	e := eventByID(t, q, ids[0])
	require.Equal(t, StatusPending, e.Status)
	require.Zero(t, e.RetryCount)
}

func TestQueue_CancelledFlushRevertsToPending(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	d := newFakeDeliverer()
	d.setDeliver(func(attemptCtx context.Context, _ QueuedEvent) error {
		cancel()
		<-attemptCtx.Done()
		return attemptCtx.Err()
	})
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	ids := enqueue(t, q, "m-1", goal(10), goal(11))

	_, err := q.Flush(ctx, "m-1")
	require.ErrorIs(t, err, context.Canceled)

	for _, id := range ids {
		e := eventByID(t, q, id)
		require.Equal(t, StatusPending, e.Status)
		require.Zero(t, e.RetryCount)
	}
}

func TestQueue_RedeliveryIsIdempotentServerSide(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	d := newFakeDeliverer()
	q := newTestQueue(t, nil, d, clock)
	ids := enqueue(t, q, "m-1", goal(30))

	// The server stores the event but the response is lost.
	lost := true
	d.setDeliver(func(_ context.Context, e QueuedEvent) error {
		if lost {
			lost = false
			d.mu.Lock()
			d.seen[e.ID]++
			d.accepted = append(d.accepted, e.ID)
			d.mu.Unlock()
			return crerr.Mark(crerr.New("connection reset"), ErrDeliveryFailed)
		}
		return nil
	})

	_, err := q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	clock.Advance(time.Second)

	require.Eventually(t, func() bool {
		events, err := q.Events(context.Background(), "m-1")
		return err == nil && len(events) == 0
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, ids, d.acceptedIDs())
}

func TestQueue_FlushAllKeepsMatchesIndependent(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	d.setState("m-2", "FINISHED")
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	enqueue(t, q, "m-1", goal(1), goal(2))
	enqueue(t, q, "m-2", goal(3))
	enqueue(t, q, "m-3", goal(4))

	results, err := q.FlushAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byMatch := make(map[string]FlushResult, len(results))
	for _, res := range results {
		byMatch[res.MatchID] = res
	}
	require.Equal(t, 2, byMatch["m-1"].Delivered)
	require.ErrorIs(t, byMatch["m-2"].Err, ErrConflict)
	require.Equal(t, 1, byMatch["m-3"].Delivered)
	require.Len(t, d.acceptedIDs(), 3)
}

func TestOpen_RecoversInterruptedDeliveries(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), QueuedEvent{
		ID: "qe-crashed", Seq: 7, MatchID: "m-1", Payload: goal(12), Status: StatusSyncing,
	}))

	d := newFakeDeliverer()
	q := newTestQueue(t, store, d, clockwork.NewFakeClock())
	require.Equal(t, StatusPending, eventByID(t, q, "qe-crashed").Status)

	ids := enqueue(t, q, "m-1", goal(13))
	require.Equal(t, uint64(8), eventByID(t, q, ids[0]).Seq)

	res, err := q.Flush(context.Background(), "m-1")
	require.NoError(t, err)
	require.Equal(t, 2, res.Delivered)
	require.Equal(t, []string{"qe-crashed", ids[0]}, d.acceptedIDs())
}

func TestQueue_MarkConflictedNeedsQueuedEvents(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t, nil, newFakeDeliverer(), clockwork.NewFakeClock())
	require.NoError(t, q.MarkConflicted(context.Background(), "m-1"))

	status, err := q.Status(context.Background())
	require.NoError(t, err)
	require.Empty(t, status.Conflicted)

	enqueue(t, q, "m-1", goal(1))
	require.NoError(t, q.MarkConflicted(context.Background(), "m-1"))
	status, err = q.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"m-1"}, status.Conflicted)

	require.NoError(t, q.Clear(context.Background()))
	status, err = q.Status(context.Background())
	require.NoError(t, err)
	require.Zero(t, status.Pending)
	require.Empty(t, status.Conflicted)
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		retries int
		want    time.Duration
	}{
		{retries: 1, want: time.Second},
		{retries: 2, want: 2 * time.Second},
		{retries: 3, want: 4 * time.Second},
	}
	for _, tt := range tests {
		if got := retryDelay(time.Second, tt.retries); got != tt.want {
			t.Fatalf("retryDelay(%d): got=%v want=%v", tt.retries, got, tt.want)
		}
	}
}

func TestQueue_OfflineDeliveryGoesOfflineWithoutPenalty(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer()
	d.setDeliver(func(context.Context, QueuedEvent) error {
		return crerr.Mark(crerr.New("dial tcp: connection refused"), ErrOffline)
	})
	q := newTestQueue(t, nil, d, clockwork.NewFakeClock())
	ids := enqueue(t, q, "m-4", goal(30))

	_, err := q.Flush(context.Background(), "m-4")
	require.ErrorIs(t, err, ErrOffline)
	require.False(t, q.Online())

	e := eventByID(t, q, ids[0])
	require.Equal(t, StatusPending, e.Status)
	require.Zero(t, e.RetryCount)
}
