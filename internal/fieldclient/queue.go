package fieldclient

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/keylock"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = time.Second
	DefaultAttemptTimeout = 10 * time.Second
	defaultConcurrency    = 4
)

type Options struct {
	MaxRetries     int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	// Concurrency bounds how many matches FlushAll works on at once.
	Concurrency int
	Clock       clockwork.Clock
	IDs         idgen.Generator
	Logger      *logging.Logger
}

func (o Options) normalize() Options {
	if o.MaxRetries < 1 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.Concurrency < 1 {
		o.Concurrency = defaultConcurrency
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.IDs == nil {
		o.IDs = idgen.NewUUIDGenerator()
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	return o
}

// Queue buffers field events and replays them to the server in enqueue
// order per match. Matches flush independently; one match never has two
// deliveries in flight.
type Queue struct {
	store     Store
	deliverer Deliverer
	opts      Options
	clock     clockwork.Clock
	logger    *logging.Logger
	locks     *keylock.Locker

	online atomic.Bool
	seq    atomic.Uint64

	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu       sync.Mutex
	inflight map[string]context.CancelCauseFunc
	timers   map[string]clockwork.Timer
	closed   bool
}

// Open loads store and puts back to pending anything a previous process
// left in syncing. The queue starts online.
func Open(ctx context.Context, store Store, deliverer Deliverer, opts Options) (*Queue, error) {
	if store == nil {
		return nil, crerr.New("queue store is required")
	}
	if deliverer == nil {
		return nil, crerr.New("queue deliverer is required")
	}
	opts = opts.normalize()

	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := &Queue{
		store:      store,
		deliverer:  deliverer,
		opts:       opts,
		clock:      opts.Clock,
		logger:     opts.Logger.Named("fieldclient.queue"),
		locks:      keylock.New(),
		baseCtx:    baseCtx,
		cancelBase: cancel,
		inflight:   make(map[string]context.CancelCauseFunc),
		timers:     make(map[string]clockwork.Timer),
	}
	q.online.Store(true)

	events, err := store.List(ctx)
	if err != nil {
		cancel()
		return nil, crerr.Wrap(err, "load queued events")
	}

	recovered := 0
	for _, e := range events {
		if e.Seq > q.seq.Load() {
			q.seq.Store(e.Seq)
		}
		if e.Status != StatusSyncing {
			continue
		}
		e.Status = StatusPending
		if err := store.Put(ctx, e); err != nil {
			cancel()
			return nil, crerr.Wrapf(err, "recover event %s", e.ID)
		}
		recovered++
	}
	if recovered > 0 {
		q.logger.WarnContext(ctx, "recovered interrupted deliveries", "count", recovered)
	}

	return q, nil
}

// Enqueue stores draft for matchID and returns the event id. Only the
// local store can make it fail.
func (q *Queue) Enqueue(ctx context.Context, matchID string, draft matchevent.Draft) (string, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return "", crerr.New("match id is required")
	}

	eventID, err := q.opts.IDs.NewID()
	if err != nil {
		return "", crerr.Wrap(err, "generate queued event id")
	}

	e := QueuedEvent{
		ID:         eventID,
		Seq:        q.seq.Add(1),
		MatchID:    matchID,
		Payload:    draft,
		EnqueuedAt: q.clock.Now().UTC(),
		Status:     StatusPending,
	}
	if err := q.store.Put(ctx, e); err != nil {
		return "", crerr.Wrapf(err, "store queued event for match %s", matchID)
	}

	q.logger.DebugContext(ctx, "event queued", "event_id", eventID, "match_id", matchID, "type", draft.Type)
	return eventID, nil
}

// SetOnline records connectivity and reports whether it changed. Going
// offline aborts in-flight deliveries; they return to pending unpenalized.
func (q *Queue) SetOnline(online bool) bool {
	prev := q.online.Swap(online)
	if prev && !online {
		q.mu.Lock()
		for _, cancel := range q.inflight {
			cancel(ErrOffline)
		}
		q.mu.Unlock()
	}
	return prev != online
}

func (q *Queue) Online() bool {
	return q.online.Load()
}

func (q *Queue) Flush(ctx context.Context, matchID string) (FlushResult, error) {
	unlock, err := q.locks.LockContext(ctx, matchID)
	if err != nil {
		return FlushResult{MatchID: matchID}, err
	}
	defer unlock()

	return q.flushLocked(ctx, matchID)
}

// FlushAll flushes every match with queued events. Per-match outcomes,
// including errors, are reported in the results.
func (q *Queue) FlushAll(ctx context.Context) ([]FlushResult, error) {
	events, err := q.store.List(ctx)
	if err != nil {
		return nil, crerr.Wrap(err, "list queued events")
	}

	matchIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, e := range events {
		if _, ok := seen[e.MatchID]; ok {
			continue
		}
		seen[e.MatchID] = struct{}{}
		matchIDs = append(matchIDs, e.MatchID)
	}

	results := make([]FlushResult, len(matchIDs))
	p := pool.New().WithMaxGoroutines(q.opts.Concurrency)
	for i, matchID := range matchIDs {
		p.Go(func() {
			res, err := q.Flush(ctx, matchID)
			res.MatchID = matchID
			res.Err = err
			results[i] = res
		})
	}
	p.Wait()

	return results, nil
}

func (q *Queue) flushLocked(ctx context.Context, matchID string) (FlushResult, error) {
	res := FlushResult{MatchID: matchID}
	if !q.online.Load() {
		return res, ErrOffline
	}

	conflicted, err := q.isConflicted(ctx, matchID)
	if err != nil {
		return res, err
	}
	events, err := q.matchEvents(ctx, matchID)
	if err != nil {
		return res, err
	}
	res.Remaining = len(events)
	if conflicted {
		return res, crerr.Wrapf(ErrConflict, "match %s", matchID)
	}
	if len(events) == 0 {
		return res, nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, q.opts.AttemptTimeout)
	server, err := q.deliverer.MatchState(checkCtx, matchID)
	cancel()
	if err != nil {
		return res, crerr.Wrapf(err, "check match %s", matchID)
	}
	if server.State == serverStateFinished {
		if err := q.store.SetConflicted(ctx, matchID, true); err != nil {
			return res, crerr.Wrapf(err, "mark match %s conflicted", matchID)
		}
		q.logger.WarnContext(ctx, "match finished server-side with queued events", "match_id", matchID, "queued", len(events))
		return res, crerr.Wrapf(ErrConflict, "match %s is finished", matchID)
	}

	for i, e := range events {
		now := q.clock.Now()
		if e.Status == StatusFailed {
			res.Blocked = true
			return res, nil
		}
		if e.NextAttemptAt != nil && e.NextAttemptAt.After(now) {
			q.scheduleRetry(matchID, e.NextAttemptAt.Sub(now))
			res.Blocked = true
			return res, nil
		}

		done, err := q.attempt(ctx, e)
		if done {
			res.Delivered++
			res.Remaining = len(events) - i - 1
			continue
		}
		res.Blocked = err == nil
		return res, err
	}

	return res, nil
}

// attempt delivers e once and settles its stored state. done reports a
// delivered event; err is set only when the whole flush must stop with an
// error (offline, cancelled, conflict).
func (q *Queue) attempt(ctx context.Context, e QueuedEvent) (done bool, err error) {
	e.Status = StatusSyncing
	if err := q.store.Put(ctx, e); err != nil {
		return false, crerr.Wrapf(err, "mark event %s syncing", e.ID)
	}

	attemptCtx, cancel := context.WithCancelCause(ctx)
	q.track(e.ID, cancel)
	timeoutCtx, cancelTimeout := context.WithTimeout(attemptCtx, q.opts.AttemptTimeout)

	deliverErr := q.deliverer.Deliver(timeoutCtx, e)
	cause := context.Cause(attemptCtx)

	cancelTimeout()
	q.untrack(e.ID)
	cancel(nil)

	settleCtx := context.WithoutCancel(ctx)
	if deliverErr == nil {
		if err := q.store.Delete(settleCtx, e.ID); err != nil {
			return false, crerr.Wrapf(err, "remove delivered event %s", e.ID)
		}
		return true, nil
	}

	switch {
	case ctx.Err() != nil:
		return false, q.revert(settleCtx, e, ctx.Err())
	case crerr.Is(cause, ErrOffline):
		return false, q.revert(settleCtx, e, ErrOffline)
	case isOffline(deliverErr):
		// The monitor's next good ping is the online edge that flushes again.
		q.SetOnline(false)
		return false, q.revert(settleCtx, e, ErrOffline)
	case isConflict(deliverErr):
		if err := q.revert(settleCtx, e, nil); err != nil {
			return false, err
		}
		if err := q.store.SetConflicted(settleCtx, e.MatchID, true); err != nil {
			return false, crerr.Wrapf(err, "mark match %s conflicted", e.MatchID)
		}
		q.logger.WarnContext(ctx, "server reported conflict", "match_id", e.MatchID, "event_id", e.ID, "error", deliverErr)
		return false, crerr.Wrapf(ErrConflict, "match %s", e.MatchID)
	case isRejected(deliverErr):
		e.Status = StatusFailed
		e.NextAttemptAt = nil
		e.LastError = deliverErr.Error()
		q.logger.WarnContext(ctx, "event rejected", "match_id", e.MatchID, "event_id", e.ID, "error", deliverErr)
		return false, q.save(settleCtx, e)
	default:
		return false, q.penalize(settleCtx, e, deliverErr)
	}
}

// penalize counts a transient failure. Below the ceiling the event waits
// BaseDelay*2^(retries-1) before the match is flushed again.
func (q *Queue) penalize(ctx context.Context, e QueuedEvent, cause error) error {
	e.RetryCount++
	e.LastError = cause.Error()

	if e.RetryCount >= q.opts.MaxRetries {
		e.Status = StatusFailed
		e.NextAttemptAt = nil
		q.logger.WarnContext(ctx, "event delivery failed permanently",
			"match_id", e.MatchID, "event_id", e.ID, "retries", e.RetryCount, "error", cause)
		return q.save(ctx, e)
	}

	delay := retryDelay(q.opts.BaseDelay, e.RetryCount)
	next := q.clock.Now().Add(delay)
	e.Status = StatusPending
	e.NextAttemptAt = &next
	if err := q.save(ctx, e); err != nil {
		return err
	}

	q.logger.InfoContext(ctx, "event delivery will be retried",
		"match_id", e.MatchID, "event_id", e.ID, "retries", e.RetryCount, "delay", delay, "error", cause)
	q.scheduleRetry(e.MatchID, delay)
	return nil
}

func (q *Queue) revert(ctx context.Context, e QueuedEvent, reason error) error {
	e.Status = StatusPending
	if err := q.save(ctx, e); err != nil {
		return err
	}
	return reason
}

func (q *Queue) save(ctx context.Context, e QueuedEvent) error {
	if err := q.store.Put(ctx, e); err != nil {
		return crerr.Wrapf(err, "store event %s", e.ID)
	}
	return nil
}

// retryDelay is base doubled per retry already spent.
func retryDelay(base time.Duration, retries int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = base << 16
	b.Reset()

	delay := base
	for range max(retries, 1) {
		delay = b.NextBackOff()
	}
	return delay
}

func (q *Queue) scheduleRetry(matchID string, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	if t, ok := q.timers[matchID]; ok {
		t.Stop()
	}
	q.timers[matchID] = q.clock.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, matchID)
		q.mu.Unlock()

		if !q.online.Load() {
			return
		}
		if _, err := q.Flush(q.baseCtx, matchID); err != nil && !isOffline(err) {
			q.logger.Warn("scheduled retry flush failed", "match_id", matchID, "error", err)
		}
	})
}

func (q *Queue) track(eventID string, cancel context.CancelCauseFunc) {
	q.mu.Lock()
	q.inflight[eventID] = cancel
	q.mu.Unlock()

	// A drop between the online check and registration still aborts.
	if !q.online.Load() {
		cancel(ErrOffline)
	}
}

func (q *Queue) untrack(eventID string) {
	q.mu.Lock()
	delete(q.inflight, eventID)
	q.mu.Unlock()
}

// RetryFailed resets failed events of matchID to a fresh pending state and
// flushes the match.
func (q *Queue) RetryFailed(ctx context.Context, matchID string) (FlushResult, error) {
	unlock, err := q.locks.LockContext(ctx, matchID)
	if err != nil {
		return FlushResult{MatchID: matchID}, err
	}
	defer unlock()

	events, err := q.matchEvents(ctx, matchID)
	if err != nil {
		return FlushResult{MatchID: matchID}, err
	}
	for _, e := range events {
		if e.Status != StatusFailed {
			continue
		}
		e.Status = StatusPending
		e.RetryCount = 0
		e.NextAttemptAt = nil
		e.LastError = ""
		if err := q.save(ctx, e); err != nil {
			return FlushResult{MatchID: matchID}, err
		}
	}

	return q.flushLocked(ctx, matchID)
}

// ResolveConflict settles a conflicted match. Discard drops its queued
// events; Reapply clears the mark and flushes, which conflicts again if
// the server still reports the match finished.
func (q *Queue) ResolveConflict(ctx context.Context, matchID string, resolution Resolution) (FlushResult, error) {
	unlock, err := q.locks.LockContext(ctx, matchID)
	if err != nil {
		return FlushResult{MatchID: matchID}, err
	}
	defer unlock()

	switch resolution {
	case ResolutionDiscard:
		events, err := q.matchEvents(ctx, matchID)
		if err != nil {
			return FlushResult{MatchID: matchID}, err
		}
		ids := make([]string, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		if err := q.store.Delete(ctx, ids...); err != nil {
			return FlushResult{MatchID: matchID}, crerr.Wrapf(err, "discard events of match %s", matchID)
		}
		if err := q.store.SetConflicted(ctx, matchID, false); err != nil {
			return FlushResult{MatchID: matchID}, crerr.Wrapf(err, "clear conflict of match %s", matchID)
		}
		q.stopTimer(matchID)
		q.logger.InfoContext(ctx, "conflict resolved by discarding events", "match_id", matchID, "discarded", len(ids))
		return FlushResult{MatchID: matchID}, nil
	case ResolutionReapply:
		if err := q.store.SetConflicted(ctx, matchID, false); err != nil {
			return FlushResult{MatchID: matchID}, crerr.Wrapf(err, "clear conflict of match %s", matchID)
		}
		return q.flushLocked(ctx, matchID)
	default:
		return FlushResult{MatchID: matchID}, crerr.Wrapf(ErrUnknownResolution, "%q", resolution)
	}
}

// MarkConflicted flags matchID ahead of the next flush, e.g. when a live
// feed reports the match finished.
func (q *Queue) MarkConflicted(ctx context.Context, matchID string) error {
	events, err := q.matchEvents(ctx, matchID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	if err := q.store.SetConflicted(ctx, matchID, true); err != nil {
		return crerr.Wrapf(err, "mark match %s conflicted", matchID)
	}
	q.stopTimer(matchID)
	return nil
}

func (q *Queue) Status(ctx context.Context) (StatusReport, error) {
	events, err := q.store.List(ctx)
	if err != nil {
		return StatusReport{}, crerr.Wrap(err, "list queued events")
	}
	conflicted, err := q.store.Conflicted(ctx)
	if err != nil {
		return StatusReport{}, crerr.Wrap(err, "list conflicted matches")
	}

	report := StatusReport{Online: q.online.Load(), Conflicted: conflicted}
	for _, e := range events {
		switch e.Status {
		case StatusPending:
			report.Pending++
		case StatusSyncing:
			report.Syncing++
		case StatusFailed:
			report.Failed++
		}
	}
	return report, nil
}

// Events returns queued events of matchID in delivery order, or of every
// match when matchID is empty.
func (q *Queue) Events(ctx context.Context, matchID string) ([]QueuedEvent, error) {
	if matchID != "" {
		return q.matchEvents(ctx, matchID)
	}
	events, err := q.store.List(ctx)
	if err != nil {
		return nil, crerr.Wrap(err, "list queued events")
	}
	return events, nil
}

func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	for matchID, t := range q.timers {
		t.Stop()
		delete(q.timers, matchID)
	}
	q.mu.Unlock()

	if err := q.store.Clear(ctx); err != nil {
		return crerr.Wrap(err, "clear queue")
	}
	return nil
}

// Close stops retry timers. Stored events stay for the next Open.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	for matchID, t := range q.timers {
		t.Stop()
		delete(q.timers, matchID)
	}
	q.mu.Unlock()
	q.cancelBase()
}

func (q *Queue) stopTimer(matchID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.timers[matchID]; ok {
		t.Stop()
		delete(q.timers, matchID)
	}
}

func (q *Queue) matchEvents(ctx context.Context, matchID string) ([]QueuedEvent, error) {
	events, err := q.store.List(ctx)
	if err != nil {
		return nil, crerr.Wrap(err, "list queued events")
	}
	out := make([]QueuedEvent, 0, len(events))
	for _, e := range events {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (q *Queue) isConflicted(ctx context.Context, matchID string) (bool, error) {
	matchIDs, err := q.store.Conflicted(ctx)
	if err != nil {
		return false, crerr.Wrap(err, "list conflicted matches")
	}
	for _, id := range matchIDs {
		if id == matchID {
			return true, nil
		}
	}
	return false, nil
}
