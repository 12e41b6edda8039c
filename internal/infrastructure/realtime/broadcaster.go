package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

const (
	defaultPoolSize = 64
	// maxLaneBacklog caps the frames waiting behind one match's publish job.
	maxLaneBacklog = 256
)

// Broadcaster turns match changes into envelopes and publishes them on a
// worker pool. Frames of one match go out in emit order through a lane that
// at most one pool job drains; different matches publish in parallel.
// Submission never blocks: when every worker is busy the message is dropped
// and logged.
type Broadcaster struct {
	hub    *Hub
	pool   *ants.Pool
	logger *logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	lanes map[string]*lane
	seqs  map[string]uint64
}

type lane struct {
	pending []outbound
}

type outbound struct {
	topics []string
	frames [][]byte
}

func NewBroadcaster(hub *Hub, poolSize int, logger *logging.Logger) (*Broadcaster, error) {
	if hub == nil {
		return nil, fmt.Errorf("realtime hub is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	logger = logger.Named("realtime.broadcaster")

	pool, err := ants.NewPool(poolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(rec any) {
			logger.Error("publish job panicked", "panic", rec)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create publish pool: %w", err)
	}

	return &Broadcaster{
		hub:    hub,
		pool:   pool,
		logger: logger,
		now:    time.Now,
		lanes:  make(map[string]*lane),
		seqs:   make(map[string]uint64),
	}, nil
}

func (b *Broadcaster) MatchStarted(ctx context.Context, m match.Match) {
	b.publish(ctx, TypeMatchStarted, m.ID, MatchRef{MatchID: m.ID}, true)
}

func (b *Broadcaster) EventRecorded(ctx context.Context, m match.Match, e matchevent.Event) {
	b.publish(ctx, TypeEventRecorded, m.ID, EventRecordedData{MatchID: m.ID, Event: eventPayload(e)}, true)
}

func (b *Broadcaster) ScoreUpdated(ctx context.Context, m match.Match) {
	home, away := m.Score()
	b.publish(ctx, TypeScoreUpdated, m.ID, ScoreUpdatedData{MatchID: m.ID, GoalsHome: home, GoalsAway: away}, true)
}

// MinuteUpdated only reaches the match topic; the live feed would be
// flooded otherwise.
func (b *Broadcaster) MinuteUpdated(ctx context.Context, m match.Match) {
	b.publish(ctx, TypeMinuteUpdated, m.ID, MinuteUpdatedData{MatchID: m.ID, Minute: m.CurrentMinute}, false)
}

func (b *Broadcaster) MatchFinished(ctx context.Context, m match.Match) {
	b.publish(ctx, TypeMatchFinished, m.ID, MatchRef{MatchID: m.ID}, true)
}

func (b *Broadcaster) publish(ctx context.Context, msgType, matchID string, data any, alsoLive bool) {
	sentAt := b.now().UTC()
	out := outbound{topics: []string{MatchTopic(matchID)}}
	if alsoLive {
		out.topics = append(out.topics, TopicLive)
	}

	b.mu.Lock()
	seq := b.seqs[matchID] + 1
	out.frames = make([][]byte, 0, len(out.topics))
	for _, topic := range out.topics {
		raw, err := encode(Envelope{Type: msgType, Topic: topic, Seq: seq, Data: data, SentAt: sentAt})
		if err != nil {
			b.mu.Unlock()
			b.logger.WarnContext(ctx, "drop realtime message", "type", msgType, "match_id", matchID, "error", err)
			return
		}
		out.frames = append(out.frames, raw)
	}
	if msgType == TypeMatchFinished {
		delete(b.seqs, matchID)
	} else {
		b.seqs[matchID] = seq
	}

	if l, ok := b.lanes[matchID]; ok {
		if len(l.pending) >= maxLaneBacklog {
			b.mu.Unlock()
			b.logger.WarnContext(ctx, "publish backlog full, message dropped", "type", msgType, "match_id", matchID, "seq", seq)
			return
		}
		l.pending = append(l.pending, out)
		b.mu.Unlock()
		return
	}
	l := &lane{pending: []outbound{out}}
	b.lanes[matchID] = l
	b.mu.Unlock()

	err := b.pool.Submit(func() {
		b.drain(matchID, l)
	})
	if err == nil {
		return
	}

	b.mu.Lock()
	dropped := len(l.pending)
	if b.lanes[matchID] == l {
		delete(b.lanes, matchID)
	}
	b.mu.Unlock()

	if errors.Is(err, ants.ErrPoolOverload) {
		b.logger.WarnContext(ctx, "publish pool saturated, message dropped", "type", msgType, "match_id", matchID, "dropped", dropped)
		return
	}
	b.logger.WarnContext(ctx, "submit publish job failed", "type", msgType, "match_id", matchID, "dropped", dropped, "error", err)
}

// drain publishes the lane's frames in order until it is empty, then
// retires the lane so the next message starts a fresh job.
func (b *Broadcaster) drain(matchID string, l *lane) {
	for {
		b.mu.Lock()
		if len(l.pending) == 0 {
			if b.lanes[matchID] == l {
				delete(b.lanes, matchID)
			}
			b.mu.Unlock()
			return
		}
		next := l.pending[0]
		l.pending[0] = outbound{}
		l.pending = l.pending[1:]
		b.mu.Unlock()

		for i, topic := range next.topics {
			b.hub.Publish(topic, next.frames[i])
		}
	}
}

// Close waits up to timeout for queued publishes, then stops the pool.
func (b *Broadcaster) Close(timeout time.Duration) error {
	if err := b.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release publish pool: %w", err)
	}
	return nil
}
