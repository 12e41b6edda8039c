package fieldclient

import (
	"time"

	"github.com/riskibarqy/league-live/internal/domain/matchevent"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSyncing Status = "syncing"
	StatusFailed  Status = "failed"
)

// QueuedEvent is an event recorded in the field and not yet accepted by the
// server. Its ID doubles as the server-side event id, which makes
// redelivery idempotent.
type QueuedEvent struct {
	ID            string           `json:"id"`
	Seq           uint64           `json:"seq"`
	MatchID       string           `json:"matchId"`
	Payload       matchevent.Draft `json:"payload"`
	EnqueuedAt    time.Time        `json:"enqueuedAt"`
	RetryCount    int              `json:"retryCount"`
	Status        Status           `json:"status"`
	NextAttemptAt *time.Time       `json:"nextAttemptAt,omitempty"`
	LastError     string           `json:"lastError,omitempty"`
}

func (e QueuedEvent) Clone() QueuedEvent {
	out := e
	if e.NextAttemptAt != nil {
		v := *e.NextAttemptAt
		out.NextAttemptAt = &v
	}
	return out
}

type Resolution string

const (
	// ResolutionDiscard drops every queued event of the match.
	ResolutionDiscard Resolution = "discard"
	// ResolutionReapply clears the conflict mark and flushes again.
	ResolutionReapply Resolution = "reapply"
)

// FlushResult summarizes one match flush.
type FlushResult struct {
	MatchID   string
	Delivered int
	Remaining int
	// Blocked is set when a failed or backing-off event stopped the flush.
	Blocked bool
	// Err is only filled by FlushAll.
	Err error
}

type StatusReport struct {
	Online     bool
	Pending    int
	Syncing    int
	Failed     int
	Conflicted []string
}

// ServerMatch is the part of the server's match view the queue needs.
type ServerMatch struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	CurrentMinute int    `json:"current_minute"`
}

const serverStateFinished = "FINISHED"
