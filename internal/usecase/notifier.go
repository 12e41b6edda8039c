package usecase

import (
	"context"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
)

// Notifier relays match changes to live subscribers. Implementations must
// return without waiting on subscribers; a lost notification never affects
// the transition that produced it.
type Notifier interface {
	MatchStarted(ctx context.Context, m match.Match)
	EventRecorded(ctx context.Context, m match.Match, e matchevent.Event)
	ScoreUpdated(ctx context.Context, m match.Match)
	MinuteUpdated(ctx context.Context, m match.Match)
	MatchFinished(ctx context.Context, m match.Match)
}

type NopNotifier struct{}

func (NopNotifier) MatchStarted(context.Context, match.Match)                    {}
func (NopNotifier) EventRecorded(context.Context, match.Match, matchevent.Event) {}
func (NopNotifier) ScoreUpdated(context.Context, match.Match)                    {}
func (NopNotifier) MinuteUpdated(context.Context, match.Match)                   {}
func (NopNotifier) MatchFinished(context.Context, match.Match)                   {}
