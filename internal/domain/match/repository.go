package match

import (
	"context"
	"time"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, m Match) error
	// CreateBatch stores every match or none.
	CreateBatch(ctx context.Context, matches []Match) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Update(ctx context.Context, m Match) error
	Delete(ctx context.Context, matchID string) error
	ListByTournament(ctx context.Context, tournamentID string) ([]Match, error)
	CountByTournament(ctx context.Context, tournamentID string) (int, error)
	// ListByTeamBetween returns matches of teamID with from <= scheduledAt < to.
	ListByTeamBetween(ctx context.Context, teamID string, from, to time.Time) ([]Match, error)
	ListByStates(ctx context.Context, states ...State) ([]Match, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]Match, error)
}
