package standing

import "context"

// Repository keeps one entry per (tournament, team).
type Repository interface {
	Upsert(ctx context.Context, entries ...Entry) error
	Get(ctx context.Context, tournamentID, teamID string) (Entry, bool, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Entry, error)
}
