package matchevent

import "context"

// Repository is append-only from the engine's point of view; Delete exists
// only to undo an append whose follow-up write failed.
type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
	Delete(ctx context.Context, eventID string) error
	ListByMatch(ctx context.Context, matchID string) ([]Event, error)
	CountByMatch(ctx context.Context, matchID string) (int, error)
	ListByMatches(ctx context.Context, matchIDs []string, types ...Type) ([]Event, error)
}
