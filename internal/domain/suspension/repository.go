package suspension

import "context"

type Repository interface {
	// CreateIfNoneActive stores s unless the player already has an active
	// suspension; created reports which happened. The check and insert are
	// atomic.
	CreateIfNoneActive(ctx context.Context, s Suspension) (created bool, err error)
	Update(ctx context.Context, s Suspension) error
	ListActiveByPlayer(ctx context.Context, playerID string) ([]Suspension, error)
	ListActiveByTeams(ctx context.Context, teamIDs []string) ([]Suspension, error)
}
