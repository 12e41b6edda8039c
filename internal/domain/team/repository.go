package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, t Team) error
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListByIDs(ctx context.Context, teamIDs []string) ([]Team, error)
}
