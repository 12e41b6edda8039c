package tournament

import "context"

type Repository interface {
	Create(ctx context.Context, t Tournament) error
	GetByID(ctx context.Context, tournamentID string) (Tournament, bool, error)
	Update(ctx context.Context, t Tournament) error
}
