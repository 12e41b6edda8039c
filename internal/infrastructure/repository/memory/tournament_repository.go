package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/league-live/internal/domain/tournament"
)

type TournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[string]tournament.Tournament
}

func NewTournamentRepository(items []tournament.Tournament) *TournamentRepository {
	byID := make(map[string]tournament.Tournament, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	return &TournamentRepository{tournaments: byID}
}

func (r *TournamentRepository) Create(_ context.Context, item tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[item.ID]; ok {
		return fmt.Errorf("%w: tournament=%s", ErrDuplicateKey, item.ID)
	}
	r.tournaments[item.ID] = item
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.tournaments[tournamentID]
	return item, ok, nil
}

func (r *TournamentRepository) Update(_ context.Context, item tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[item.ID]; !ok {
		return fmt.Errorf("%w: tournament=%s", ErrRowNotFound, item.ID)
	}
	r.tournaments[item.ID] = item
	return nil
}
