package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/league-live/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}

	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[item.ID]; ok {
		return fmt.Errorf("%w: team=%s", ErrDuplicateKey, item.ID)
	}
	r.teams[item.ID] = item
	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) ListByIDs(_ context.Context, teamIDs []string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(teamIDs))
	for _, id := range teamIDs {
		if item, ok := r.teams[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}
