package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/league-live/internal/domain/suspension"
)

type SuspensionRepository struct {
	mu   sync.RWMutex
	rows map[string]suspension.Suspension
}

func NewSuspensionRepository() *SuspensionRepository {
	return &SuspensionRepository{rows: make(map[string]suspension.Suspension)}
}

func (r *SuspensionRepository) CreateIfNoneActive(_ context.Context, item suspension.Suspension) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[item.ID]; ok {
		return false, fmt.Errorf("%w: suspension=%s", ErrDuplicateKey, item.ID)
	}
	for _, existing := range r.rows {
		if existing.Active && existing.PlayerID == item.PlayerID {
			return false, nil
		}
	}
	r.rows[item.ID] = item.Clone()
	return true, nil
}

func (r *SuspensionRepository) Update(_ context.Context, item suspension.Suspension) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[item.ID]; !ok {
		return fmt.Errorf("%w: suspension=%s", ErrRowNotFound, item.ID)
	}
	r.rows[item.ID] = item.Clone()
	return nil
}

func (r *SuspensionRepository) ListActiveByPlayer(_ context.Context, playerID string) ([]suspension.Suspension, error) {
	return r.active(func(s suspension.Suspension) bool { return s.PlayerID == playerID }), nil
}

func (r *SuspensionRepository) ListActiveByTeams(_ context.Context, teamIDs []string) ([]suspension.Suspension, error) {
	teams := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		teams[id] = struct{}{}
	}
	return r.active(func(s suspension.Suspension) bool {
		_, ok := teams[s.TeamID]
		return ok
	}), nil
}

// All returns every stored suspension, active or not, ordered by start.
func (r *SuspensionRepository) All() []suspension.Suspension {
	return r.filter(func(suspension.Suspension) bool { return true })
}

func (r *SuspensionRepository) active(keep func(suspension.Suspension) bool) []suspension.Suspension {
	return r.filter(func(s suspension.Suspension) bool { return s.Active && keep(s) })
}

func (r *SuspensionRepository) filter(keep func(suspension.Suspension) bool) []suspension.Suspension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]suspension.Suspension, 0)
	for _, s := range r.rows {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
