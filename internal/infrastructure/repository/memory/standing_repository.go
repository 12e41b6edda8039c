package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/league-live/internal/domain/standing"
)

type standingKey struct {
	tournamentID string
	teamID       string
}

type StandingRepository struct {
	mu   sync.RWMutex
	rows map[standingKey]standing.Entry
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{rows: make(map[standingKey]standing.Entry)}
}

func (r *StandingRepository) Upsert(_ context.Context, entries ...standing.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		r.rows[standingKey{tournamentID: e.TournamentID, teamID: e.TeamID}] = e
	}
	return nil
}

func (r *StandingRepository) Get(_ context.Context, tournamentID, teamID string) (standing.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[standingKey{tournamentID: tournamentID, teamID: teamID}]
	return e, ok, nil
}

func (r *StandingRepository) ListByTournament(_ context.Context, tournamentID string) ([]standing.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]standing.Entry, 0)
	for key, e := range r.rows {
		if key.tournamentID == tournamentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}
