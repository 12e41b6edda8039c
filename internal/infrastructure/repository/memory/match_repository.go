package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matches: make(map[string]match.Match)}
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[item.ID]; ok {
		return fmt.Errorf("%w: match=%s", ErrDuplicateKey, item.ID)
	}
	r.matches[item.ID] = item.Clone()
	return nil
}

func (r *MatchRepository) CreateBatch(_ context.Context, items []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := r.matches[item.ID]; ok {
			return fmt.Errorf("%w: match=%s", ErrDuplicateKey, item.ID)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: match=%s appears twice in batch", ErrDuplicateKey, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	for _, item := range items {
		r.matches[item.ID] = item.Clone()
	}
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[item.ID]; !ok {
		return fmt.Errorf("%w: match=%s", ErrRowNotFound, item.ID)
	}
	r.matches[item.ID] = item.Clone()
	return nil
}

func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[matchID]; !ok {
		return fmt.Errorf("%w: match=%s", ErrRowNotFound, matchID)
	}
	delete(r.matches, matchID)
	return nil
}

func (r *MatchRepository) ListByTournament(_ context.Context, tournamentID string) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool { return m.TournamentID == tournamentID }), nil
}

func (r *MatchRepository) CountByTournament(_ context.Context, tournamentID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *MatchRepository) ListByTeamBetween(_ context.Context, teamID string, from, to time.Time) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		return m.Involves(teamID) && !m.ScheduledAt.Before(from) && m.ScheduledAt.Before(to)
	}), nil
}

func (r *MatchRepository) ListByStates(_ context.Context, states ...match.State) ([]match.Match, error) {
	wanted := make(map[match.State]struct{}, len(states))
	for _, s := range states {
		wanted[s] = struct{}{}
	}
	return r.filter(func(m match.Match) bool {
		_, ok := wanted[m.State]
		return ok
	}), nil
}

func (r *MatchRepository) ListScheduledBetween(_ context.Context, from, to time.Time) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		return m.State == match.StateScheduled && !m.ScheduledAt.Before(from) && m.ScheduledAt.Before(to)
	}), nil
}

// filter returns copies ordered by matchday, kickoff, then id.
func (r *MatchRepository) filter(keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.matches {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matchday != out[j].Matchday {
			return out[i].Matchday < out[j].Matchday
		}
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
