package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	basecache "github.com/riskibarqy/league-live/internal/platform/cache"
)

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "team:id:"+item.ID)
	r.cache.DeletePrefix(ctx, "team:ids:")
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListByIDs(ctx context.Context, teamIDs []string) ([]team.Team, error) {
	key := "team:ids:" + joinSorted(teamIDs)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByIDs(ctx, teamIDs)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type TournamentRepository struct {
	next  tournament.Repository
	cache *basecache.Store
}

func NewTournamentRepository(next tournament.Repository, cache *basecache.Store) *TournamentRepository {
	return &TournamentRepository{next: next, cache: cache}
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "tournament:id:"+item.ID)
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	key := "tournament:id:" + tournamentID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		return cachedTournamentByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}

	cached, _ := v.(cachedTournamentByID)
	return cached.value, cached.exists, nil
}

func (r *TournamentRepository) Update(ctx context.Context, item tournament.Tournament) error {
	err := r.next.Update(ctx, item)
	r.cache.Delete(ctx, "tournament:id:"+item.ID)
	return err
}

type cachedTournamentByID struct {
	value  tournament.Tournament
	exists bool
}

// StandingRepository caches tables per tournament. Any upsert drops every
// cached row of the touched tournaments.
type StandingRepository struct {
	next  standing.Repository
	cache *basecache.Store
}

func NewStandingRepository(next standing.Repository, cache *basecache.Store) *StandingRepository {
	return &StandingRepository{next: next, cache: cache}
}

func (r *StandingRepository) Upsert(ctx context.Context, entries ...standing.Entry) error {
	err := r.next.Upsert(ctx, entries...)

	seen := make(map[string]struct{}, 1)
	for _, e := range entries {
		if _, ok := seen[e.TournamentID]; ok {
			continue
		}
		seen[e.TournamentID] = struct{}{}
		r.cache.DeletePrefix(ctx, standingPrefix(e.TournamentID))
	}
	return err
}

func (r *StandingRepository) Get(ctx context.Context, tournamentID, teamID string) (standing.Entry, bool, error) {
	key := standingPrefix(tournamentID) + "team:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.Get(ctx, tournamentID, teamID)
		if err != nil {
			return nil, err
		}
		return cachedStanding{value: item, exists: exists}, nil
	})
	if err != nil {
		return standing.Entry{}, false, err
	}

	cached, _ := v.(cachedStanding)
	return cached.value, cached.exists, nil
}

func (r *StandingRepository) ListByTournament(ctx context.Context, tournamentID string) ([]standing.Entry, error) {
	key := standingPrefix(tournamentID) + "list"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		return append([]standing.Entry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]standing.Entry)
	return append([]standing.Entry(nil), items...), nil
}

type cachedStanding struct {
	value  standing.Entry
	exists bool
}

func standingPrefix(tournamentID string) string {
	return "standing:" + tournamentID + ":"
}

func joinSorted(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
