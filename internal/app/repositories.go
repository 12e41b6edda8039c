package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-live/internal/config"
	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/suspension"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	cacherepo "github.com/riskibarqy/league-live/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/league-live/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-live/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/league-live/internal/platform/cache"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

type repositories struct {
	tournaments tournament.Repository
	teams       team.Repository
	matches     match.Repository
	events      matchevent.Repository
	standings   standing.Repository
	suspensions suspension.Repository
}

func memoryRepositories(ctx context.Context, seed bool) (repositories, error) {
	var (
		tournaments []tournament.Tournament
		teams       []team.Team
	)
	if seed {
		tournaments = memory.SeedTournaments()
		teams = memory.SeedTeams()
	}

	repos := repositories{
		tournaments: memory.NewTournamentRepository(tournaments),
		teams:       memory.NewTeamRepository(teams),
		matches:     memory.NewMatchRepository(),
		events:      memory.NewEventRepository(),
		standings:   memory.NewStandingRepository(),
		suspensions: memory.NewSuspensionRepository(),
	}
	if seed {
		if err := repos.standings.Upsert(ctx, memory.SeedStandings()...); err != nil {
			return repositories{}, fmt.Errorf("seed standings: %w", err)
		}
	}
	return repos, nil
}

func postgresRepositories(ctx context.Context, db *sqlx.DB, seed bool) (repositories, error) {
	if seed {
		if err := postgres.BootstrapSeed(ctx, db, memory.SeedTeams(), memory.SeedTournaments(), memory.SeedStandings()); err != nil {
			return repositories{}, err
		}
	}

	return repositories{
		tournaments: postgres.NewTournamentRepository(db),
		teams:       postgres.NewTeamRepository(db),
		matches:     postgres.NewMatchRepository(db),
		events:      postgres.NewEventRepository(db),
		standings:   postgres.NewStandingRepository(db),
		suspensions: postgres.NewSuspensionRepository(db),
	}, nil
}

// withCache wraps the read heavy reference repositories. Match and event
// repositories are never cached: their writes are serialized per match and
// readers need the latest state.
func (r repositories) withCache(cfg config.Config, logger *logging.Logger) repositories {
	if !cfg.CacheEnabled {
		logger.Info("repository cache disabled", "reason", "CACHE_ENABLED=false")
		return r
	}

	store := basecache.NewStore(cfg.CacheTTL)
	r.tournaments = cacherepo.NewTournamentRepository(r.tournaments, store)
	r.teams = cacherepo.NewTeamRepository(r.teams, store)
	r.standings = cacherepo.NewStandingRepository(r.standings, store)
	logger.Info("repository cache enabled", "ttl", cfg.CacheTTL)
	return r
}
