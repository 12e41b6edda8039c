package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

type StandingService struct {
	tournamentRepo tournament.Repository
	matchRepo      match.Repository
	eventRepo      matchevent.Repository
	standingRepo   standing.Repository
	logger         *logging.Logger
	now            func() time.Time
}

func NewStandingService(
	tournamentRepo tournament.Repository,
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	standingRepo standing.Repository,
	logger *logging.Logger,
) *StandingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StandingService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		eventRepo:      eventRepo,
		standingRepo:   standingRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Recompute rebuilds the rows of teamIDs from every finished match of the
// tournament. With no team ids the whole roster is rebuilt.
func (s *StandingService) Recompute(ctx context.Context, tournamentID string, teamIDs ...string) ([]standing.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.Recompute", tournamentAttr(tournamentID))
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	ids := uniqueTrimmed(teamIDs)
	if len(ids) == 0 {
		var err error
		ids, err = roster(ctx, s.standingRepo, tournamentID)
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}

	rows := standing.Compute(tournamentID, ids, finishedResults(matches))
	now := s.now().UTC()
	for i := range rows {
		rows[i].UpdatedAt = now
	}
	if err := s.standingRepo.Upsert(ctx, rows...); err != nil {
		return nil, fmt.Errorf("upsert standings: %w", err)
	}

	return rows, nil
}

func finishedResults(matches []match.Match) []standing.Result {
	out := make([]standing.Result, 0, len(matches))
	for _, m := range matches {
		if m.State != match.StateFinished {
			continue
		}
		home, away := m.Score()
		out = append(out, standing.Result{
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			GoalsHome:  home,
			GoalsAway:  away,
		})
	}
	return out
}

func (s *StandingService) Table(ctx context.Context, tournamentID string) ([]standing.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.Table", tournamentAttr(tournamentID))
	defer span.End()

	t, err := getTournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	rows, err := s.standingRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	standing.Sort(rows)
	return rows, nil
}

// MatchdayResults lists the finished matches of one matchday.
func (s *StandingService) MatchdayResults(ctx context.Context, tournamentID string, matchday int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.MatchdayResults", tournamentAttr(tournamentID))
	defer span.End()

	if matchday < 1 {
		return nil, fmt.Errorf("%w: matchday must be >= 1", ErrInvalidInput)
	}
	t, err := getTournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	out := make([]match.Match, 0)
	for _, m := range matches {
		if m.Matchday == matchday && m.State == match.StateFinished {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *StandingService) TopScorers(ctx context.Context, tournamentID string, limit int) ([]matchevent.ScorerTally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.TopScorers", tournamentAttr(tournamentID))
	defer span.End()

	t, err := getTournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	if len(matches) == 0 {
		return []matchevent.ScorerTally{}, nil
	}
	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}

	goals, err := s.eventRepo.ListByMatches(ctx, matchIDs, matchevent.TypeGoal)
	if err != nil {
		return nil, fmt.Errorf("list goal events: %w", err)
	}

	out := matchevent.TallyScorers(goals)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
