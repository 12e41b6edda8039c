package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/suspension"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

type SuspensionService struct {
	suspensionRepo suspension.Repository
	matchRepo      match.Repository
	eventRepo      matchevent.Repository
	standingRepo   standing.Repository
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewSuspensionService(
	suspensionRepo suspension.Repository,
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	standingRepo standing.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *SuspensionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SuspensionService{
		suspensionRepo: suspensionRepo,
		matchRepo:      matchRepo,
		eventRepo:      eventRepo,
		standingRepo:   standingRepo,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// ProcessFinishedMatch runs when m has just finished. Suspensions of both
// teams first count m as served, then cards shown in m may open new ones.
// It returns the suspensions it created.
func (s *SuspensionService) ProcessFinishedMatch(ctx context.Context, m match.Match, events []matchevent.Event) ([]suspension.Suspension, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SuspensionService.ProcessFinishedMatch", matchAttr(m.ID))
	defer span.End()

	if err := s.serveTeams(ctx, m); err != nil {
		return nil, err
	}

	cards := matchevent.CardsByPlayer(events)
	if len(cards) == 0 {
		return nil, nil
	}

	var yellowTotals map[string]int
	created := make([]suspension.Suspension, 0)
	for _, pc := range cards {
		owed, reason := 0, ""
		switch {
		case pc.Red > 0:
			owed, reason = suspension.RedCardMatches, suspension.ReasonDirectRed
		case pc.Yellow > 0:
			if yellowTotals == nil {
				var err error
				yellowTotals, err = s.seasonYellows(ctx, m.TournamentID)
				if err != nil {
					return nil, err
				}
			}
			n := yellowTotals[pc.PlayerID]
			if n > 0 && n%suspension.YellowThreshold == 0 {
				owed, reason = suspension.AccumulatedMatches, suspension.AccumulationReason(n)
			}
		}
		if owed == 0 {
			continue
		}

		item, ok, err := s.open(ctx, pc.PlayerID, pc.TeamID, reason, owed, m.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, item)
		}
	}

	return created, nil
}

func (s *SuspensionService) serveTeams(ctx context.Context, m match.Match) error {
	active, err := s.suspensionRepo.ListActiveByTeams(ctx, []string{m.HomeTeamID, m.AwayTeamID})
	if err != nil {
		return fmt.Errorf("list active suspensions: %w", err)
	}

	now := s.now().UTC()
	for _, item := range active {
		if !item.Serve(m.ID, now) {
			continue
		}
		if err := s.suspensionRepo.Update(ctx, item); err != nil {
			return fmt.Errorf("update suspension %s: %w", item.ID, err)
		}
		if !item.Active {
			s.logger.InfoContext(ctx, "suspension served", "suspension_id", item.ID, "player_id", item.PlayerID, "match_id", m.ID)
		}
	}
	return nil
}

// seasonYellows counts yellow cards per player across every match of the
// tournament. The count is never reset by serving a suspension.
func (s *SuspensionService) seasonYellows(ctx context.Context, tournamentID string) (map[string]int, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}

	yellows, err := s.eventRepo.ListByMatches(ctx, matchIDs, matchevent.TypeYellowCard)
	if err != nil {
		return nil, fmt.Errorf("list yellow cards: %w", err)
	}

	out := make(map[string]int)
	seen := make(map[string]struct{}, len(yellows))
	for _, e := range yellows {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out[e.PlayerID]++
	}
	return out, nil
}

func (s *SuspensionService) open(ctx context.Context, playerID, teamID, reason string, owed int, originMatchID string) (suspension.Suspension, bool, error) {
	id, err := s.idGen.NewID()
	if err != nil {
		return suspension.Suspension{}, false, fmt.Errorf("generate suspension id: %w", err)
	}

	item := suspension.Suspension{
		ID:            id,
		PlayerID:      playerID,
		TeamID:        teamID,
		Reason:        reason,
		MatchesOwed:   owed,
		Active:        true,
		StartDate:     s.now().UTC(),
		OriginMatchID: originMatchID,
	}
	if err := item.Validate(); err != nil {
		return suspension.Suspension{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.suspensionRepo.CreateIfNoneActive(ctx, item)
	if err != nil {
		return suspension.Suspension{}, false, fmt.Errorf("create suspension: %w", err)
	}
	if !created {
		s.logger.DebugContext(ctx, "player already suspended, not stacking", "player_id", playerID, "reason", reason)
		return suspension.Suspension{}, false, nil
	}

	s.logger.InfoContext(ctx, "suspension created",
		"suspension_id", item.ID,
		"player_id", playerID,
		"reason", reason,
		"matches_owed", owed,
	)
	return item, true, nil
}

// DecrementOnMatchPlayed counts matchID as served for every active
// suspension of the player. Repeating the same match is a no-op.
func (s *SuspensionService) DecrementOnMatchPlayed(ctx context.Context, playerID, matchID string) ([]suspension.Suspension, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SuspensionService.DecrementOnMatchPlayed", playerAttr(playerID), matchAttr(matchID))
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	matchID = strings.TrimSpace(matchID)
	if playerID == "" || matchID == "" {
		return nil, fmt.Errorf("%w: player id and match id are required", ErrInvalidInput)
	}

	active, err := s.suspensionRepo.ListActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list active suspensions: %w", err)
	}

	now := s.now().UTC()
	out := make([]suspension.Suspension, 0, len(active))
	for _, item := range active {
		if item.Serve(matchID, now) {
			if err := s.suspensionRepo.Update(ctx, item); err != nil {
				return nil, fmt.Errorf("update suspension %s: %w", item.ID, err)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *SuspensionService) IsEligible(ctx context.Context, playerID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SuspensionService.IsEligible", playerAttr(playerID))
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return false, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	active, err := s.suspensionRepo.ListActiveByPlayer(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("list active suspensions: %w", err)
	}
	return len(active) == 0, nil
}

// ListActive returns active suspensions of teams on the tournament roster.
func (s *SuspensionService) ListActive(ctx context.Context, tournamentID string) ([]suspension.Suspension, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SuspensionService.ListActive", tournamentAttr(tournamentID))
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	teamIDs, err := roster(ctx, s.standingRepo, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(teamIDs) == 0 {
		return []suspension.Suspension{}, nil
	}

	out, err := s.suspensionRepo.ListActiveByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("list active suspensions: %w", err)
	}
	return out, nil
}
