package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

type TournamentService struct {
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	standingRepo   standing.Repository
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo tournament.Repository,
	teamRepo team.Repository,
	standingRepo standing.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *TournamentService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		standingRepo:   standingRepo,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

type CreateTeamInput struct {
	Name         string
	Abbreviation string
}

func (s *TournamentService) CreateTeam(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CreateTeam")
	defer span.End()

	id, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}
	item := team.Team{
		ID:           id,
		Name:         strings.TrimSpace(input.Name),
		Abbreviation: strings.ToUpper(strings.TrimSpace(input.Abbreviation)),
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teamRepo.Create(ctx, item); err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	return item, nil
}

func (s *TournamentService) GetTeam(ctx context.Context, teamID string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetTeam")
	defer span.End()

	item, ok, err := s.teamRepo.GetByID(ctx, strings.TrimSpace(teamID))
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !ok {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	return item, nil
}

type CreateTournamentInput struct {
	Name string
}

func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Create")
	defer span.End()

	id, err := s.idGen.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}
	item := tournament.Tournament{
		ID:     id,
		Name:   strings.TrimSpace(input.Name),
		Active: true,
	}
	if err := item.Validate(); err != nil {
		return tournament.Tournament{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.tournamentRepo.Create(ctx, item); err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}

	return item, nil
}

func (s *TournamentService) Get(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Get")
	defer span.End()

	return getTournament(ctx, s.tournamentRepo, tournamentID)
}

// RegisterTeams adds teams to the tournament roster by creating their
// zeroed standing rows. Teams already on the roster keep their rows.
func (s *TournamentService) RegisterTeams(ctx context.Context, tournamentID string, teamIDs []string) ([]standing.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.RegisterTeams", tournamentAttr(tournamentID))
	defer span.End()

	t, err := getTournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	ids := uniqueTrimmed(teamIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one team id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) != len(ids) {
		known := make(map[string]struct{}, len(teams))
		for _, item := range teams {
			known[item.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("%w: team=%s", ErrNotFound, id)
			}
		}
	}

	existing, err := s.standingRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	onRoster := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		onRoster[row.TeamID] = struct{}{}
	}

	now := s.now().UTC()
	added := make([]standing.Entry, 0, len(ids))
	for _, id := range ids {
		if _, ok := onRoster[id]; ok {
			continue
		}
		added = append(added, standing.Entry{TournamentID: t.ID, TeamID: id, UpdatedAt: now})
	}
	if len(added) > 0 {
		if err := s.standingRepo.Upsert(ctx, added...); err != nil {
			return nil, fmt.Errorf("register teams: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "teams registered", "tournament_id", t.ID, "added", len(added), "requested", len(ids))
	return added, nil
}

func getTournament(ctx context.Context, repo tournament.Repository, tournamentID string) (tournament.Tournament, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	item, ok, err := repo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !ok {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}
	return item, nil
}

// roster returns the team ids on the tournament, sorted.
func roster(ctx context.Context, repo standing.Repository, tournamentID string) ([]string, error) {
	rows, err := repo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament roster: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.TeamID)
	}
	sort.Strings(out)
	return out, nil
}

func uniqueTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
