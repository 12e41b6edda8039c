package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/league-live/internal/usecase"
)

const (
	defaultTopScorersLimit = 10
	slotLayout             = "15:04"
	dateLayout             = "2006-01-02"
)

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.CreateTeam")
	defer span.End()

	var req createTeamRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournamentService.CreateTeam(ctx, usecase.CreateTeamInput{
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(item))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	item, err := h.tournamentService.GetTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.CreateTournament")
	defer span.End()

	var req createTournamentRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournamentService.Create(ctx, usecase.CreateTournamentInput{Name: req.Name})
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(item))
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	item, err := h.tournamentService.Get(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) RegisterTournamentTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.RegisterTournamentTeams")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	var req registerTeamsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.tournamentService.RegisterTeams(ctx, tournamentID, req.TeamIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "register teams failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(rows))
}

func (h *Handler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GenerateFixtures")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	var req generateFixturesRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := req.toInput(tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.fixtureService.Generate(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "generate fixtures failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "fixtures generated", "tournament_id", tournamentID, "matches", len(matches))
	writeSuccess(ctx, w, http.StatusCreated, matchesToDTO(matches))
}

func (h *Handler) ListTournamentMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListTournamentMatches")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	matchday, err := queryInt(r, "matchday")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.matchService.ListByTournament(ctx, tournamentID, matchday)
	if err != nil {
		h.logger.WarnContext(ctx, "list tournament matches failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) ListMatchdayResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListMatchdayResults")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	matchday, err := strconv.Atoi(r.PathValue("matchday"))
	if err != nil || matchday < 1 {
		writeError(ctx, w, fmt.Errorf("%w: matchday must be a positive integer", usecase.ErrInvalidInput))
		return
	}

	matches, err := h.standingService.MatchdayResults(ctx, tournamentID, matchday)
	if err != nil {
		h.logger.WarnContext(ctx, "list matchday results failed", "tournament_id", tournamentID, "matchday", matchday, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListStandings")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	rows, err := h.standingService.Table(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(rows))
}

func (h *Handler) ListTopScorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListTopScorers")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if limit == 0 {
		limit = defaultTopScorersLimit
	}

	items, err := h.standingService.TopScorers(ctx, tournamentID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list top scorers failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]scorerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, scorerDTO{PlayerID: item.PlayerID, TeamID: item.TeamID, Goals: item.Goals, Assists: item.Assists})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListTournamentSuspensions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListTournamentSuspensions")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	items, err := h.suspensionService.ListActive(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list suspensions failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, suspensionsToDTO(items))
}

type createTeamRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Abbreviation string `json:"abbreviation" validate:"max=5"`
}

type createTournamentRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type registerTeamsRequest struct {
	TeamIDs []string `json:"team_ids" validate:"required,min=1,dive,required"`
}

type generateFixturesRequest struct {
	StartDate        string   `json:"start_date" validate:"required"`
	TimeSlots        []string `json:"time_slots" validate:"required,min=1,dive,required"`
	MinGapDays       int      `json:"min_gap_days" validate:"min=0"`
	DoubleRoundRobin bool     `json:"double_round_robin"`
	Seed             *int64   `json:"seed"`
}

// toInput parses "2006-01-02" dates and "15:04" slots.
func (req generateFixturesRequest) toInput(tournamentID string) (usecase.GenerateFixtureInput, error) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return usecase.GenerateFixtureInput{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", usecase.ErrInvalidInput)
	}

	slots := make([]time.Duration, 0, len(req.TimeSlots))
	for _, raw := range req.TimeSlots {
		clock, err := time.Parse(slotLayout, strings.TrimSpace(raw))
		if err != nil {
			return usecase.GenerateFixtureInput{}, fmt.Errorf("%w: time slot %q must be HH:MM", usecase.ErrInvalidInput, raw)
		}
		slots = append(slots, time.Duration(clock.Hour())*time.Hour+time.Duration(clock.Minute())*time.Minute)
	}

	return usecase.GenerateFixtureInput{
		TournamentID:     tournamentID,
		StartDate:        start,
		TimeSlots:        slots,
		MinGapDays:       req.MinGapDays,
		DoubleRoundRobin: req.DoubleRoundRobin,
		Seed:             req.Seed,
	}, nil
}
