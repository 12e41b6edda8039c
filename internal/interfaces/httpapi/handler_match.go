package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/usecase"
)

func (h *Handler) ListLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListLiveMatches")
	defer span.End()

	matches, err := h.matchService.ListLive(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list live matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.CreateMatch")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	var req createMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.CreateManual(ctx, usecase.CreateMatchInput{
		TournamentID: tournamentID,
		Matchday:     req.Matchday,
		HomeTeamID:   req.HomeTeamID,
		AwayTeamID:   req.AwayTeamID,
		ScheduledAt:  req.ScheduledAt,
		Venue:        req.Venue,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.UpdateMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req updateMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.UpdateSchedule(ctx, matchID, usecase.UpdateScheduleInput{
		ScheduledAt: req.ScheduledAt,
		Venue:       req.Venue,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.DeleteMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	if err := h.matchService.Delete(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": matchID})
}

func (h *Handler) ListMatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ListMatchEvents")
	defer span.End()

	matchID := r.PathValue("matchID")
	events, err := h.matchService.ListEvents(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match events failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, eventToDTO(e))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// RecordMatchEvent answers 201 for a new event and 200 when event_id was
// already recorded.
func (h *Handler) RecordMatchEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.RecordMatchEvent")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req recordEventRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.matchService.RecordEvent(ctx, matchID, usecase.RecordEventInput{
		EventID: req.EventID,
		Draft: matchevent.Draft{
			Type:              matchevent.Type(req.Type),
			Minute:            *req.Minute,
			TeamID:            req.TeamID,
			PlayerID:          req.PlayerID,
			AssistingPlayerID: req.AssistingPlayerID,
			Note:              req.Note,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record event failed", "match_id", matchID, "event_id", req.EventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, recordEventDTO{
		Event:     eventToDTO(result.Event),
		Match:     matchToDTO(result.Match),
		Duplicate: result.Duplicate,
	})
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.StartMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req startMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Start(ctx, matchID, req.OperatorID)
	if err != nil {
		h.logger.WarnContext(ctx, "start match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) AdvanceMatchMinute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.AdvanceMatchMinute")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req advanceMinuteRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.AdvanceMinute(ctx, matchID, *req.Minute)
	if err != nil {
		h.logger.WarnContext(ctx, "advance minute failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) MarkHalfTime(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.MarkHalfTime", h.matchService.MarkHalfTime)
}

func (h *Handler) ResumeMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.ResumeMatch", h.matchService.Resume)
}

func (h *Handler) SuspendMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.SuspendMatch", h.matchService.Suspend)
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.CancelMatch", h.matchService.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, spanName string, apply func(context.Context, string) (match.Match, error)) {
	ctx, span := startHandlerSpan(r, spanName)
	defer span.End()

	matchID := r.PathValue("matchID")
	item, err := apply(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match transition failed", "match_id", matchID, "handler", spanName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.FinishMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	result, err := h.matchService.Finish(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "finish match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "match finished", "match_id", matchID, "suspensions", len(result.Suspensions))
	writeSuccess(ctx, w, http.StatusOK, finishMatchDTO{
		Match:       matchToDTO(result.Match),
		Suspensions: suspensionsToDTO(result.Suspensions),
	})
}

type createMatchRequest struct {
	Matchday    int       `json:"matchday" validate:"required,min=1"`
	HomeTeamID  string    `json:"home_team_id" validate:"required"`
	AwayTeamID  string    `json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Venue       string    `json:"venue" validate:"max=200"`
}

type updateMatchRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Venue       *string   `json:"venue" validate:"omitempty,max=200"`
}

type recordEventRequest struct {
	EventID           string `json:"event_id" validate:"max=64"`
	Type              string `json:"type" validate:"required,oneof=goal yellow_card red_card substitution"`
	Minute            *int   `json:"minute" validate:"required,min=0"`
	TeamID            string `json:"team_id" validate:"required"`
	PlayerID          string `json:"player_id"`
	AssistingPlayerID string `json:"assisting_player_id"`
	Note              string `json:"note" validate:"max=500"`
}

type startMatchRequest struct {
	OperatorID string `json:"operator_id" validate:"required"`
}

type advanceMinuteRequest struct {
	Minute *int `json:"minute" validate:"required,min=0"`
}
