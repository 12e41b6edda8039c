package httpapi

import "net/http"

func (h *Handler) GetPlayerEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.GetPlayerEligibility")
	defer span.End()

	playerID := r.PathValue("playerID")
	eligible, err := h.suspensionService.IsEligible(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "check eligibility failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eligibilityDTO{PlayerID: playerID, Eligible: eligible})
}

func (h *Handler) ServePlayerSuspensions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "httpapi.Handler.ServePlayerSuspensions")
	defer span.End()

	playerID := r.PathValue("playerID")
	var req serveSuspensionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.suspensionService.DecrementOnMatchPlayed(ctx, playerID, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "serve suspension failed", "player_id", playerID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, suspensionsToDTO(items))
}

type serveSuspensionRequest struct {
	MatchID string `json:"match_id" validate:"required"`
}
