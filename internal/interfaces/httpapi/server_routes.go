package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/teams", handler.CreateTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("POST /v1/tournaments", handler.CreateTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/teams", handler.RegisterTournamentTeams)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/fixtures", handler.GenerateFixtures)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/matches", handler.ListTournamentMatches)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/matches", handler.CreateMatch)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/matchdays/{matchday}/results", handler.ListMatchdayResults)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/topscorers", handler.ListTopScorers)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/suspensions", handler.ListTournamentSuspensions)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/live", handler.ListLiveMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("PUT /v1/matches/{matchID}", handler.UpdateMatch)
	mux.HandleFunc("DELETE /v1/matches/{matchID}", handler.DeleteMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/events", handler.ListMatchEvents)
	mux.HandleFunc("POST /v1/matches/{matchID}/events", handler.RecordMatchEvent)
	mux.HandleFunc("POST /v1/matches/{matchID}/start", handler.StartMatch)
	mux.HandleFunc("PUT /v1/matches/{matchID}/minute", handler.AdvanceMatchMinute)
	mux.HandleFunc("POST /v1/matches/{matchID}/halftime", handler.MarkHalfTime)
	mux.HandleFunc("POST /v1/matches/{matchID}/resume", handler.ResumeMatch)
	mux.HandleFunc("POST /v1/matches/{matchID}/finish", handler.FinishMatch)
	mux.HandleFunc("POST /v1/matches/{matchID}/suspend", handler.SuspendMatch)
	mux.HandleFunc("POST /v1/matches/{matchID}/cancel", handler.CancelMatch)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}/eligibility", handler.GetPlayerEligibility)
	mux.HandleFunc("POST /v1/players/{playerID}/suspensions/serve", handler.ServePlayerSuspensions)
}
