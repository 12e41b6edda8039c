package httpapi

import (
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/suspension"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
)

type teamDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

type tournamentDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TotalMatchdays int    `json:"total_matchdays"`
	Active         bool   `json:"active"`
}

type standingDTO struct {
	Position       int    `json:"position"`
	TeamID         string `json:"team_id"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

type matchDTO struct {
	ID            string `json:"id"`
	TournamentID  string `json:"tournament_id"`
	Matchday      int    `json:"matchday"`
	HomeTeamID    string `json:"home_team_id"`
	AwayTeamID    string `json:"away_team_id"`
	ScheduledAt   string `json:"scheduled_at"`
	Venue         string `json:"venue,omitempty"`
	State         string `json:"state"`
	GoalsHome     *int   `json:"goals_home"`
	GoalsAway     *int   `json:"goals_away"`
	CurrentMinute int    `json:"current_minute"`
	ScorekeeperID string `json:"scorekeeper_id,omitempty"`
}

type eventDTO struct {
	ID                string `json:"id"`
	MatchID           string `json:"match_id"`
	Type              string `json:"type"`
	Minute            int    `json:"minute"`
	TeamID            string `json:"team_id"`
	PlayerID          string `json:"player_id,omitempty"`
	AssistingPlayerID string `json:"assisting_player_id,omitempty"`
	Note              string `json:"note,omitempty"`
	CreatedAtUTC      string `json:"created_at_utc"`
}

type recordEventDTO struct {
	Event     eventDTO `json:"event"`
	Match     matchDTO `json:"match"`
	Duplicate bool     `json:"duplicate"`
}

type suspensionDTO struct {
	ID            string  `json:"id"`
	PlayerID      string  `json:"player_id"`
	TeamID        string  `json:"team_id"`
	Reason        string  `json:"reason"`
	MatchesOwed   int     `json:"matches_owed"`
	MatchesServed int     `json:"matches_served"`
	Active        bool    `json:"active"`
	StartDate     string  `json:"start_date"`
	EndDate       *string `json:"end_date"`
	OriginMatchID string  `json:"origin_match_id,omitempty"`
}

type finishMatchDTO struct {
	Match       matchDTO        `json:"match"`
	Suspensions []suspensionDTO `json:"suspensions"`
}

type scorerDTO struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
}

type eligibilityDTO struct {
	PlayerID string `json:"player_id"`
	Eligible bool   `json:"eligible"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{ID: v.ID, Name: v.Name, Abbreviation: v.Abbreviation}
}

func tournamentToDTO(v tournament.Tournament) tournamentDTO {
	return tournamentDTO{ID: v.ID, Name: v.Name, TotalMatchdays: v.TotalMatchdays, Active: v.Active}
}

func standingsToDTO(rows []standing.Entry) []standingDTO {
	out := make([]standingDTO, 0, len(rows))
	for i, row := range rows {
		out = append(out, standingDTO{
			Position:       i + 1,
			TeamID:         row.TeamID,
			Played:         row.Played,
			Won:            row.Won,
			Drawn:          row.Drawn,
			Lost:           row.Lost,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference(),
			Points:         row.Points,
		})
	}
	return out
}

func matchToDTO(v match.Match) matchDTO {
	v = v.Clone()
	return matchDTO{
		ID:            v.ID,
		TournamentID:  v.TournamentID,
		Matchday:      v.Matchday,
		HomeTeamID:    v.HomeTeamID,
		AwayTeamID:    v.AwayTeamID,
		ScheduledAt:   v.ScheduledAt.UTC().Format(time.RFC3339),
		Venue:         v.Venue,
		State:         string(v.State),
		GoalsHome:     v.GoalsHome,
		GoalsAway:     v.GoalsAway,
		CurrentMinute: v.CurrentMinute,
		ScorekeeperID: v.ScorekeeperID,
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	return out
}

func eventToDTO(v matchevent.Event) eventDTO {
	return eventDTO{
		ID:                v.ID,
		MatchID:           v.MatchID,
		Type:              string(v.Type),
		Minute:            v.Minute,
		TeamID:            v.TeamID,
		PlayerID:          v.PlayerID,
		AssistingPlayerID: v.AssistingPlayerID,
		Note:              v.Note,
		CreatedAtUTC:      v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func suspensionsToDTO(items []suspension.Suspension) []suspensionDTO {
	out := make([]suspensionDTO, 0, len(items))
	for _, v := range items {
		item := suspensionDTO{
			ID:            v.ID,
			PlayerID:      v.PlayerID,
			TeamID:        v.TeamID,
			Reason:        v.Reason,
			MatchesOwed:   v.MatchesOwed,
			MatchesServed: v.MatchesServed,
			Active:        v.Active,
			StartDate:     v.StartDate.UTC().Format(time.RFC3339),
			OriginMatchID: v.OriginMatchID,
		}
		if v.EndDate != nil {
			end := v.EndDate.UTC().Format(time.RFC3339)
			item.EndDate = &end
		}
		out = append(out, item)
	}
	return out
}
