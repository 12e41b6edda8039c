package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	Name         string    `db:"name"`
	Abbreviation string    `db:"abbreviation"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	PublicID     string `db:"public_id"`
	Name         string `db:"name"`
	Abbreviation string `db:"abbreviation"`
}

type tournamentTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	Name           string    `db:"name"`
	TotalMatchdays int       `db:"total_matchdays"`
	Active         bool      `db:"active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type tournamentInsertModel struct {
	PublicID       string `db:"public_id"`
	Name           string `db:"name"`
	TotalMatchdays int    `db:"total_matchdays"`
	Active         bool   `db:"active"`
}

type matchTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	TournamentID  string         `db:"tournament_public_id"`
	Matchday      int            `db:"matchday"`
	HomeTeamID    string         `db:"home_team_public_id"`
	AwayTeamID    string         `db:"away_team_public_id"`
	ScheduledAt   time.Time      `db:"scheduled_at"`
	Venue         sql.NullString `db:"venue"`
	State         string         `db:"state"`
	GoalsHome     sql.NullInt64  `db:"goals_home"`
	GoalsAway     sql.NullInt64  `db:"goals_away"`
	CurrentMinute int            `db:"current_minute"`
	ScorekeeperID sql.NullString `db:"scorekeeper_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	PublicID      string    `db:"public_id"`
	TournamentID  string    `db:"tournament_public_id"`
	Matchday      int       `db:"matchday"`
	HomeTeamID    string    `db:"home_team_public_id"`
	AwayTeamID    string    `db:"away_team_public_id"`
	ScheduledAt   time.Time `db:"scheduled_at"`
	Venue         *string   `db:"venue"`
	State         string    `db:"state"`
	GoalsHome     *int      `db:"goals_home"`
	GoalsAway     *int      `db:"goals_away"`
	CurrentMinute int       `db:"current_minute"`
	ScorekeeperID *string   `db:"scorekeeper_id"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type matchEventTableModel struct {
	ID                int64          `db:"id"`
	PublicID          string         `db:"public_id"`
	MatchID           string         `db:"match_public_id"`
	EventType         string         `db:"event_type"`
	Minute            int            `db:"minute"`
	TeamID            string         `db:"team_public_id"`
	PlayerID          sql.NullString `db:"player_id"`
	AssistingPlayerID sql.NullString `db:"assisting_player_id"`
	Note              sql.NullString `db:"note"`
	CreatedAt         time.Time      `db:"created_at"`
}

type matchEventInsertModel struct {
	PublicID          string    `db:"public_id"`
	MatchID           string    `db:"match_public_id"`
	EventType         string    `db:"event_type"`
	Minute            int       `db:"minute"`
	TeamID            string    `db:"team_public_id"`
	PlayerID          *string   `db:"player_id"`
	AssistingPlayerID *string   `db:"assisting_player_id"`
	Note              *string   `db:"note"`
	CreatedAt         time.Time `db:"created_at"`
}

type standingTableModel struct {
	ID           int64     `db:"id"`
	TournamentID string    `db:"tournament_public_id"`
	TeamID       string    `db:"team_public_id"`
	Played       int       `db:"played"`
	Won          int       `db:"won"`
	Drawn        int       `db:"drawn"`
	Lost         int       `db:"lost"`
	GoalsFor     int       `db:"goals_for"`
	GoalsAgainst int       `db:"goals_against"`
	Points       int       `db:"points"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type standingInsertModel struct {
	TournamentID string    `db:"tournament_public_id"`
	TeamID       string    `db:"team_public_id"`
	Played       int       `db:"played"`
	Won          int       `db:"won"`
	Drawn        int       `db:"drawn"`
	Lost         int       `db:"lost"`
	GoalsFor     int       `db:"goals_for"`
	GoalsAgainst int       `db:"goals_against"`
	Points       int       `db:"points"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type suspensionTableModel struct {
	ID                int64          `db:"id"`
	PublicID          string         `db:"public_id"`
	PlayerID          string         `db:"player_id"`
	TeamID            string         `db:"team_public_id"`
	Reason            string         `db:"reason"`
	MatchesOwed       int            `db:"matches_owed"`
	MatchesServed     int            `db:"matches_served"`
	Active            bool           `db:"active"`
	StartDate         time.Time      `db:"start_date"`
	EndDate           sql.NullTime   `db:"end_date"`
	OriginMatchID     sql.NullString `db:"origin_match_public_id"`
	LastServedMatchID sql.NullString `db:"last_served_match_public_id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

type suspensionInsertModel struct {
	PublicID          string     `db:"public_id"`
	PlayerID          string     `db:"player_id"`
	TeamID            string     `db:"team_public_id"`
	Reason            string     `db:"reason"`
	MatchesOwed       int        `db:"matches_owed"`
	MatchesServed     int        `db:"matches_served"`
	Active            bool       `db:"active"`
	StartDate         time.Time  `db:"start_date"`
	EndDate           *time.Time `db:"end_date"`
	OriginMatchID     *string    `db:"origin_match_public_id"`
	LastServedMatchID *string    `db:"last_served_match_public_id"`
}
