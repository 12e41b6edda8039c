package standing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

// Entry is one team's row in a tournament table. Rows are recomputed from
// finished matches and never edited directly.
type Entry struct {
	TournamentID string
	TeamID       string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
	UpdatedAt    time.Time
}

func (e Entry) GoalDifference() int {
	return e.GoalsFor - e.GoalsAgainst
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.TournamentID) == "" {
		return fmt.Errorf("standing tournament id is required")
	}
	if strings.TrimSpace(e.TeamID) == "" {
		return fmt.Errorf("standing team id is required")
	}
	if e.Played != e.Won+e.Drawn+e.Lost {
		return fmt.Errorf("played must equal won+drawn+lost")
	}

	return nil
}

// Result is the final score of a finished match.
type Result struct {
	HomeTeamID string
	AwayTeamID string
	GoalsHome  int
	GoalsAway  int
}

func (e *Entry) apply(goalsFor, goalsAgainst int) {
	e.Played++
	e.GoalsFor += goalsFor
	e.GoalsAgainst += goalsAgainst
	switch {
	case goalsFor > goalsAgainst:
		e.Won++
		e.Points += PointsWin
	case goalsFor == goalsAgainst:
		e.Drawn++
		e.Points += PointsDraw
	default:
		e.Lost++
		e.Points += PointsLoss
	}
}

// Compute folds results into fresh rows for teamIDs. Results for teams
// outside teamIDs are ignored for those teams.
func Compute(tournamentID string, teamIDs []string, results []Result) []Entry {
	rows := make(map[string]*Entry, len(teamIDs))
	out := make([]Entry, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		if _, ok := rows[teamID]; ok {
			continue
		}
		rows[teamID] = &Entry{TournamentID: tournamentID, TeamID: teamID}
	}

	for _, r := range results {
		if row, ok := rows[r.HomeTeamID]; ok {
			row.apply(r.GoalsHome, r.GoalsAway)
		}
		if row, ok := rows[r.AwayTeamID]; ok {
			row.apply(r.GoalsAway, r.GoalsHome)
		}
	}

	for _, teamID := range teamIDs {
		if row, ok := rows[teamID]; ok {
			out = append(out, *row)
			delete(rows, teamID)
		}
	}
	return out
}

// Sort orders the table by points, goal difference, goals for, then team id.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
}
