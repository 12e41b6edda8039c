package match

import (
	"fmt"
	"strings"
	"time"
)

// Match is one fixture between two teams. It is only mutated through the
// lifecycle engine's transitions.
type Match struct {
	ID            string
	TournamentID  string
	Matchday      int
	HomeTeamID    string
	AwayTeamID    string
	ScheduledAt   time.Time
	Venue         string
	State         State
	GoalsHome     *int
	GoalsAway     *int
	CurrentMinute int
	ScorekeeperID string
	UpdatedAt     time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(m.TournamentID) == "" {
		return fmt.Errorf("match tournament id is required")
	}
	if m.Matchday < 1 {
		return fmt.Errorf("matchday must be >= 1")
	}
	if strings.TrimSpace(m.HomeTeamID) == "" || strings.TrimSpace(m.AwayTeamID) == "" {
		return fmt.Errorf("home and away team ids are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("home and away team must differ")
	}
	if m.ScheduledAt.IsZero() {
		return fmt.Errorf("match scheduled time is required")
	}
	if !m.State.Valid() {
		return fmt.Errorf("invalid match state %q", m.State)
	}
	if m.CurrentMinute < 0 {
		return fmt.Errorf("current minute must be >= 0")
	}

	return nil
}

func (m Match) Involves(teamID string) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// Score returns the stored score, zero before kickoff.
func (m Match) Score() (home, away int) {
	if m.GoalsHome != nil {
		home = *m.GoalsHome
	}
	if m.GoalsAway != nil {
		away = *m.GoalsAway
	}
	return home, away
}

func (m *Match) SetScore(home, away int) {
	m.GoalsHome = &home
	m.GoalsAway = &away
}

// Clone copies the goal pointers so callers cannot alias stored state.
func (m Match) Clone() Match {
	out := m
	if m.GoalsHome != nil {
		v := *m.GoalsHome
		out.GoalsHome = &v
	}
	if m.GoalsAway != nil {
		v := *m.GoalsAway
		out.GoalsAway = &v
	}
	return out
}
