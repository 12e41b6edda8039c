package suspension

import (
	"fmt"
	"strings"
	"time"
)

const (
	ReasonDirectRed = "direct red card"

	RedCardMatches     = 2
	AccumulatedMatches = 1
	YellowThreshold    = 3
)

// AccumulationReason records the season yellow count that triggered a ban.
func AccumulationReason(yellowCount int) string {
	return fmt.Sprintf("accumulation of %d yellow cards", yellowCount)
}

// Suspension bans a player for a number of matches. A player has at most
// one active suspension at a time.
type Suspension struct {
	ID                string
	PlayerID          string
	TeamID            string
	Reason            string
	MatchesOwed       int
	MatchesServed     int
	Active            bool
	StartDate         time.Time
	EndDate           *time.Time
	OriginMatchID     string
	LastServedMatchID string
}

func (s Suspension) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("suspension id is required")
	}
	if strings.TrimSpace(s.PlayerID) == "" {
		return fmt.Errorf("suspension player id is required")
	}
	if strings.TrimSpace(s.TeamID) == "" {
		return fmt.Errorf("suspension team id is required")
	}
	if s.MatchesOwed < 1 {
		return fmt.Errorf("matches owed must be >= 1")
	}
	if s.MatchesServed < 0 || s.MatchesServed > s.MatchesOwed {
		return fmt.Errorf("matches served must be within [0, %d]", s.MatchesOwed)
	}
	if s.Active && s.MatchesServed == s.MatchesOwed {
		return fmt.Errorf("fully served suspension cannot be active")
	}

	return nil
}

func (s Suspension) Remaining() int {
	return s.MatchesOwed - s.MatchesServed
}

// Serve records one match served for matchID. It reports false when the
// suspension is inactive, originated in matchID, or already counted it.
func (s *Suspension) Serve(matchID string, now time.Time) bool {
	if !s.Active || matchID == "" || matchID == s.OriginMatchID || matchID == s.LastServedMatchID {
		return false
	}

	s.MatchesServed++
	s.LastServedMatchID = matchID
	if s.MatchesServed >= s.MatchesOwed {
		s.MatchesServed = s.MatchesOwed
		s.Active = false
		end := now
		s.EndDate = &end
	}
	return true
}

func (s Suspension) Clone() Suspension {
	out := s
	if s.EndDate != nil {
		v := *s.EndDate
		out.EndDate = &v
	}
	return out
}
