package matchevent

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeGoal         Type = "goal"
	TypeYellowCard   Type = "yellow_card"
	TypeRedCard      Type = "red_card"
	TypeSubstitution Type = "substitution"
)

func (t Type) Valid() bool {
	switch t {
	case TypeGoal, TypeYellowCard, TypeRedCard, TypeSubstitution:
		return true
	default:
		return false
	}
}

func (t Type) IsCard() bool {
	return t == TypeYellowCard || t == TypeRedCard
}

// Draft is an event as recorded in the field, before the server accepts it.
type Draft struct {
	Type              Type   `json:"type"`
	Minute            int    `json:"minute"`
	TeamID            string `json:"team_id"`
	PlayerID          string `json:"player_id,omitempty"`
	AssistingPlayerID string `json:"assisting_player_id,omitempty"`
	Note              string `json:"note,omitempty"`
}

func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("unknown event type %q", d.Type)
	}
	if d.Minute < 0 {
		return fmt.Errorf("event minute must be >= 0")
	}
	if strings.TrimSpace(d.TeamID) == "" {
		return fmt.Errorf("event team id is required")
	}
	if d.AssistingPlayerID != "" && d.Type != TypeGoal {
		return fmt.Errorf("assisting player is only allowed on goals")
	}
	if d.AssistingPlayerID != "" && d.AssistingPlayerID == d.PlayerID {
		return fmt.Errorf("assisting player must differ from scorer")
	}
	if d.Type.IsCard() && strings.TrimSpace(d.PlayerID) == "" {
		return fmt.Errorf("cards require a player id")
	}

	return nil
}

// Event is an accepted, append-only entry in a match timeline.
type Event struct {
	ID                string
	MatchID           string
	Type              Type
	Minute            int
	TeamID            string
	PlayerID          string
	AssistingPlayerID string
	Note              string
	CreatedAt         time.Time
}

func FromDraft(id, matchID string, d Draft, createdAt time.Time) Event {
	return Event{
		ID:                id,
		MatchID:           matchID,
		Type:              d.Type,
		Minute:            d.Minute,
		TeamID:            strings.TrimSpace(d.TeamID),
		PlayerID:          strings.TrimSpace(d.PlayerID),
		AssistingPlayerID: strings.TrimSpace(d.AssistingPlayerID),
		Note:              strings.TrimSpace(d.Note),
		CreatedAt:         createdAt,
	}
}

func (e Event) Draft() Draft {
	return Draft{
		Type:              e.Type,
		Minute:            e.Minute,
		TeamID:            e.TeamID,
		PlayerID:          e.PlayerID,
		AssistingPlayerID: e.AssistingPlayerID,
		Note:              e.Note,
	}
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(e.MatchID) == "" {
		return fmt.Errorf("event match id is required")
	}
	return e.Draft().Validate()
}
