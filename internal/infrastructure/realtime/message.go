package realtime

import (
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
)

const (
	TopicLive        = "live"
	matchTopicPrefix = "match:"
)

const (
	TypeMatchStarted  = "MatchStarted"
	TypeEventRecorded = "EventRecorded"
	TypeScoreUpdated  = "ScoreUpdated"
	TypeMinuteUpdated = "MinuteUpdated"
	TypeMatchFinished = "MatchFinished"

	TypeJoined = "Joined"
	TypeLeft   = "Left"
	TypeError  = "Error"
)

func MatchTopic(matchID string) string {
	return matchTopicPrefix + matchID
}

// ValidTopic accepts "live" and "match:{id}" with a non-empty id.
func ValidTopic(topic string) bool {
	if topic == TopicLive {
		return true
	}
	id, ok := strings.CutPrefix(topic, matchTopicPrefix)
	return ok && strings.TrimSpace(id) != ""
}

// Envelope is one frame on the socket. Seq counts match notifications per
// match starting at 1, so a client can spot gaps; acks carry none.
type Envelope struct {
	Type   string    `json:"type"`
	Topic  string    `json:"topic"`
	Seq    uint64    `json:"seq,omitempty"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sentAt"`
}

// Command is what subscribers send over the socket.
type Command struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

type MatchRef struct {
	MatchID string `json:"matchId"`
}

type EventPayload struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Minute            int       `json:"minute"`
	TeamID            string    `json:"teamId"`
	PlayerID          string    `json:"playerId,omitempty"`
	AssistingPlayerID string    `json:"assistingPlayerId,omitempty"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type EventRecordedData struct {
	MatchID string       `json:"matchId"`
	Event   EventPayload `json:"event"`
}

type ScoreUpdatedData struct {
	MatchID   string `json:"matchId"`
	GoalsHome int    `json:"goalsHome"`
	GoalsAway int    `json:"goalsAway"`
}

type MinuteUpdatedData struct {
	MatchID string `json:"matchId"`
	Minute  int    `json:"minute"`
}

func eventPayload(e matchevent.Event) EventPayload {
	return EventPayload{
		ID:                e.ID,
		Type:              string(e.Type),
		Minute:            e.Minute,
		TeamID:            e.TeamID,
		PlayerID:          e.PlayerID,
		AssistingPlayerID: e.AssistingPlayerID,
		Note:              e.Note,
		CreatedAt:         e.CreatedAt.UTC(),
	}
}

func encode(env Envelope) ([]byte, error) {
	raw, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", env.Type, err)
	}
	return raw, nil
}
