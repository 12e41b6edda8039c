package matchevent

import "sort"

type Score struct {
	Home int
	Away int
}

// Fold derives the score from the goal events of a match. Events sharing
// an id count once, so replays never double count.
func Fold(events []Event, homeTeamID, awayTeamID string) Score {
	var out Score
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.Type != TypeGoal {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}

		switch e.TeamID {
		case homeTeamID:
			out.Home++
		case awayTeamID:
			out.Away++
		}
	}
	return out
}

// SortTimeline orders events by (minute, createdAt, id) in place.
func SortTimeline(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Minute != b.Minute {
			return a.Minute < b.Minute
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// PlayerCards is the card tally of one player within an event slice.
type PlayerCards struct {
	PlayerID string
	TeamID   string
	Yellow   int
	Red      int
}

// CardsByPlayer tallies cards per player in timeline order of first card.
func CardsByPlayer(events []Event) []PlayerCards {
	ordered := append([]Event(nil), events...)
	SortTimeline(ordered)

	index := make(map[string]int)
	out := make([]PlayerCards, 0)
	for _, e := range ordered {
		if !e.Type.IsCard() || e.PlayerID == "" {
			continue
		}
		i, ok := index[e.PlayerID]
		if !ok {
			i = len(out)
			index[e.PlayerID] = i
			out = append(out, PlayerCards{PlayerID: e.PlayerID, TeamID: e.TeamID})
		}
		if e.Type == TypeRedCard {
			out[i].Red++
		} else {
			out[i].Yellow++
		}
	}
	return out
}

// ScorerTally counts goals and assists for one player.
type ScorerTally struct {
	PlayerID string
	TeamID   string
	Goals    int
	Assists  int
}

// TallyScorers ranks players by goals, then assists, then player id.
func TallyScorers(events []Event) []ScorerTally {
	byPlayer := make(map[string]*ScorerTally)
	get := func(playerID, teamID string) *ScorerTally {
		t, ok := byPlayer[playerID]
		if !ok {
			t = &ScorerTally{PlayerID: playerID, TeamID: teamID}
			byPlayer[playerID] = t
		}
		return t
	}

	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.Type != TypeGoal {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if e.PlayerID != "" {
			get(e.PlayerID, e.TeamID).Goals++
		}
		if e.AssistingPlayerID != "" {
			get(e.AssistingPlayerID, e.TeamID).Assists++
		}
	}

	out := make([]ScorerTally, 0, len(byPlayer))
	for _, t := range byPlayer {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		if out[i].Assists != out[j].Assists {
			return out[i].Assists > out[j].Assists
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
