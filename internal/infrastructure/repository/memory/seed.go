package memory

import (
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
)

const TournamentIDLiga1 = "idn-liga-1-2026"

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "idn-persija", Name: "Persija Jakarta", Abbreviation: "PSJ"},
		{ID: "idn-persib", Name: "Persib Bandung", Abbreviation: "PSB"},
		{ID: "idn-persebaya", Name: "Persebaya Surabaya", Abbreviation: "PRB"},
		{ID: "idn-baliutd", Name: "Bali United", Abbreviation: "BU"},
		{ID: "idn-psm", Name: "PSM Makassar", Abbreviation: "PSM"},
		{ID: "idn-arema", Name: "Arema FC", Abbreviation: "ARE"},
	}
}

func SeedTournaments() []tournament.Tournament {
	return []tournament.Tournament{
		{ID: TournamentIDLiga1, Name: "Liga 1 Indonesia 2026", Active: true},
	}
}

// SeedStandings registers every seeded team in the seeded tournament.
func SeedStandings() []standing.Entry {
	teams := SeedTeams()
	out := make([]standing.Entry, 0, len(teams))
	for _, item := range teams {
		out = append(out, standing.Entry{TournamentID: TournamentIDLiga1, TeamID: item.ID})
	}
	return out
}
