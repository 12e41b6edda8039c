package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	"github.com/riskibarqy/league-live/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/league-live/internal/mocks/domain/match"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

var seasonStart = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func assertNoTeamTwicePerDay(t *testing.T, matches []match.Match) {
	t.Helper()

	busy := make(map[string]string)
	for _, m := range matches {
		day := m.ScheduledAt.Format(dayLayout)
		for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
			key := teamID + "@" + day
			if other, ok := busy[key]; ok {
				t.Fatalf("team %s plays twice on %s: %s and %s", teamID, day, other, m.ID)
			}
			busy[key] = m.ID
		}
	}
}

func TestFixtureScheduler_Generate_FourTeamsSingleRound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tournamentID, teams := env.seedTournament(t, 4)

	got, err := env.schedulerSvc.Generate(context.Background(), GenerateFixtureInput{
		TournamentID: tournamentID,
		StartDate:    seasonStart,
		TimeSlots:    []time.Duration{15 * time.Hour, 19 * time.Hour},
		MinGapDays:   7,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("unexpected match count: got=%d want=6", len(got))
	}

	perTeam := make(map[string]int)
	matchdays := make(map[int]int)
	pairs := make(map[[2]string]int)
	for _, m := range got {
		if m.State != match.StateScheduled || m.GoalsHome != nil {
			t.Fatalf("generated match not pristine: %+v", m)
		}
		perTeam[m.HomeTeamID]++
		perTeam[m.AwayTeamID]++
		matchdays[m.Matchday]++
		a, b := m.HomeTeamID, m.AwayTeamID
		if a > b {
			a, b = b, a
		}
		pairs[[2]string{a, b}]++
	}
	for _, teamID := range teams {
		if perTeam[teamID] != 3 {
			t.Fatalf("unexpected appearances for %s: got=%d want=3", teamID, perTeam[teamID])
		}
	}
	if len(matchdays) != 3 {
		t.Fatalf("unexpected matchday count: got=%d want=3", len(matchdays))
	}
	for md, n := range matchdays {
		if n != 2 {
			t.Fatalf("unexpected matches on matchday %d: got=%d want=2", md, n)
		}
	}
	if len(pairs) != 6 {
		t.Fatalf("expected every pairing once, got %d distinct pairings", len(pairs))
	}
	assertNoTeamTwicePerDay(t, got)

	stored, _ := env.matches.CountByTournament(context.Background(), tournamentID)
	if stored != 6 {
		t.Fatalf("unexpected stored count: got=%d want=6", stored)
	}
	tour, _, _ := env.tournaments.GetByID(context.Background(), tournamentID)
	if tour.TotalMatchdays != 3 {
		t.Fatalf("unexpected total matchdays: got=%d want=3", tour.TotalMatchdays)
	}
}

func TestFixtureScheduler_Generate_DoubleRoundOddTeams(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tournamentID, _ := env.seedTournament(t, 5)

	got, err := env.schedulerSvc.Generate(context.Background(), GenerateFixtureInput{
		TournamentID:     tournamentID,
		StartDate:        seasonStart,
		TimeSlots:        []time.Duration{18 * time.Hour},
		MinGapDays:       3,
		DoubleRoundRobin: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("unexpected match count: got=%d want=20", len(got))
	}

	ordered := make(map[[2]string]int)
	maxMatchday := 0
	for _, m := range got {
		ordered[[2]string{m.HomeTeamID, m.AwayTeamID}]++
		if m.Matchday > maxMatchday {
			maxMatchday = m.Matchday
		}
		if m.ScheduledAt.Hour() != 18 {
			t.Fatalf("unexpected kickoff hour: %s", m.ScheduledAt)
		}
	}
	if len(ordered) != 20 {
		t.Fatalf("expected each ordered pairing once, got %d", len(ordered))
	}
	for pair, n := range ordered {
		if n != 1 {
			t.Fatalf("pairing %v scheduled %d times", pair, n)
		}
	}
	if maxMatchday != 10 {
		t.Fatalf("unexpected matchday count: got=%d want=10", maxMatchday)
	}
	assertNoTeamTwicePerDay(t, got)
}

func TestFixtureScheduler_Generate_ZeroGapShiftsConflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tournamentID, _ := env.seedTournament(t, 4)

	got, err := env.schedulerSvc.Generate(context.Background(), GenerateFixtureInput{
		TournamentID: tournamentID,
		StartDate:    seasonStart,
		TimeSlots:    []time.Duration{20 * time.Hour},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	assertNoTeamTwicePerDay(t, got)

	last := got[len(got)-1].ScheduledAt
	if !last.After(seasonStart.Add(24 * time.Hour)) {
		t.Fatalf("expected later matchdays to shift forward, last kickoff %s", last)
	}
}

func TestFixtureScheduler_Generate_AvoidsOtherTournamentDays(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tournamentID, teams := env.seedTournament(t, 2)

	busy := match.Match{
		ID:           "cup-1",
		TournamentID: "other-cup",
		Matchday:     1,
		HomeTeamID:   teams[0],
		AwayTeamID:   "outsider",
		ScheduledAt:  seasonStart.Add(20 * time.Hour),
		State:        match.StateScheduled,
	}
	if err := env.matches.Create(context.Background(), busy); err != nil {
		t.Fatalf("seed other tournament match: %v", err)
	}

	got, err := env.schedulerSvc.Generate(context.Background(), GenerateFixtureInput{
		TournamentID: tournamentID,
		StartDate:    seasonStart,
		TimeSlots:    []time.Duration{15 * time.Hour},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected match count: got=%d want=1", len(got))
	}
	want := seasonStart.AddDate(0, 0, 1).Add(15 * time.Hour)
	if !got[0].ScheduledAt.Equal(want) {
		t.Fatalf("unexpected kickoff: got=%s want=%s", got[0].ScheduledAt, want)
	}
}

func TestFixtureScheduler_Generate_SeedIsReproducible(t *testing.T) {
	t.Parallel()

	seed := int64(42)
	slots := []time.Duration{12 * time.Hour, 15 * time.Hour, 18 * time.Hour, 21 * time.Hour}
	run := func() []match.Match {
		env := newTestEnv(t)
		tournamentID, _ := env.seedTournament(t, 6)
		got, err := env.schedulerSvc.Generate(context.Background(), GenerateFixtureInput{
			TournamentID: tournamentID,
			StartDate:    seasonStart,
			TimeSlots:    slots,
			MinGapDays:   7,
			Seed:         &seed,
		})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		return got
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].ScheduledAt.Equal(b[i].ScheduledAt) || a[i].HomeTeamID != b[i].HomeTeamID {
			t.Fatalf("run differs at %d: %s %s vs %s %s", i, a[i].HomeTeamID, a[i].ScheduledAt, b[i].HomeTeamID, b[i].ScheduledAt)
		}
	}
}

func TestFixtureScheduler_Generate_AlreadyScheduled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tournamentID, _ := env.seedTournament(t, 4)
	input := GenerateFixtureInput{
		TournamentID: tournamentID,
		StartDate:    seasonStart,
		TimeSlots:    []time.Duration{15 * time.Hour},
		MinGapDays:   7,
	}
	if _, err := env.schedulerSvc.Generate(context.Background(), input); err != nil {
		t.Fatalf("first generate: %v", err)
	}

	_, err := env.schedulerSvc.Generate(context.Background(), input)
	if !errors.Is(err, ErrAlreadyScheduled) {
		t.Fatalf("expected ErrAlreadyScheduled, got %v", err)
	}
	stored, _ := env.matches.CountByTournament(context.Background(), tournamentID)
	if stored != 6 {
		t.Fatalf("second run changed stored matches: got=%d want=6", stored)
	}
}

func TestFixtureScheduler_Generate_ValidationErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tournamentID, _ := env.seedTournament(t, 4)
	lonelyID, _ := env.seedTournament(t, 0)

	cases := []struct {
		name  string
		input GenerateFixtureInput
		want  error
	}{
		{"no slots", GenerateFixtureInput{TournamentID: tournamentID, StartDate: seasonStart}, ErrInvalidInput},
		{"slot outside day", GenerateFixtureInput{TournamentID: tournamentID, StartDate: seasonStart, TimeSlots: []time.Duration{24 * time.Hour}}, ErrInvalidInput},
		{"negative gap", GenerateFixtureInput{TournamentID: tournamentID, StartDate: seasonStart, TimeSlots: []time.Duration{time.Hour}, MinGapDays: -1}, ErrInvalidInput},
		{"too few teams", GenerateFixtureInput{TournamentID: lonelyID, StartDate: seasonStart, TimeSlots: []time.Duration{time.Hour}}, ErrInvalidInput},
		{"unknown tournament", GenerateFixtureInput{TournamentID: "nope", StartDate: seasonStart, TimeSlots: []time.Duration{time.Hour}}, ErrNotFound},
	}
	for _, tc := range cases {
		_, err := env.schedulerSvc.Generate(context.Background(), tc.input)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestFixtureScheduler_Generate_ExhaustedWritesNothingUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tournaments := memory.NewTournamentRepository([]tournament.Tournament{{ID: "t-1", Name: "Cup", Active: true}})
	standings := memory.NewStandingRepository()
	_ = standings.Upsert(ctx,
		standing.Entry{TournamentID: "t-1", TeamID: "a"},
		standing.Entry{TournamentID: "t-1", TeamID: "b"},
	)
	matchRepo := matchmock.NewRepository(t)

	matchRepo.
		On("CountByTournament", mock.Anything, "t-1").
		Return(0, nil).
		Once()
	matchRepo.
		On("ListByTeamBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]match.Match{{ID: "elsewhere"}}, nil)

	svc := NewFixtureSchedulerService(tournaments, standings, matchRepo, idgen.NewSequenceGenerator("m"), logging.NewNop())
	_, err := svc.Generate(ctx, GenerateFixtureInput{
		TournamentID: "t-1",
		StartDate:    seasonStart,
		TimeSlots:    []time.Duration{15 * time.Hour},
	})
	if !errors.Is(err, ErrSchedulingExhausted) {
		t.Fatalf("expected ErrSchedulingExhausted, got %v", err)
	}
	matchRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestCircleRounds_EveryTeamOncePerRound(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 9; n++ {
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			ids = append(ids, string(rune('a'+i)))
		}
		rounds := circleRounds(ids)

		wantRounds := n - 1
		if n%2 == 1 {
			wantRounds = n
		}
		if len(rounds) != wantRounds {
			t.Fatalf("n=%d: unexpected rounds: got=%d want=%d", n, len(rounds), wantRounds)
		}

		total := 0
		for r, round := range rounds {
			seen := make(map[string]bool)
			for _, p := range round {
				if seen[p.home] || seen[p.away] {
					t.Fatalf("n=%d round %d: team appears twice", n, r)
				}
				seen[p.home], seen[p.away] = true, true
			}
			total += len(round)
		}
		if total != n*(n-1)/2 {
			t.Fatalf("n=%d: unexpected pairings: got=%d want=%d", n, total, n*(n-1)/2)
		}
	}
}

// slowCountRepo widens the window between the "already scheduled" check and
// the batch insert.
type slowCountRepo struct {
	match.Repository
	delay time.Duration
}

func (r *slowCountRepo) CountByTournament(ctx context.Context, tournamentID string) (int, error) {
	time.Sleep(r.delay)
	return r.Repository.CountByTournament(ctx, tournamentID)
}

func TestFixtureScheduler_Generate_ConcurrentCallsScheduleOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wire(&slowCountRepo{Repository: env.matches, delay: 20 * time.Millisecond})
	tournamentID, _ := env.seedTournament(t, 8)

	const callers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.schedulerSvc.Generate(context.Background(), GenerateFixtureInput{
				TournamentID:     tournamentID,
				StartDate:        seasonStart,
				TimeSlots:        []time.Duration{18 * time.Hour},
				MinGapDays:       7,
				DoubleRoundRobin: true,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyScheduled):
				rejected++
			default:
				t.Errorf("unexpected generate error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || rejected != callers-1 {
		t.Fatalf("unexpected outcome: got succeeded=%d rejected=%d want=1/%d", succeeded, rejected, callers-1)
	}
	stored, err := env.matches.CountByTournament(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("count matches: %v", err)
	}
	if stored != 56 {
		t.Fatalf("unexpected stored matches: got=%d want=56", stored)
	}
}
