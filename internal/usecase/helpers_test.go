package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/domain/team"
	"github.com/riskibarqy/league-live/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) add(kind string, m match.Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, kind+":"+m.ID)
}

func (n *recordingNotifier) MatchStarted(_ context.Context, m match.Match) { n.add("started", m) }
func (n *recordingNotifier) EventRecorded(_ context.Context, m match.Match, _ matchevent.Event) {
	n.add("event", m)
}
func (n *recordingNotifier) ScoreUpdated(_ context.Context, m match.Match)  { n.add("score", m) }
func (n *recordingNotifier) MinuteUpdated(_ context.Context, m match.Match) { n.add("minute", m) }
func (n *recordingNotifier) MatchFinished(_ context.Context, m match.Match) { n.add("finished", m) }

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := 0
	for _, c := range n.calls {
		if len(c) > len(kind) && c[:len(kind)+1] == kind+":" {
			total++
		}
	}
	return total
}

type testEnv struct {
	tournaments *memory.TournamentRepository
	teams       *memory.TeamRepository
	matches     *memory.MatchRepository
	events      *memory.EventRepository
	standings   *memory.StandingRepository
	suspensions *memory.SuspensionRepository

	tournamentSvc *TournamentService
	schedulerSvc  *FixtureSchedulerService
	standingSvc   *StandingService
	suspensionSvc *SuspensionService
	matchSvc      *MatchService
	notifier      *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tournaments: memory.NewTournamentRepository(nil),
		teams:       memory.NewTeamRepository(nil),
		matches:     memory.NewMatchRepository(),
		events:      memory.NewEventRepository(),
		standings:   memory.NewStandingRepository(),
		suspensions: memory.NewSuspensionRepository(),
		notifier:    &recordingNotifier{},
	}
	env.wire(env.matches)
	return env
}

// wire builds the services on top of matchRepo so tests can swap in a
// failing match store.
func (e *testEnv) wire(matchRepo match.Repository) {
	logger := logging.NewNop()
	now := func() time.Time { return testNow }

	e.tournamentSvc = NewTournamentService(e.tournaments, e.teams, e.standings, idgen.NewSequenceGenerator("id"), logger)
	e.tournamentSvc.now = now

	e.schedulerSvc = NewFixtureSchedulerService(e.tournaments, e.standings, matchRepo, idgen.NewSequenceGenerator("m"), logger)
	e.schedulerSvc.now = now

	e.standingSvc = NewStandingService(e.tournaments, matchRepo, e.events, e.standings, logger)
	e.standingSvc.now = now

	e.suspensionSvc = NewSuspensionService(e.suspensions, matchRepo, e.events, e.standings, idgen.NewSequenceGenerator("s"), logger)
	e.suspensionSvc.now = now

	e.matchSvc = NewMatchService(e.tournaments, matchRepo, e.events, e.standings, e.standingSvc, e.suspensionSvc, idgen.NewSequenceGenerator("ev"), logger)
	e.matchSvc.now = now
	e.matchSvc.SetNotifier(e.notifier)
}

// seedTournament creates a tournament with n registered teams team-1..team-n.
func (e *testEnv) seedTournament(t *testing.T, n int) (string, []string) {
	t.Helper()
	ctx := context.Background()

	tour, err := e.tournamentSvc.Create(ctx, CreateTournamentInput{Name: "Test Cup"})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("team-%d", i)
		if err := e.teams.Create(ctx, team.Team{ID: id, Name: fmt.Sprintf("Team %d", i)}); err != nil {
			t.Fatalf("create team: %v", err)
		}
		ids = append(ids, id)
	}
	if n > 0 {
		if _, err := e.tournamentSvc.RegisterTeams(ctx, tour.ID, ids); err != nil {
			t.Fatalf("register teams: %v", err)
		}
	}
	return tour.ID, ids
}

// seedMatch creates one scheduled match between home and away.
func (e *testEnv) seedMatch(t *testing.T, tournamentID, home, away string, matchday int) match.Match {
	t.Helper()

	m, err := e.matchSvc.CreateManual(context.Background(), CreateMatchInput{
		TournamentID: tournamentID,
		Matchday:     matchday,
		HomeTeamID:   home,
		AwayTeamID:   away,
		ScheduledAt:  testNow.Add(time.Duration(matchday) * time.Hour),
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

func (e *testEnv) startMatch(t *testing.T, matchID string) {
	t.Helper()
	if _, err := e.matchSvc.Start(context.Background(), matchID, "operator-1"); err != nil {
		t.Fatalf("start match %s: %v", matchID, err)
	}
}

func (e *testEnv) record(t *testing.T, matchID, eventID string, d matchevent.Draft) RecordEventResult {
	t.Helper()
	res, err := e.matchSvc.RecordEvent(context.Background(), matchID, RecordEventInput{EventID: eventID, Draft: d})
	if err != nil {
		t.Fatalf("record event on %s: %v", matchID, err)
	}
	return res
}

func (e *testEnv) finish(t *testing.T, matchID string) FinishResult {
	t.Helper()
	res, err := e.matchSvc.Finish(context.Background(), matchID)
	if err != nil {
		t.Fatalf("finish match %s: %v", matchID, err)
	}
	return res
}
