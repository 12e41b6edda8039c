package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/keylock"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

// maxConflictShifts bounds how many days a fixture may slide forward
// before the scheduler gives up.
const maxConflictShifts = 365

const dayLayout = "2006-01-02"

type GenerateFixtureInput struct {
	TournamentID     string
	StartDate        time.Time
	TimeSlots        []time.Duration
	MinGapDays       int
	DoubleRoundRobin bool
	// Seed makes slot choice reproducible; nil cycles through TimeSlots.
	Seed *int64
}

type FixtureSchedulerService struct {
	tournamentRepo tournament.Repository
	standingRepo   standing.Repository
	matchRepo      match.Repository
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
	// locks serializes Generate per tournament so the "no matches yet"
	// check and the batch insert cannot interleave.
	locks *keylock.Locker
}

func NewFixtureSchedulerService(
	tournamentRepo tournament.Repository,
	standingRepo standing.Repository,
	matchRepo match.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *FixtureSchedulerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &FixtureSchedulerService{
		tournamentRepo: tournamentRepo,
		standingRepo:   standingRepo,
		matchRepo:      matchRepo,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
		locks:          keylock.New(),
	}
}

// Generate plans a round robin for every team on the tournament roster and
// stores it in one batch. Nothing is written unless every fixture found a
// date.
func (s *FixtureSchedulerService) Generate(ctx context.Context, input GenerateFixtureInput) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSchedulerService.Generate", tournamentAttr(input.TournamentID))
	defer span.End()

	if err := validateGenerateInput(input); err != nil {
		return nil, err
	}

	unlock, err := s.locks.LockContext(ctx, strings.TrimSpace(input.TournamentID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, err := getTournament(ctx, s.tournamentRepo, input.TournamentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.CountByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("count tournament matches: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: tournament=%s has %d matches", ErrAlreadyScheduled, t.ID, existing)
	}

	teamIDs, err := roster(ctx, s.standingRepo, t.ID)
	if err != nil {
		return nil, err
	}
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: at least 2 teams are required, got %d", ErrInvalidInput, len(teamIDs))
	}

	rounds := circleRounds(teamIDs)
	if input.DoubleRoundRobin {
		rounds = append(rounds, returnLeg(rounds)...)
	}

	planner := newDayPlanner(s.matchRepo)
	picker := newSlotPicker(input.TimeSlots, input.Seed)
	startDay := truncateDay(input.StartDate)
	now := s.now().UTC()

	planned := make([]match.Match, 0, len(rounds)*len(rounds[0]))
	for k, round := range rounds {
		base := startDay.AddDate(0, 0, k*input.MinGapDays)
		for _, p := range round {
			day, err := planner.place(ctx, p, base)
			if err != nil {
				return nil, err
			}

			id, err := s.idGen.NewID()
			if err != nil {
				return nil, fmt.Errorf("generate match id: %w", err)
			}
			planned = append(planned, match.Match{
				ID:           id,
				TournamentID: t.ID,
				Matchday:     k + 1,
				HomeTeamID:   p.home,
				AwayTeamID:   p.away,
				ScheduledAt:  day.Add(picker.pick()),
				State:        match.StateScheduled,
				UpdatedAt:    now,
			})
		}
	}

	if err := s.matchRepo.CreateBatch(ctx, planned); err != nil {
		return nil, fmt.Errorf("store fixtures: %w", err)
	}

	t.TotalMatchdays = len(rounds)
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		// Fixtures are already stored; the matchday total is informational.
		s.logger.WarnContext(ctx, "update tournament matchday total failed", "tournament_id", t.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "fixtures generated",
		"tournament_id", t.ID,
		"teams", len(teamIDs),
		"matchdays", len(rounds),
		"matches", len(planned),
	)
	return planned, nil
}

func validateGenerateInput(input GenerateFixtureInput) error {
	if strings.TrimSpace(input.TournamentID) == "" {
		return fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if input.MinGapDays < 0 {
		return fmt.Errorf("%w: min gap days must be >= 0", ErrInvalidInput)
	}
	if len(input.TimeSlots) == 0 {
		return fmt.Errorf("%w: at least one time slot is required", ErrInvalidInput)
	}
	for _, slot := range input.TimeSlots {
		if slot < 0 || slot >= 24*time.Hour {
			return fmt.Errorf("%w: time slot %s is outside the day", ErrInvalidInput, slot)
		}
	}
	return nil
}

type pairing struct {
	home string
	away string
}

// circleRounds keeps the first team fixed and rotates the rest. An odd
// roster gets a bye; its pairings are dropped but the round is kept.
func circleRounds(teamIDs []string) [][]pairing {
	ids := append([]string(nil), teamIDs...)
	if len(ids)%2 == 1 {
		ids = append(ids, "")
	}
	n := len(ids)
	ring := n - 1

	rounds := make([][]pairing, 0, ring)
	for r := 0; r < ring; r++ {
		round := make([]pairing, 0, n/2)

		home, away := ids[0], ids[1+r%ring]
		if r%2 == 1 {
			home, away = away, home
		}
		round = appendPairing(round, home, away)

		for i := 1; i < n/2; i++ {
			round = appendPairing(round, ids[1+(r+i)%ring], ids[1+(r-i+ring)%ring])
		}
		rounds = append(rounds, round)
	}
	return rounds
}

func appendPairing(round []pairing, home, away string) []pairing {
	if home == "" || away == "" {
		return round
	}
	return append(round, pairing{home: home, away: away})
}

func returnLeg(rounds [][]pairing) [][]pairing {
	out := make([][]pairing, 0, len(rounds))
	for _, round := range rounds {
		swapped := make([]pairing, 0, len(round))
		for _, p := range round {
			swapped = append(swapped, pairing{home: p.away, away: p.home})
		}
		out = append(out, swapped)
	}
	return out
}

type slotPicker struct {
	slots []time.Duration
	rng   *rand.Rand
	next  int
}

func newSlotPicker(slots []time.Duration, seed *int64) *slotPicker {
	p := &slotPicker{slots: slots}
	if seed != nil {
		p.rng = rand.New(rand.NewPCG(uint64(*seed), uint64(*seed)>>1|1))
	}
	return p
}

func (p *slotPicker) pick() time.Duration {
	if p.rng != nil {
		return p.slots[p.rng.IntN(len(p.slots))]
	}
	slot := p.slots[p.next%len(p.slots)]
	p.next++
	return slot
}

// dayPlanner tracks which calendar days each team is busy, both from this
// run's plan and from matches already stored for other tournaments.
type dayPlanner struct {
	matchRepo match.Repository
	planned   map[string]map[string]struct{}
	stored    map[string]map[string]bool
}

func newDayPlanner(matchRepo match.Repository) *dayPlanner {
	return &dayPlanner{
		matchRepo: matchRepo,
		planned:   make(map[string]map[string]struct{}),
		stored:    make(map[string]map[string]bool),
	}
}

// place finds the first free day at or after base for both teams and
// reserves it.
func (d *dayPlanner) place(ctx context.Context, p pairing, base time.Time) (time.Time, error) {
	for shift := 0; shift <= maxConflictShifts; shift++ {
		day := base.AddDate(0, 0, shift)

		homeFree, err := d.free(ctx, p.home, day)
		if err != nil {
			return time.Time{}, err
		}
		if !homeFree {
			continue
		}
		awayFree, err := d.free(ctx, p.away, day)
		if err != nil {
			return time.Time{}, err
		}
		if !awayFree {
			continue
		}

		d.reserve(p.home, day)
		d.reserve(p.away, day)
		return day, nil
	}

	return time.Time{}, fmt.Errorf("%w: no free day for %s vs %s within %d days of %s",
		ErrSchedulingExhausted, p.home, p.away, maxConflictShifts, base.Format(dayLayout))
}

func (d *dayPlanner) free(ctx context.Context, teamID string, day time.Time) (bool, error) {
	key := day.Format(dayLayout)
	if _, busy := d.planned[teamID][key]; busy {
		return false, nil
	}

	byDay, ok := d.stored[teamID]
	if !ok {
		byDay = make(map[string]bool)
		d.stored[teamID] = byDay
	}
	busy, checked := byDay[key]
	if !checked {
		matches, err := d.matchRepo.ListByTeamBetween(ctx, teamID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return false, fmt.Errorf("list matches of team %s on %s: %w", teamID, key, err)
		}
		busy = len(matches) > 0
		byDay[key] = busy
	}
	return !busy, nil
}

func (d *dayPlanner) reserve(teamID string, day time.Time) {
	byDay, ok := d.planned[teamID]
	if !ok {
		byDay = make(map[string]struct{})
		d.planned[teamID] = byDay
	}
	byDay[day.Format(dayLayout)] = struct{}{}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
