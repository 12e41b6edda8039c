package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/domain/matchevent"
	"github.com/riskibarqy/league-live/internal/domain/standing"
	"github.com/riskibarqy/league-live/internal/domain/suspension"
	"github.com/riskibarqy/league-live/internal/domain/tournament"
	idgen "github.com/riskibarqy/league-live/internal/platform/id"
	"github.com/riskibarqy/league-live/internal/platform/keylock"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

// liveWindow is how far ahead ListLive looks for upcoming kickoffs.
const liveWindow = 24 * time.Hour

type standingRecomputer interface {
	Recompute(ctx context.Context, tournamentID string, teamIDs ...string) ([]standing.Entry, error)
}

type finishedMatchProcessor interface {
	ProcessFinishedMatch(ctx context.Context, m match.Match, events []matchevent.Event) ([]suspension.Suspension, error)
}

type RecordEventInput struct {
	// EventID is chosen by the recorder so retries are idempotent. Empty
	// means the server assigns one.
	EventID string
	Draft   matchevent.Draft
}

type RecordEventResult struct {
	Event     matchevent.Event
	Match     match.Match
	Duplicate bool
}

type CreateMatchInput struct {
	TournamentID string
	Matchday     int
	HomeTeamID   string
	AwayTeamID   string
	ScheduledAt  time.Time
	Venue        string
}

type UpdateScheduleInput struct {
	ScheduledAt time.Time
	Venue       *string
}

type FinishResult struct {
	Match       match.Match
	Suspensions []suspension.Suspension
}

// MatchService drives the match lifecycle. Every mutation of one match runs
// under that match's lock; different matches proceed in parallel.
type MatchService struct {
	tournamentRepo tournament.Repository
	matchRepo      match.Repository
	eventRepo      matchevent.Repository
	standingRepo   standing.Repository
	standings      standingRecomputer
	suspensions    finishedMatchProcessor
	notifier       Notifier
	idGen          idgen.Generator
	locks          *keylock.Locker
	logger         *logging.Logger
	now            func() time.Time
}

func NewMatchService(
	tournamentRepo tournament.Repository,
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	standingRepo standing.Repository,
	standings standingRecomputer,
	suspensions finishedMatchProcessor,
	idGen idgen.Generator,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		eventRepo:      eventRepo,
		standingRepo:   standingRepo,
		standings:      standings,
		suspensions:    suspensions,
		notifier:       NopNotifier{},
		idGen:          idGen,
		locks:          keylock.New(),
		logger:         logger,
		now:            time.Now,
	}
}

func (s *MatchService) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
}

func (s *MatchService) lock(ctx context.Context, matchID string) (func(), error) {
	unlock, err := s.locks.LockContext(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("lock match %s: %w", matchID, err)
	}
	return unlock, nil
}

func (s *MatchService) load(ctx context.Context, matchID string) (match.Match, error) {
	item, ok, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func normalizeMatchID(matchID string) (string, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return "", fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	return matchID, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}
	return s.load(ctx, matchID)
}

// ListEvents returns the match timeline in canonical order.
func (s *MatchService) ListEvents(ctx context.Context, matchID string) ([]matchevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListEvents", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, matchID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match events: %w", err)
	}
	matchevent.SortTimeline(events)
	return events, nil
}

// ListLive returns matches in play plus those kicking off within a day.
func (s *MatchService) ListLive(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListLive")
	defer span.End()

	inPlay, err := s.matchRepo.ListByStates(ctx, match.StateLive, match.StateHalfTime)
	if err != nil {
		return nil, fmt.Errorf("list matches in play: %w", err)
	}

	now := s.now().UTC()
	upcoming, err := s.matchRepo.ListScheduledBetween(ctx, now, now.Add(liveWindow))
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}

	out := make([]match.Match, 0, len(inPlay)+len(upcoming))
	out = append(out, inPlay...)
	for _, m := range upcoming {
		if m.State == match.StateScheduled {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListByTournament lists the tournament's matches; matchday 0 means all.
func (s *MatchService) ListByTournament(ctx context.Context, tournamentID string, matchday int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByTournament", tournamentAttr(tournamentID))
	defer span.End()

	if matchday < 0 {
		return nil, fmt.Errorf("%w: matchday must be >= 0", ErrInvalidInput)
	}
	t, err := getTournament(ctx, s.tournamentRepo, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	if matchday == 0 {
		return matches, nil
	}

	out := make([]match.Match, 0)
	for _, m := range matches {
		if m.Matchday == matchday {
			out = append(out, m)
		}
	}
	return out, nil
}

// CreateManual adds a single fixture outside the generated schedule.
func (s *MatchService) CreateManual(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateManual")
	defer span.End()

	t, err := getTournament(ctx, s.tournamentRepo, input.TournamentID)
	if err != nil {
		return match.Match{}, err
	}

	home := strings.TrimSpace(input.HomeTeamID)
	away := strings.TrimSpace(input.AwayTeamID)
	for _, teamID := range []string{home, away} {
		if teamID == "" {
			continue
		}
		_, ok, err := s.standingRepo.Get(ctx, t.ID, teamID)
		if err != nil {
			return match.Match{}, fmt.Errorf("get standing row: %w", err)
		}
		if !ok {
			return match.Match{}, fmt.Errorf("%w: team %s is not registered in tournament %s", ErrInvalidInput, teamID, t.ID)
		}
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}
	item := match.Match{
		ID:           id,
		TournamentID: t.ID,
		Matchday:     input.Matchday,
		HomeTeamID:   home,
		AwayTeamID:   away,
		ScheduledAt:  input.ScheduledAt.UTC(),
		Venue:        strings.TrimSpace(input.Venue),
		State:        match.StateScheduled,
		UpdatedAt:    s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	if input.Matchday > t.TotalMatchdays {
		t.TotalMatchdays = input.Matchday
		if err := s.tournamentRepo.Update(ctx, t); err != nil {
			s.logger.WarnContext(ctx, "update tournament matchday total failed", "tournament_id", t.ID, "error", err)
		}
	}

	return item, nil
}

// UpdateSchedule moves a fixture that has not kicked off yet.
func (s *MatchService) UpdateSchedule(ctx context.Context, matchID string, input UpdateScheduleInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateSchedule", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}
	if input.ScheduledAt.IsZero() && input.Venue == nil {
		return match.Match{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if m.State != match.StateScheduled {
		return match.Match{}, fmt.Errorf("%w: match is %s, only %s matches can be rescheduled", ErrInvalidTransition, m.State, match.StateScheduled)
	}

	if !input.ScheduledAt.IsZero() {
		m.ScheduledAt = input.ScheduledAt.UTC()
	}
	if input.Venue != nil {
		m.Venue = strings.TrimSpace(*input.Venue)
	}
	m.UpdatedAt = s.now().UTC()

	if err := s.matchRepo.Update(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	return m, nil
}

// Delete removes a scheduled match that has no recorded events.
func (s *MatchService) Delete(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return err
	}
	if m.State != match.StateScheduled {
		return fmt.Errorf("%w: match is %s, only %s matches can be deleted", ErrInvalidTransition, m.State, match.StateScheduled)
	}

	count, err := s.eventRepo.CountByMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("count match events: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: match %s has %d events", ErrConflict, matchID, count)
	}

	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

func (s *MatchService) Start(ctx context.Context, matchID, operatorID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Start", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return match.Match{}, fmt.Errorf("%w: operator id is required", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	next, err := match.Transition(m.State, match.ActionStart)
	if err != nil {
		return match.Match{}, err
	}

	m.State = next
	m.CurrentMinute = 0
	m.SetScore(0, 0)
	m.ScorekeeperID = operatorID
	m.UpdatedAt = s.now().UTC()
	if err := s.matchRepo.Update(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}

	s.logger.InfoContext(ctx, "match started", "match_id", m.ID, "operator_id", operatorID)
	s.notifier.MatchStarted(ctx, m.Clone())
	return m, nil
}

// RecordEvent appends one event to a match in play. A replayed event id
// returns the stored event with Duplicate set and changes nothing.
func (s *MatchService) RecordEvent(ctx context.Context, matchID string, input RecordEventInput) (RecordEventResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RecordEvent", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return RecordEventResult{}, err
	}
	if err := input.Draft.Validate(); err != nil {
		return RecordEventResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	eventID := strings.TrimSpace(input.EventID)

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return RecordEventResult{}, err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return RecordEventResult{}, err
	}

	if eventID != "" {
		existing, ok, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return RecordEventResult{}, fmt.Errorf("get event: %w", err)
		}
		if ok {
			if existing.MatchID != matchID {
				return RecordEventResult{}, fmt.Errorf("%w: event id %s belongs to another match", ErrInvalidInput, eventID)
			}
			return RecordEventResult{Event: existing, Match: m, Duplicate: true}, nil
		}
	}

	if _, err := match.Transition(m.State, match.ActionRecordEvent); err != nil {
		return RecordEventResult{}, err
	}
	if !m.Involves(strings.TrimSpace(input.Draft.TeamID)) {
		return RecordEventResult{}, fmt.Errorf("%w: team %s is not playing match %s", ErrInvalidInput, input.Draft.TeamID, matchID)
	}

	if eventID == "" {
		eventID, err = s.idGen.NewID()
		if err != nil {
			return RecordEventResult{}, fmt.Errorf("generate event id: %w", err)
		}
	}

	now := s.now().UTC()
	event := matchevent.FromDraft(eventID, matchID, input.Draft, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return RecordEventResult{}, fmt.Errorf("create event: %w", err)
	}

	if event.Type == matchevent.TypeGoal {
		if err := s.refoldScore(ctx, &m, now); err != nil {
			if delErr := s.eventRepo.Delete(ctx, event.ID); delErr != nil {
				s.logger.ErrorContext(ctx, "remove event after failed score update", "match_id", matchID, "event_id", event.ID, "error", delErr)
			}
			return RecordEventResult{}, err
		}
	}

	s.notifier.EventRecorded(ctx, m.Clone(), event)
	if event.Type == matchevent.TypeGoal {
		s.notifier.ScoreUpdated(ctx, m.Clone())
	}
	return RecordEventResult{Event: event, Match: m}, nil
}

func (s *MatchService) refoldScore(ctx context.Context, m *match.Match, now time.Time) error {
	events, err := s.eventRepo.ListByMatch(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("list match events: %w", err)
	}
	score := matchevent.Fold(events, m.HomeTeamID, m.AwayTeamID)

	next := m.Clone()
	next.SetScore(score.Home, score.Away)
	next.UpdatedAt = now
	if err := s.matchRepo.Update(ctx, next); err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	*m = next
	return nil
}

// AdvanceMinute moves the match clock forward. Values at or below the
// current minute are ignored.
func (s *MatchService) AdvanceMinute(ctx context.Context, matchID string, minute int) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.AdvanceMinute", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}
	if minute < 0 {
		return match.Match{}, fmt.Errorf("%w: minute must be >= 0", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if _, err := match.Transition(m.State, match.ActionAdvanceMinute); err != nil {
		return match.Match{}, err
	}
	if minute <= m.CurrentMinute {
		return m, nil
	}

	m.CurrentMinute = minute
	m.UpdatedAt = s.now().UTC()
	if err := s.matchRepo.Update(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("update match minute: %w", err)
	}

	s.notifier.MinuteUpdated(ctx, m.Clone())
	return m, nil
}

func (s *MatchService) MarkHalfTime(ctx context.Context, matchID string) (match.Match, error) {
	return s.apply(ctx, matchID, match.ActionHalfTime)
}

func (s *MatchService) Resume(ctx context.Context, matchID string) (match.Match, error) {
	return s.apply(ctx, matchID, match.ActionResume)
}

func (s *MatchService) Suspend(ctx context.Context, matchID string) (match.Match, error) {
	return s.apply(ctx, matchID, match.ActionSuspend)
}

func (s *MatchService) Cancel(ctx context.Context, matchID string) (match.Match, error) {
	return s.apply(ctx, matchID, match.ActionCancel)
}

// apply runs a transition that only changes the state column.
func (s *MatchService) apply(ctx context.Context, matchID string, action match.Action) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService."+string(action), matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return match.Match{}, err
	}

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	next, err := match.Transition(m.State, action)
	if err != nil {
		return match.Match{}, err
	}

	prev := m.State
	m.State = next
	m.UpdatedAt = s.now().UTC()
	if err := s.matchRepo.Update(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("update match state: %w", err)
	}

	s.logger.InfoContext(ctx, "match state changed", "match_id", m.ID, "from", prev, "to", next)
	return m, nil
}

// Finish closes the match, refreshes both teams' standings and applies
// suspensions. If any of that fails the match row is put back.
func (s *MatchService) Finish(ctx context.Context, matchID string) (FinishResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Finish", matchAttr(matchID))
	defer span.End()

	matchID, err := normalizeMatchID(matchID)
	if err != nil {
		return FinishResult{}, err
	}

	unlock, err := s.lock(ctx, matchID)
	if err != nil {
		return FinishResult{}, err
	}
	defer unlock()

	m, err := s.load(ctx, matchID)
	if err != nil {
		return FinishResult{}, err
	}
	next, err := match.Transition(m.State, match.ActionFinish)
	if err != nil {
		return FinishResult{}, err
	}

	events, err := s.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return FinishResult{}, fmt.Errorf("list match events: %w", err)
	}
	score := matchevent.Fold(events, m.HomeTeamID, m.AwayTeamID)

	prev := m.Clone()
	m.State = next
	m.SetScore(score.Home, score.Away)
	m.UpdatedAt = s.now().UTC()
	if err := s.matchRepo.Update(ctx, m); err != nil {
		return FinishResult{}, fmt.Errorf("update match: %w", err)
	}

	if _, err := s.standings.Recompute(ctx, m.TournamentID, m.HomeTeamID, m.AwayTeamID); err != nil {
		s.restore(ctx, prev)
		return FinishResult{}, fmt.Errorf("recompute standings: %w", err)
	}

	created, err := s.suspensions.ProcessFinishedMatch(ctx, m.Clone(), events)
	if err != nil {
		s.restore(ctx, prev)
		return FinishResult{}, fmt.Errorf("process suspensions: %w", err)
	}

	s.logger.InfoContext(ctx, "match finished",
		"match_id", m.ID,
		"goals_home", score.Home,
		"goals_away", score.Away,
		"suspensions", len(created),
	)
	s.notifier.MatchFinished(ctx, m.Clone())
	return FinishResult{Match: m, Suspensions: created}, nil
}

// restore writes back the pre-finish row and rebuilds standings from it.
func (s *MatchService) restore(ctx context.Context, prev match.Match) {
	ctx = context.WithoutCancel(ctx)
	if err := s.matchRepo.Update(ctx, prev); err != nil {
		s.logger.ErrorContext(ctx, "restore match after failed finish", "match_id", prev.ID, "error", err)
		return
	}
	if _, err := s.standings.Recompute(ctx, prev.TournamentID, prev.HomeTeamID, prev.AwayTeamID); err != nil {
		s.logger.ErrorContext(ctx, "recompute standings after failed finish", "match_id", prev.ID, "error", err)
	}
}
