package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/league-live/internal/domain/matchevent"
)

type EventRepository struct {
	mu      sync.RWMutex
	events  map[string]matchevent.Event
	byMatch map[string][]string
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		events:  make(map[string]matchevent.Event),
		byMatch: make(map[string][]string),
	}
}

func (r *EventRepository) Create(_ context.Context, item matchevent.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[item.ID]; ok {
		return fmt.Errorf("%w: event=%s", ErrDuplicateKey, item.ID)
	}
	r.events[item.ID] = item
	r.byMatch[item.MatchID] = append(r.byMatch[item.MatchID], item.ID)
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, eventID string) (matchevent.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.events[eventID]
	return item, ok, nil
}

func (r *EventRepository) Delete(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.events[eventID]
	if !ok {
		return fmt.Errorf("%w: event=%s", ErrRowNotFound, eventID)
	}
	delete(r.events, eventID)

	ids := r.byMatch[item.MatchID]
	for i, id := range ids {
		if id == eventID {
			r.byMatch[item.MatchID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// ListByMatch returns events in insertion order.
func (r *EventRepository) ListByMatch(_ context.Context, matchID string) ([]matchevent.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byMatch[matchID]
	out := make([]matchevent.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.events[id])
	}
	return out, nil
}

func (r *EventRepository) CountByMatch(_ context.Context, matchID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byMatch[matchID]), nil
}

func (r *EventRepository) ListByMatches(_ context.Context, matchIDs []string, types ...matchevent.Type) ([]matchevent.Event, error) {
	wanted := make(map[matchevent.Type]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matchevent.Event, 0)
	for _, matchID := range matchIDs {
		for _, id := range r.byMatch[matchID] {
			item := r.events[id]
			if len(wanted) > 0 {
				if _, ok := wanted[item.Type]; !ok {
					continue
				}
			}
			out = append(out, item)
		}
	}
	return out, nil
}
