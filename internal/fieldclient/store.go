package fieldclient

import (
	"context"
	"sort"
	"sync"
)

// Store is the queue's durable storage. Implementations keep writes atomic
// per call; List returns events ordered by Seq.
type Store interface {
	Put(ctx context.Context, e QueuedEvent) error
	Delete(ctx context.Context, ids ...string) error
	List(ctx context.Context) ([]QueuedEvent, error)
	SetConflicted(ctx context.Context, matchID string, conflicted bool) error
	Conflicted(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

type snapshot struct {
	Events     map[string]QueuedEvent `json:"events"`
	Conflicted map[string]bool        `json:"conflicted"`
}

func newSnapshot() snapshot {
	return snapshot{
		Events:     make(map[string]QueuedEvent),
		Conflicted: make(map[string]bool),
	}
}

func (s snapshot) clone() snapshot {
	out := newSnapshot()
	for id, e := range s.Events {
		out.Events[id] = e.Clone()
	}
	for matchID, v := range s.Conflicted {
		out.Conflicted[matchID] = v
	}
	return out
}

func (s snapshot) ordered() []QueuedEvent {
	out := make([]QueuedEvent, 0, len(s.Events))
	for _, e := range s.Events {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (s snapshot) conflicted() []string {
	out := make([]string, 0, len(s.Conflicted))
	for matchID, v := range s.Conflicted {
		if v {
			out = append(out, matchID)
		}
	}
	sort.Strings(out)
	return out
}

// MemoryStore keeps the queue in process memory. It does not survive a
// restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newSnapshot()}
}

func (s *MemoryStore) Put(_ context.Context, e QueuedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Events[e.ID] = e.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.data.Events, id)
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]QueuedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.ordered(), nil
}

func (s *MemoryStore) SetConflicted(_ context.Context, matchID string, conflicted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conflicted {
		s.data.Conflicted[matchID] = true
	} else {
		delete(s.data.Conflicted, matchID)
	}
	return nil
}

func (s *MemoryStore) Conflicted(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.conflicted(), nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = newSnapshot()
	return nil
}
