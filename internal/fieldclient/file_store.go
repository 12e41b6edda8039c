package fieldclient

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// FileStore persists the whole queue as one JSON document. Every write
// replaces the file through a rename, so a crash leaves either the old or
// the new snapshot on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
	data snapshot
}

func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, crerr.New("queue file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create queue dir for %s", path)
	}

	s := &FileStore{path: path, data: newSnapshot()}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(raw) > 0 {
			if err := sonic.Unmarshal(raw, &s.data); err != nil {
				return nil, crerr.Wrapf(err, "decode queue file %s", path)
			}
		}
	case os.IsNotExist(err):
	default:
		return nil, crerr.Wrapf(err, "read queue file %s", path)
	}

	if s.data.Events == nil {
		s.data.Events = make(map[string]QueuedEvent)
	}
	if s.data.Conflicted == nil {
		s.data.Conflicted = make(map[string]bool)
	}
	return s, nil
}

func (s *FileStore) Put(_ context.Context, e QueuedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	next.Events[e.ID] = e.Clone()
	return s.commit(next)
}

func (s *FileStore) Delete(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	for _, id := range ids {
		delete(next.Events, id)
	}
	return s.commit(next)
}

func (s *FileStore) List(_ context.Context) ([]QueuedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.ordered(), nil
}

func (s *FileStore) SetConflicted(_ context.Context, matchID string, conflicted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	if conflicted {
		next.Conflicted[matchID] = true
	} else {
		delete(next.Conflicted, matchID)
	}
	return s.commit(next)
}

func (s *FileStore) Conflicted(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.conflicted(), nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(newSnapshot())
}

// commit writes next to disk and only then adopts it in memory.
func (s *FileStore) commit(next snapshot) error {
	raw, err := sonic.Marshal(next)
	if err != nil {
		return crerr.Wrap(err, "encode queue snapshot")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return crerr.Wrap(err, "create queue temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return crerr.Wrap(err, "write queue temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return crerr.Wrap(err, "sync queue temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return crerr.Wrap(err, "close queue temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return crerr.Wrapf(err, "replace queue file %s", s.path)
	}

	s.data = next
	return nil
}
