package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns a process-local Store.
func NewMemory() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Has(ctx context.Context, path string, modTime time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[Key(path, modTime)]
	return ok, nil
}

func (s *memoryStore) Mark(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key()] = rec
	return nil
}

func (s *memoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].FinishedAt.Equal(recs[j].FinishedAt) {
			return recs[i].Key() < recs[j].Key()
		}
		return recs[i].FinishedAt.After(recs[j].FinishedAt)
	})
}
