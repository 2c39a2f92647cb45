package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec = prepareCreate(rec, s.now())
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Update replaces input and snapshot; owner, share token and CreatedAt are kept.
func (s *MemoryStore) Update(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[rec.ID]
	if !ok {
		return Record{}, ErrNotFound
	}
	cur.Input = rec.Input
	cur.Snapshot = rec.Snapshot
	cur.UpdatedAt = s.now()
	s.records[rec.ID] = cur
	return cur, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, owner string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Record{}
	for _, rec := range s.records {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) SetShareToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.ShareToken = token
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) GetByShareToken(_ context.Context, token string) (Record, error) {
	if token == "" {
		return Record{}, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ShareToken == token {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) lookup(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// restore puts prev back under id, or removes id when it did not exist.
func (s *MemoryStore) restore(id string, prev Record, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existed {
		s.records[id] = prev
		return
	}
	delete(s.records, id)
}

func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
