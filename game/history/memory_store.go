package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	records map[string]*MatchRecord
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*MatchRecord)}
}

func (s *MemoryStore) Insert(_ context.Context, rec *MatchRecord) error {
	if rec.GameID == "" {
		return ErrInvalidGameID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.GameID]; exists {
		return ErrAlreadyRecorded
	}
	s.records[rec.GameID] = cloneRecord(rec)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, gameID string) (*MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[gameID]
	if !exists {
		return nil, ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*MatchRecord, error) {
	s.mu.RLock()
	out := make([]*MatchRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// cloneRecord copies rec including the rating it points to
func cloneRecord(rec *MatchRecord) *MatchRecord {
	copied := *rec
	if rec.DifficultyRating != nil {
		rating := *rec.DifficultyRating
		copied.DifficultyRating = &rating
	}
	return &copied
}

func sortNewestFirst(recs []*MatchRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].SavedAt.Equal(recs[j].SavedAt) {
			return recs[i].GameID < recs[j].GameID
		}
		return recs[i].SavedAt.After(recs[j].SavedAt)
	})
}
