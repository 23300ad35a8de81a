// Package memory provides the in-memory RunStore, used in tests and in
// serve mode when no Redis address is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/avells/cadre/pkg/domain"
	"github.com/avells/cadre/pkg/ports"
)

// Store implements ports.RunStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

var _ ports.RunStore = (*Store)(nil)

// NewStore creates an empty in-memory run store.
func NewStore() *Store {
	return &Store{runs: make(map[string]domain.RunRecord)}
}

// Save persists the record. Results are copied so later caller mutation
// cannot reach the stored snapshot.
func (s *Store) Save(ctx context.Context, rec domain.RunRecord) error {
	rec.Results = cloneResults(rec.Results)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.ID] = rec
	return nil
}

// Load retrieves a run record by ID.
func (s *Store) Load(ctx context.Context, id string) (domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	if !ok {
		return domain.RunRecord{}, domain.ErrRunNotFound
	}
	rec.Results = cloneResults(rec.Results)
	return rec, nil
}

// List returns stored run IDs in deterministic order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a run record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func cloneResults(in domain.Results) domain.Results {
	out := make(domain.Results, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
