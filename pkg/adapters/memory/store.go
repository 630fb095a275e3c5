// Package memory provides in-process adapters, mainly for tests and one-shot runs.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// Store implements ports.OutcomeStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Record
	mu   sync.RWMutex
}

var (
	_ ports.OutcomeStore = (*Store)(nil)
	_ ports.RecordSink   = (*Store)(nil)
)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Record),
	}
}

// Save persists the record in memory.
func (s *Store) Save(_ context.Context, rec domain.Record) error {
	if rec.ID == "" {
		return errors.New("record has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = rec
	return nil
}

// Append satisfies ports.RecordSink.
func (s *Store) Append(ctx context.Context, rec domain.Record) error {
	return s.Save(ctx, rec)
}

// Load retrieves the record.
func (s *Store) Load(_ context.Context, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// Delete removes the record.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored IDs in lexical order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
