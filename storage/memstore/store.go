// Package memstore is the in-memory Store twin used by tests and offline
// runs. Same read contract as redisstore.
package memstore

import (
	"context"
	"sync"

	"github.com/campuskit/seguimiento/core"
)

type Store struct {
	mu     sync.RWMutex
	tables map[string]core.Table
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	return &Store{tables: make(map[string]core.Table)}
}

// Set seeds a table under a physical key.
func (s *Store) Set(key string, t core.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[key] = t
}

// SetTemplate seeds a template string the way the cache stores them: a
// single-cell table under a "plantilla" column.
func (s *Store) SetTemplate(key, tmpl string) {
	s.Set(key, core.Table{
		Headers: []string{"PLANTILLA"},
		Rows:    []core.Row{{"PLANTILLA": tmpl}},
	})
}

func (s *Store) Get(_ context.Context, keys ...string) (core.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range keys {
		if t, ok := s.tables[key]; ok && !t.Empty() {
			return t, nil
		}
	}
	return core.Table{}, nil
}
