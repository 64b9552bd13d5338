// Package registry keeps named alignment tables for the server and CLI.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// CombinedPrefix starts the generated names of combined tables.
const CombinedPrefix = "combined"

// Store holds tables by name.
type Store interface {
	Put(name string, t *msa.Table)
	Get(name string) (*msa.Table, bool)
	Delete(name string) bool
	Names() []string
	// PutCombined stores t under the next free combined name.
	PutCombined(t *msa.Table) string
}

// MemoryStore is a Store held in memory. Tables are copied on the way in and
// out, so callers never share a table with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*msa.Table
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*msa.Table)}
}

// Put stores a copy of t under name, replacing any previous table.
func (s *MemoryStore) Put(name string, t *msa.Table) {
	c := t.Clone()
	s.mu.Lock()
	s.tables[name] = c
	s.mu.Unlock()
}

// Get returns a copy of the named table.
func (s *MemoryStore) Get(name string) (*msa.Table, bool) {
	s.mu.RLock()
	t, ok := s.tables[name]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Delete removes the named table and reports whether it existed.
func (s *MemoryStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[name]
	delete(s.tables, name)
	return ok
}

// Names lists stored names in sorted order.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// PutCombined stores t under the next free combined name and returns it.
// Naming and insertion happen under one lock.
func (s *MemoryStore) PutCombined(t *msa.Table) string {
	c := t.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	name := NextCombinedName(names)
	for _, taken := s.tables[name]; taken; _, taken = s.tables[name] {
		name += "_"
	}
	s.tables[name] = c
	return name
}

// NextCombinedName returns combined_{k+1}, where k counts the names that
// start with the combined prefix.
func NextCombinedName(names []string) string {
	k := 0
	for _, name := range names {
		if strings.HasPrefix(name, CombinedPrefix) {
			k++
		}
	}
	return fmt.Sprintf("%s_%d", CombinedPrefix, k+1)
}

// NewID returns a fresh random name for an unnamed upload.
func NewID() string {
	return "msa_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
