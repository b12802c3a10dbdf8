// Package migrate applies and reverts registered Go migrations, tracking
// applied names and batch numbers in the migrations table.
package migrate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
)

// Func is one direction of a migration. q is bound to the migration's transaction.
type Func func(ctx context.Context, q postgres.Querier) error

// Migration is a named up/down pair.
type Migration struct {
	Name string
	Up   Func
	Down Func
}

// Registry holds migrations keyed by name.
type Registry struct {
	mu         sync.RWMutex
	migrations map[string]Migration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{migrations: make(map[string]Migration)}
}

// Add registers m. Names must be unique and non-empty.
func (r *Registry) Add(m Migration) error {
	if m.Name == "" {
		return fmt.Errorf("migrate: migration name is empty")
	}
	if m.Up == nil || m.Down == nil {
		return fmt.Errorf("migrate: migration %s: up and down are required", m.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.migrations[m.Name]; ok {
		return fmt.Errorf("migrate: duplicate migration %s", m.Name)
	}
	r.migrations[m.Name] = m
	return nil
}

// Get returns the migration registered under name.
func (r *Registry) Get(name string) (Migration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.migrations[name]
	return m, ok
}

// Sorted returns all migrations ordered lexicographically by name.
func (r *Registry) Sorted() []Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var global = NewRegistry()

// Register adds a migration to the process-wide registry. It is meant to be
// called from init functions of migration files and panics on a duplicate.
func Register(name string, up, down Func) {
	if err := global.Add(Migration{Name: name, Up: up, Down: down}); err != nil {
		panic(err)
	}
}

// Registered returns the process-wide registry.
func Registered() *Registry {
	return global
}
