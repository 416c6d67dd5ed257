// Package mock provides an in-memory repository.WordStore for tests.
package mock

import (
	"context" // context matches the WordStore signatures
	"fmt"     // fmt formats validation errors
	"sort"    // sort orders listed entries
	"strconv" // strconv renders sequential ids
	"sync"    // sync guards concurrent access

	"github.com/iliyamo/wordbook/internal/model"      // model holds WordEntry
	"github.com/iliyamo/wordbook/internal/repository" // repository supplies the typed errors
)

// WordStore is a mock implementation of repository.WordStore.  Entries are
// kept in insertion order.
type WordStore struct {
	mu          sync.RWMutex      // guards every field below
	entries     []model.WordEntry // insertion order
	schemaCalls int               // EnsureSchema call count
	closed      bool              // set by Close
	schemaError error             // returned by EnsureSchema when set
	insertError error             // returned by Insert when set
	listError   error             // returned by ListAll when set
	pingError   error             // returned by Ping when set
}

// New creates an empty mock WordStore.
func New() *WordStore {
	return &WordStore{}
}

// WithSchemaError makes EnsureSchema return err.
func (m *WordStore) WithSchemaError(err error) *WordStore {
	m.schemaError = err
	return m
}

// WithInsertError makes Insert return err.
func (m *WordStore) WithInsertError(err error) *WordStore {
	m.insertError = err
	return m
}

// WithListError makes ListAll return err.
func (m *WordStore) WithListError(err error) *WordStore {
	m.listError = err
	return m
}

// WithPingError makes Ping return err.
func (m *WordStore) WithPingError(err error) *WordStore {
	m.pingError = err
	return m
}

// EnsureSchema counts calls.
func (m *WordStore) EnsureSchema(ctx context.Context) error {
	if m.schemaError != nil {
		return m.schemaError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaCalls++
	return nil
}

// Insert appends entry with a sequential id.
func (m *WordStore) Insert(ctx context.Context, entry model.WordEntry) (*model.WordEntry, error) {
	if m.insertError != nil {
		return nil, m.insertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = strconv.Itoa(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return &entry, nil
}

// ListAll returns a sorted copy of the stored entries.
func (m *WordStore) ListAll(ctx context.Context, orderBy string) ([]model.WordEntry, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	if !model.IsOrderField(orderBy) {
		return nil, &repository.StoreError{
			Kind: repository.KindValidation,
			Op:   "list",
			Err:  fmt.Errorf("cannot order by %q", orderBy),
		}
	}
	m.mu.RLock()
	out := make([]model.WordEntry, len(m.entries))
	copy(out, m.entries)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Value(orderBy) < out[j].Value(orderBy) })
	return out, nil
}

// Ping returns the configured ping error.
func (m *WordStore) Ping(ctx context.Context) error {
	return m.pingError
}

// Close marks the store closed.
func (m *WordStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SchemaCalls reports how many times EnsureSchema succeeded.
func (m *WordStore) SchemaCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schemaCalls
}

// Closed reports whether Close was called.
func (m *WordStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

var _ repository.WordStore = (*WordStore)(nil)
