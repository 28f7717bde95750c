package cache

import (
	"sync"

	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// MemoryBackend is an in-memory cache backend. It is the default for tests
// and for one-shot CLI invocations that only need session-lifetime caching.
type MemoryBackend struct {
	mu           sync.RWMutex
	entries      map[string]*MonthEntry
	consolidated *ConsolidatedSummary
}

// NewMemoryBackend creates a new in-memory cache backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*MonthEntry),
	}
}

// Read returns the stored entry for key or nil if absent.
func (b *MemoryBackend) Read(key monthkey.Key) (*MonthEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[key.String()]
	if !ok {
		return nil, nil
	}
	return copyEntry(entry), nil
}

// Write replaces any stored entry for the entry's key.
func (b *MemoryBackend) Write(entry *MonthEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[entry.Key.String()] = copyEntry(entry)
	return nil
}

// Delete removes the entry for key, if any.
func (b *MemoryBackend) Delete(key monthkey.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key.String())
	return nil
}

// Keys returns the stored month keys in no particular order.
func (b *MemoryBackend) Keys() ([]monthkey.Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]monthkey.Key, 0, len(b.entries))
	for _, entry := range b.entries {
		keys = append(keys, entry.Key)
	}
	return keys, nil
}

// Clear removes all entries and the consolidated summary.
func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*MonthEntry)
	b.consolidated = nil
	return nil
}

// ReadConsolidated returns the stored consolidated summary or nil.
func (b *MemoryBackend) ReadConsolidated() (*ConsolidatedSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.consolidated == nil {
		return nil, nil
	}
	s := *b.consolidated
	return &s, nil
}

// WriteConsolidated replaces the stored consolidated summary.
func (b *MemoryBackend) WriteConsolidated(summary *ConsolidatedSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := *summary
	b.consolidated = &s
	return nil
}

// Seed adds entries directly (for testing).
func (b *MemoryBackend) Seed(entries ...*MonthEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, entry := range entries {
		b.entries[entry.Key.String()] = copyEntry(entry)
	}
}

// copyEntry returns a copy so callers cannot mutate stored state.
func copyEntry(entry *MonthEntry) *MonthEntry {
	cp := *entry
	cp.Records = append(cp.Records[:0:0], entry.Records...)
	return &cp
}
