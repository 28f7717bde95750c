package cache

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/erp"
	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// estBytesPerRecord is the fixed per-record size estimate used by Summary.
const estBytesPerRecord = 256

// Store is the per-month store: get/set/delete of whole-month entries over a
// pluggable Backend. It applies no freshness logic; that is Policy's job.
type Store struct {
	backend Backend
	now     func() time.Time
	log     *logrus.Logger
}

// NewStore creates a store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     time.Now,
		log:     core.GetLogger(),
	}
}

// WithClock overrides the store's clock (for tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Get returns exactly what is stored for key, or nil if nothing is.
func (s *Store) Get(key monthkey.Key) *MonthEntry {
	entry, err := s.backend.Read(key)
	if err != nil {
		// A cache is an optimization: read failures degrade to a miss.
		s.log.WithFields(logrus.Fields{"month": key.String()}).WithError(err).Warn("cache read failed")
		return nil
	}
	return entry
}

// Set overwrites the entry for key with a fresh record list, count and
// timestamp. Always a full replace, never a merge.
func (s *Store) Set(key monthkey.Key, records []erp.SaleLineRecord) error {
	entry := &MonthEntry{
		Key:         key,
		Records:     records,
		RecordCount: len(records),
		LastUpdated: s.now(),
	}
	return s.backend.Write(entry)
}

// Delete removes the entry for key.
func (s *Store) Delete(key monthkey.Key) error {
	return s.backend.Delete(key)
}

// Clear removes every entry and the consolidated summary.
func (s *Store) Clear() error {
	return s.backend.Clear()
}

// Backend exposes the underlying backend (for the manager's consolidated
// summary reads/writes).
func (s *Store) Backend() Backend {
	return s.backend
}

// Summary returns a read-only rollup of the store. Size is an estimate based
// on a fixed per-record figure; metadata comes from entry headers only.
func (s *Store) Summary() (StoreSummary, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return StoreSummary{}, err
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	summary := StoreSummary{Months: keys}
	for _, key := range keys {
		entry, err := s.backend.Read(key)
		if err != nil || entry == nil {
			continue
		}
		summary.EntryCount++
		summary.RecordCount += entry.RecordCount
		summary.SizeBytes += int64(entry.RecordCount) * estBytesPerRecord
		if summary.Oldest.IsZero() || entry.LastUpdated.Before(summary.Oldest) {
			summary.Oldest = entry.LastUpdated
		}
		if entry.LastUpdated.After(summary.Newest) {
			summary.Newest = entry.LastUpdated
		}
	}
	return summary, nil
}
