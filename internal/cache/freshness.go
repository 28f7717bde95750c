package cache

import (
	"time"

	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// Policy decides whether a month's stored entry is usable as-is or must be
// refreshed.
//
// The asymmetry is deliberate: months outside the hot refresh window are
// closed history in the ERP -- once cached they are trusted regardless of age.
// Months inside the window can still receive corrections and new sales, so
// their entries expire after MaxCacheAge.
type Policy struct {
	windowSize int
	maxAge     time.Duration
	now        func() time.Time
}

// NewPolicy creates a freshness policy from the cache config.
func NewPolicy(cfg Config) *Policy {
	return &Policy{
		windowSize: cfg.RefreshWindowMonths,
		maxAge:     cfg.MaxCacheAge,
		now:        time.Now,
	}
}

// WithClock overrides the policy's clock (for tests).
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// NeedsRefresh reports whether key must be fetched given what the store
// currently holds.
//
//   - Cold month (outside the window): fetch only when absent; a present
//     entry is trusted forever.
//   - Hot month (inside the window): fetch when absent or older than MaxAge.
func (p *Policy) NeedsRefresh(key monthkey.Key, store *Store) bool {
	entry := store.Get(key)

	if !key.WithinRefreshWindow(p.now(), p.windowSize) {
		return entry == nil
	}

	if entry == nil {
		return true
	}
	return p.now().Sub(entry.LastUpdated) > p.maxAge
}
