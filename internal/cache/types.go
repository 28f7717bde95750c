// Package cache implements the monthly ERP data cache.
//
// # Overview
//
// A date-range request is partitioned into calendar months. Each month is
// persisted independently as a MonthEntry under its "YYYY-MM" key; an entry
// always holds the entire month's records or does not exist at all -- partial
// months are never written. The freshness policy splits months into a hot
// window (the most recent N months, revalidated after a max age) and cold
// history (trusted forever once cached, since closed sales do not change).
//
// # Components
//
//   - Backend: pluggable keyed storage (memory, filesystem, Redis, MySQL)
//   - Store: the per-month store layered on a Backend
//   - Policy: the hot/cold freshness decisions
//   - Planner: partitions a range into fetch vs. serve-from-store months
//   - Loader: sequential progressive fetch with retry, pacing, cancellation
//   - Manager: the facade consumed by the CLI
package cache

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrefarina/salesops-cli-go/internal/erp"
	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// MonthEntry is one month's full record set plus metadata. Entries are
// written whole and replaced whole; RecordCount is redundant with
// len(Records) so summaries can avoid decoding record lists.
type MonthEntry struct {
	Key         monthkey.Key         `json:"key"`
	Records     []erp.SaleLineRecord `json:"records"`
	RecordCount int                  `json:"recordCount"`
	LastUpdated time.Time            `json:"lastUpdated"`
}

// ConsolidatedSummary is a single display row describing the last full range
// request. It is never consulted for freshness decisions.
type ConsolidatedSummary struct {
	SessionID    string          `json:"sessionId"`
	PeriodFrom   time.Time       `json:"periodFrom"`
	PeriodTo     time.Time       `json:"periodTo"`
	RecordCount  int             `json:"recordCount"`
	UniqueSales  int             `json:"uniqueSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// Backend is the interface for cache storage backends.
//
// Read returns (nil, nil) for absent entries; a malformed stored entry is
// also reported as absent, never as an error -- the cache fails open to
// "must fetch". Write is a whole-entry replacement with last-write-wins
// semantics.
type Backend interface {
	Read(key monthkey.Key) (*MonthEntry, error)
	Write(entry *MonthEntry) error
	Delete(key monthkey.Key) error
	Keys() ([]monthkey.Key, error)
	Clear() error

	ReadConsolidated() (*ConsolidatedSummary, error)
	WriteConsolidated(summary *ConsolidatedSummary) error
}

// StoreSummary is a read-only rollup of the per-month store for display.
// SizeBytes is an estimate, not an exact figure.
type StoreSummary struct {
	EntryCount  int            `json:"entryCount"`
	RecordCount int            `json:"recordCount"`
	SizeBytes   int64          `json:"sizeBytes"`
	Oldest      time.Time      `json:"oldest"`
	Newest      time.Time      `json:"newest"`
	Months      []monthkey.Key `json:"months"`
}

// LoadStatus is the terminal state of one progressive load.
type LoadStatus string

const (
	StatusSuccess   LoadStatus = "success"
	StatusPartial   LoadStatus = "partial"
	StatusFailed    LoadStatus = "failed"
	StatusCancelled LoadStatus = "cancelled"
)

// MonthError records one month's final failure after retries were exhausted.
type MonthError struct {
	Key   monthkey.Key  `json:"key"`
	Label string        `json:"label"`
	Kind  erp.ErrorKind `json:"kind"`
	Err   string        `json:"error"`
}

// LoadProgress is the transient progress state reported after every month of
// a progressive load.
type LoadProgress struct {
	Active       bool         `json:"active"`
	TotalMonths  int          `json:"totalMonths"`
	DoneMonths   int          `json:"doneMonths"`
	CurrentLabel string       `json:"currentLabel"`
	Records      int          `json:"records"`
	Errors       []MonthError `json:"errors"`
	Cancelled    bool         `json:"cancelled"`
}

// ProgressFunc receives progress snapshots during a load. May be nil.
type ProgressFunc func(p LoadProgress)

// LoadResult is the outcome of one progressive load.
type LoadResult struct {
	Status    LoadStatus           `json:"status"`
	Records   []erp.SaleLineRecord `json:"records"`
	FromCache int                  `json:"fromCache"`
	Fetched   int                  `json:"fetched"`
	Errors    []MonthError         `json:"errors"`
}

// PlannedMonth is one month the planner routed to the fetch path. Start/End
// are the clipped sub-range actually requested; Complete is true when the
// sub-range covers the whole calendar month, which is the only case whose
// result may be persisted.
type PlannedMonth struct {
	Key      monthkey.Key
	Label    string
	Start    time.Time
	End      time.Time
	Complete bool
}

// CachedMonth is one month the planner resolved from the store.
type CachedMonth struct {
	Key     monthkey.Key
	Records []erp.SaleLineRecord
}

// Plan is the planner's partition of a range: both lists are in chronological
// order, their month sets are disjoint, and together they cover the range.
type Plan struct {
	ToFetch   []PlannedMonth
	FromStore []CachedMonth
}
