package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/erp"
	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// Manager is the public cache surface: range reads and writes, progressive
// loads, clear-all and summaries.
type Manager struct {
	cfg     Config
	store   *Store
	policy  *Policy
	planner *Planner
	loader  *Loader
	now     func() time.Time
	log     *logrus.Logger

	inflightMu sync.Mutex
	inflight   map[string]*inflightLoad
}

// inflightLoad collapses duplicate concurrent loads for the same range.
type inflightLoad struct {
	done   chan struct{}
	result LoadResult
}

// ManagerSummary is the store summary augmented with which cached months are
// still inside the hot refresh window (and will therefore auto-refresh).
type ManagerSummary struct {
	StoreSummary
	HotMonths    []monthkey.Key       `json:"hotMonths"`
	Consolidated *ConsolidatedSummary `json:"consolidated,omitempty"`
}

// NewManager creates a cache manager over backend with cfg. A nil backend
// defaults to an in-memory one.
func NewManager(backend Backend, cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = NewMemoryBackend()
	}

	store := NewStore(backend)
	policy := NewPolicy(cfg)

	return &Manager{
		cfg:      cfg,
		store:    store,
		policy:   policy,
		planner:  NewPlanner(store, policy),
		loader:   NewLoader(store, cfg),
		now:      time.Now,
		log:      core.GetLogger(),
		inflight: make(map[string]*inflightLoad),
	}, nil
}

// WithClock overrides the manager's clock and propagates it to the store and
// policy (for tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	m.store.WithClock(now)
	m.policy.WithClock(now)
	return m
}

// Store exposes the per-month store (for seeding in tests and for the CLI's
// cache commands).
func (m *Manager) Store() *Store {
	return m.store
}

// GetForRange returns records for [dateFrom, dateTo] when every month in the
// range is servable from the store with no fetch needed. The second return
// is false when any month would require a fetch.
func (m *Manager) GetForRange(dateFrom, dateTo time.Time) ([]erp.SaleLineRecord, bool) {
	plan := m.planner.Plan(dateFrom, dateTo, false)
	if len(plan.ToFetch) > 0 {
		return nil, false
	}

	records := make([]erp.SaleLineRecord, 0)
	for _, cached := range plan.FromStore {
		records = append(records, cached.Records...)
	}
	return filterRange(records, dateFrom, dateTo), true
}

// SetForRange splits records into per-month buckets by each record's own
// SaleDate and writes each bucket as that month's entry, then refreshes the
// consolidated summary. Records with a zero SaleDate are dropped from
// caching only -- the caller's slice is untouched.
func (m *Manager) SetForRange(dateFrom, dateTo time.Time, records []erp.SaleLineRecord) error {
	buckets := make(map[monthkey.Key][]erp.SaleLineRecord)
	order := make([]monthkey.Key, 0)

	for _, r := range records {
		if r.SaleDate.IsZero() {
			continue
		}
		key := monthkey.FromDate(r.SaleDate)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	for _, key := range order {
		if err := m.store.Set(key, buckets[key]); err != nil {
			return fmt.Errorf("persist month %s: %w", key, err)
		}
	}

	m.updateConsolidated(dateFrom, dateTo, records)
	return nil
}

// LoadRange performs the full progressive load for [dateFrom, dateTo]:
// plan, fetch what is stale or absent, persist complete months, merge.
// Duplicate concurrent calls for the same range share one underlying load.
func (m *Manager) LoadRange(ctx context.Context, dateFrom, dateTo time.Time, forceRefresh bool, fetch erp.FetchFunc, onProgress ProgressFunc) (LoadResult, error) {
	if err := m.checkSpan(dateFrom, dateTo); err != nil {
		return LoadResult{}, err
	}

	rangeKey := fmt.Sprintf("%s..%s|force=%t", core.FormatDate(dateFrom), core.FormatDate(dateTo), forceRefresh)

	m.inflightMu.Lock()
	if existing, ok := m.inflight[rangeKey]; ok {
		m.inflightMu.Unlock()
		<-existing.done
		return existing.result, nil
	}
	call := &inflightLoad{done: make(chan struct{})}
	m.inflight[rangeKey] = call
	m.inflightMu.Unlock()

	defer func() {
		m.inflightMu.Lock()
		delete(m.inflight, rangeKey)
		m.inflightMu.Unlock()
		close(call.done)
	}()

	plan := m.planner.Plan(dateFrom, dateTo, forceRefresh)
	m.log.WithFields(logrus.Fields{
		"from":      core.FormatDate(dateFrom),
		"to":        core.FormatDate(dateTo),
		"toFetch":   len(plan.ToFetch),
		"fromStore": len(plan.FromStore),
		"force":     forceRefresh,
	}).Debug("range planned")

	result := m.loader.Load(ctx, plan, fetch, onProgress)
	result.Records = filterRange(result.Records, dateFrom, dateTo)

	if result.Status == StatusSuccess || result.Status == StatusPartial {
		m.updateConsolidated(dateFrom, dateTo, result.Records)
	}

	call.result = result
	return result, nil
}

// ClearAll deletes every per-month entry and the consolidated summary.
func (m *Manager) ClearAll() error {
	return m.store.Clear()
}

// Summary returns the store rollup plus the hot-month list and the last
// consolidated summary, for display.
func (m *Manager) Summary() (ManagerSummary, error) {
	storeSummary, err := m.store.Summary()
	if err != nil {
		return ManagerSummary{}, err
	}

	out := ManagerSummary{StoreSummary: storeSummary, HotMonths: make([]monthkey.Key, 0)}
	for _, key := range storeSummary.Months {
		if key.WithinRefreshWindow(m.now(), m.cfg.RefreshWindowMonths) {
			out.HotMonths = append(out.HotMonths, key)
		}
	}

	if consolidated, err := m.store.Backend().ReadConsolidated(); err == nil {
		out.Consolidated = consolidated
	}
	return out, nil
}

// checkSpan rejects ranges spanning more than MaxRequestSpanMonths.
func (m *Manager) checkSpan(dateFrom, dateTo time.Time) error {
	if dateTo.Before(dateFrom) {
		return fmt.Errorf("invalid range: %s is after %s", core.FormatDate(dateFrom), core.FormatDate(dateTo))
	}
	from := monthkey.FromDate(dateFrom)
	to := monthkey.FromDate(dateTo)
	span := from.MonthsBetween(to.Start()) + 1
	if span > m.cfg.MaxRequestSpanMonths {
		return fmt.Errorf("range spans %d months, maximum is %d", span, m.cfg.MaxRequestSpanMonths)
	}
	return nil
}

// updateConsolidated recomputes and stores the display summary, unless the
// record count exceeds the configured ceiling (large loads skip the write to
// stay responsive).
func (m *Manager) updateConsolidated(dateFrom, dateTo time.Time, records []erp.SaleLineRecord) {
	if m.cfg.SummaryRecordCeiling > 0 && len(records) > m.cfg.SummaryRecordCeiling {
		m.log.WithField("records", len(records)).Debug("skipping consolidated summary (over ceiling)")
		return
	}

	sales := make(map[string]struct{}, len(records))
	revenue := decimal.Zero
	for _, r := range records {
		sales[r.SaleID] = struct{}{}
		revenue = revenue.Add(r.NetAmount)
	}

	summary := &ConsolidatedSummary{
		SessionID:    uuid.NewString(),
		PeriodFrom:   core.DateOnly(dateFrom),
		PeriodTo:     core.DateOnly(dateTo),
		RecordCount:  len(records),
		UniqueSales:  len(sales),
		TotalRevenue: revenue,
		GeneratedAt:  m.now(),
	}
	if err := m.store.Backend().WriteConsolidated(summary); err != nil {
		m.log.WithError(err).Warn("consolidated summary write failed")
	}
}

// filterRange keeps records whose SaleDate falls in [dateFrom, dateTo].
// Records with a zero SaleDate are kept: the cache never silently drops data
// from a result set.
func filterRange(records []erp.SaleLineRecord, dateFrom, dateTo time.Time) []erp.SaleLineRecord {
	if records == nil {
		return nil
	}
	from := core.DateOnly(dateFrom)
	to := core.DateOnly(dateTo)

	out := make([]erp.SaleLineRecord, 0, len(records))
	for _, r := range records {
		if r.SaleDate.IsZero() {
			out = append(out, r)
			continue
		}
		d := core.DateOnly(r.SaleDate)
		if !d.Before(from) && !d.After(to) {
			out = append(out, r)
		}
	}
	return out
}
