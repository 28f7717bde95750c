package erp

import (
	"context"
	"sync"
	"time"

	"github.com/andrefarina/salesops-cli-go/internal/core"
)

// MockFetcher is an in-memory simulation of the ERP query proxy, sufficient
// for unit testing cache logic. It can be seeded with records and scripted
// to fail specific calls.
type MockFetcher struct {
	mu       sync.Mutex
	records  []SaleLineRecord
	failures map[string][]error // keyed by "start..end", consumed FIFO
	failAll  error
	requests []FetchRequest
}

// FetchRequest records one call made to the mock.
type FetchRequest struct {
	Start time.Time
	End   time.Time
}

// NewMockFetcher creates an empty mock fetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		failures: make(map[string][]error),
	}
}

// Seed adds records to the simulated ERP.
func (m *MockFetcher) Seed(records ...SaleLineRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// FailRange scripts one failure for the next fetch of [start, end]. Calls
// queue: script it N times to fail N consecutive attempts; once the queue is
// drained, fetches for the range succeed again.
func (m *MockFetcher) FailRange(start, end time.Time, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := rangeKey(start, end)
	m.failures[key] = append(m.failures[key], err)
}

// FailAlways makes every fetch return err until Reset.
func (m *MockFetcher) FailAlways(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = err
}

// RequestsMade returns the number of fetch calls recorded.
func (m *MockFetcher) RequestsMade() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded fetch calls.
func (m *MockFetcher) Requests() []FetchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FetchRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears records, scripted failures and the request log.
func (m *MockFetcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.failures = make(map[string][]error)
	m.failAll = nil
	m.requests = nil
}

// Fetch simulates one query round-trip. It satisfies FetchFunc.
func (m *MockFetcher) Fetch(ctx context.Context, start, end time.Time) ([]SaleLineRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, FetchRequest{Start: start, End: end})

	if m.failAll != nil {
		return nil, m.failAll
	}
	if queue := m.failures[rangeKey(start, end)]; len(queue) > 0 {
		err := queue[0]
		m.failures[rangeKey(start, end)] = queue[1:]
		return nil, err
	}

	startDay := core.DateOnly(start)
	endDay := core.DateOnly(end)

	out := make([]SaleLineRecord, 0)
	for _, r := range m.records {
		d := core.DateOnly(r.SaleDate)
		if !d.Before(startDay) && !d.After(endDay) {
			out = append(out, r)
		}
	}
	return out, nil
}

func rangeKey(start, end time.Time) string {
	return core.FormatDate(start) + ".." + core.FormatDate(end)
}
