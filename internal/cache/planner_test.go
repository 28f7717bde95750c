package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

func planKeys(plan Plan) (fetch, store []string) {
	for _, m := range plan.ToFetch {
		fetch = append(fetch, m.Key.String())
	}
	for _, m := range plan.FromStore {
		store = append(store, m.Key.String())
	}
	return fetch, store
}

func TestPlanPartitionsRange(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))
	policy := NewPolicy(testConfig()).WithClock(fixedClock(now))
	planner := NewPlanner(store, policy)

	// Feb cached (cold, trusted); Mar absent; Apr cached hot and fresh.
	backend.Seed(
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 2}, LastUpdated: now.AddDate(0, -2, 0)},
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 4}, LastUpdated: now.Add(-time.Hour)},
	)

	plan := planner.Plan(
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		false,
	)

	fetch, fromStore := planKeys(plan)
	assert.Equal(t, []string{"2025-03"}, fetch)
	assert.Equal(t, []string{"2025-02", "2025-04"}, fromStore)
}

func TestPlanHotStaleScenario(t *testing.T) {
	// Range Jan–Mar 2025, current date Mar 2025, window 3: Jan/Feb cached >24h
	// ago, Mar never cached. All three must be fetched.
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))
	policy := NewPolicy(testConfig()).WithClock(fixedClock(now))
	planner := NewPlanner(store, policy)

	backend.Seed(
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 1}, LastUpdated: now.Add(-30 * time.Hour)},
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 2}, LastUpdated: now.Add(-30 * time.Hour)},
	)

	plan := planner.Plan(
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		false,
	)

	fetch, fromStore := planKeys(plan)
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, fetch)
	assert.Empty(t, fromStore)

	for _, m := range plan.ToFetch {
		assert.True(t, m.Complete, "%s should cover the whole month", m.Label)
	}
}

func TestPlanColdScenario(t *testing.T) {
	// Same cached months but current date Jun 2025: Jan–Mar are cold now, so
	// they are served from store regardless of age.
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))
	policy := NewPolicy(testConfig()).WithClock(fixedClock(now))
	planner := NewPlanner(store, policy)

	stale := now.AddDate(0, -3, 0)
	backend.Seed(
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 1}, LastUpdated: stale},
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 2}, LastUpdated: stale},
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 3}, LastUpdated: stale},
	)

	plan := planner.Plan(
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		false,
	)

	fetch, fromStore := planKeys(plan)
	assert.Empty(t, fetch)
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, fromStore)
}

func TestPlanForceRefreshBypassesPolicy(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))
	policy := NewPolicy(testConfig()).WithClock(fixedClock(now))
	planner := NewPlanner(store, policy)

	// Fresh in-window entries that would normally be served from store.
	backend.Seed(
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 5}, LastUpdated: now.Add(-time.Hour)},
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 6}, LastUpdated: now.Add(-time.Hour)},
	)

	plan := planner.Plan(
		time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		true,
	)

	fetch, fromStore := planKeys(plan)
	assert.Equal(t, []string{"2025-05", "2025-06"}, fetch)
	assert.Empty(t, fromStore)
}

func TestPlanClipsBoundaryMonths(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))
	policy := NewPolicy(testConfig()).WithClock(fixedClock(now))
	planner := NewPlanner(store, policy)

	plan := planner.Plan(
		time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		false,
	)

	require.Len(t, plan.ToFetch, 3)

	jan := plan.ToFetch[0]
	assert.False(t, jan.Complete)
	assert.Equal(t, "2025-01-15", jan.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-01-31", jan.End.Format("2006-01-02"))

	feb := plan.ToFetch[1]
	assert.True(t, feb.Complete)
	assert.Equal(t, "2025-02-01", feb.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", feb.End.Format("2006-01-02"))

	mar := plan.ToFetch[2]
	assert.False(t, mar.Complete)
	assert.Equal(t, "2025-03-01", mar.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-10", mar.End.Format("2006-01-02"))
}
