package cache

import (
	"time"

	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// Planner partitions a date range into months to fetch and months servable
// from the store.
type Planner struct {
	store  *Store
	policy *Policy
}

// NewPlanner creates a planner over the given store and policy.
func NewPlanner(store *Store, policy *Policy) *Planner {
	return &Planner{store: store, policy: policy}
}

// Plan enumerates every calendar month from dateFrom to dateTo inclusive and
// routes each to exactly one side of the partition. Both sides stay in
// chronological order so the loader processes months oldest first.
//
// With forceRefresh every month in the range goes to the fetch side, the
// policy is never consulted.
//
// Each fetch-side month carries its clipped sub-range: the overall request's
// boundary months may cover only part of their calendar month, and only a
// complete month may later be persisted.
func (p *Planner) Plan(dateFrom, dateTo time.Time, forceRefresh bool) Plan {
	from := core.DateOnly(dateFrom)
	to := core.DateOnly(dateTo)

	plan := Plan{
		ToFetch:   make([]PlannedMonth, 0),
		FromStore: make([]CachedMonth, 0),
	}

	last := monthkey.FromDate(to)
	for key := monthkey.FromDate(from); !key.After(last); key = key.Next() {
		if forceRefresh || p.policy.NeedsRefresh(key, p.store) {
			plan.ToFetch = append(plan.ToFetch, p.plannedMonth(key, from, to))
			continue
		}

		entry := p.store.Get(key)
		if entry == nil {
			// Entry vanished between the policy check and the read; route it
			// to the fetch side rather than serving an empty month.
			plan.ToFetch = append(plan.ToFetch, p.plannedMonth(key, from, to))
			continue
		}
		plan.FromStore = append(plan.FromStore, CachedMonth{Key: key, Records: entry.Records})
	}

	return plan
}

// plannedMonth clips the month's span to the overall request boundary and
// marks whether the clipped span still covers the whole calendar month.
func (p *Planner) plannedMonth(key monthkey.Key, from, to time.Time) PlannedMonth {
	start := key.Start()
	end := key.End()

	if from.After(start) {
		start = from
	}
	if to.Before(end) {
		end = to
	}

	return PlannedMonth{
		Key:      key,
		Label:    key.Label(),
		Start:    start,
		End:      end,
		Complete: start.Equal(key.Start()) && end.Equal(key.End()),
	}
}
