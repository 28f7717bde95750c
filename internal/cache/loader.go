package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/erp"
)

// Loader executes a plan's fetch side month by month.
//
// Months are processed strictly sequentially, oldest first, with a fixed
// pause between months so the ERP is never hammered. Each month gets a small
// retry budget with backoff tiered by failure class; a month that still
// fails after retries is recorded in the error list and the loader moves on.
// Only a fetch whose span covers the whole calendar month is persisted --
// clipped boundary months feed the response but never the store.
//
// Cancellation is cooperative: the context is polled at the top of each month
// iteration, never mid-fetch. A cancelled run keeps whatever months were
// already persisted but discards the accumulated in-memory result.
type Loader struct {
	store *Store
	cfg   Config
	log   *logrus.Logger
}

// NewLoader creates a loader persisting through store.
func NewLoader(store *Store, cfg Config) *Loader {
	return &Loader{
		store: store,
		cfg:   cfg,
		log:   core.GetLogger(),
	}
}

// Load fetches every month in plan.ToFetch and merges the results with the
// plan's store-resolved months, chronologically. onProgress (may be nil) is
// invoked after every month, success or failure.
func (l *Loader) Load(ctx context.Context, plan Plan, fetch erp.FetchFunc, onProgress ProgressFunc) LoadResult {
	result := LoadResult{Status: StatusSuccess}

	for _, cached := range plan.FromStore {
		result.Records = append(result.Records, cached.Records...)
		result.FromCache += len(cached.Records)
	}

	progress := LoadProgress{
		Active:      true,
		TotalMonths: len(plan.ToFetch),
		Records:     result.FromCache,
	}
	report := func() {
		if onProgress != nil {
			snapshot := progress
			snapshot.Errors = append([]MonthError(nil), progress.Errors...)
			onProgress(snapshot)
		}
	}

	fetched := make([]erp.SaleLineRecord, 0)

	for i, month := range plan.ToFetch {
		if err := ctx.Err(); err != nil {
			l.log.WithField("month", month.Label).Debug("load cancelled")
			progress.Active = false
			progress.Cancelled = true
			report()
			return LoadResult{Status: StatusCancelled}
		}

		if i > 0 {
			if !sleepCtx(ctx, l.cfg.InterMonthDelay) {
				progress.Active = false
				progress.Cancelled = true
				report()
				return LoadResult{Status: StatusCancelled}
			}
		}

		progress.CurrentLabel = month.Label
		report()

		records, err := l.fetchMonth(ctx, month, fetch)
		if err != nil {
			progress.Errors = append(progress.Errors, MonthError{
				Key:   month.Key,
				Label: month.Label,
				Kind:  erp.KindOf(err),
				Err:   err.Error(),
			})
			progress.DoneMonths++
			report()
			continue
		}

		if month.Complete {
			if werr := l.store.Set(month.Key, records); werr != nil {
				l.log.WithFields(logrus.Fields{"month": month.Label}).WithError(werr).Warn("persist month failed")
			}
		}

		fetched = append(fetched, records...)
		result.Fetched += len(records)
		progress.DoneMonths++
		progress.Records = result.FromCache + result.Fetched
		report()
	}

	result.Records = append(result.Records, fetched...)
	result.Errors = progress.Errors

	// Total failure requires every planned month to have failed. Months the
	// planner served from the store did not fail, so their records still make
	// the load a partial success.
	switch {
	case len(plan.ToFetch) > 0 && len(result.Errors) == len(plan.ToFetch) && len(plan.FromStore) == 0:
		result.Status = StatusFailed
		result.Records = nil
	case len(result.Errors) > 0:
		result.Status = StatusPartial
	}

	progress.Active = false
	progress.CurrentLabel = ""
	report()

	return result
}

// fetchMonth performs one month's fetch with the retry budget. Credential
// failures are returned immediately -- retrying the same bad credentials
// cannot succeed.
func (l *Loader) fetchMonth(ctx context.Context, month PlannedMonth, fetch erp.FetchFunc) ([]erp.SaleLineRecord, error) {
	attempts := l.cfg.RetryBudget + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		records, err := fetch(ctx, month.Start, month.End)
		if err == nil {
			return records, nil
		}
		lastErr = err

		var fe *erp.FetchError
		if errors.As(err, &fe) && fe.IsCredential() {
			return nil, err
		}

		if attempt < attempts {
			wait := l.backoff(erp.KindOf(err), attempt)
			l.log.WithFields(logrus.Fields{
				"month":   month.Label,
				"attempt": attempt,
				"kind":    erp.KindOf(err),
				"wait":    wait.String(),
			}).Debug("fetch failed; retrying")
			if !sleepCtx(ctx, wait) {
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

// backoff returns the delay before the next attempt, scaled by attempt
// number and tiered by failure class.
func (l *Loader) backoff(kind erp.ErrorKind, attempt int) time.Duration {
	var base time.Duration
	switch kind {
	case erp.KindRateLimit:
		base = l.cfg.BackoffRateLimit
	case erp.KindTimeout:
		base = l.cfg.BackoffTimeout
	default:
		base = l.cfg.BackoffOther
	}
	return base * time.Duration(attempt)
}

// sleepCtx sleeps for d unless ctx is done first; returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
