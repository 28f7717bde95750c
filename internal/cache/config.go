package cache

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/andrefarina/salesops-cli-go/internal/core"
)

// Config is the explicit cache configuration value object. A zero Config is
// not usable; start from DefaultConfig and override fields as needed.
type Config struct {
	// RefreshWindowMonths is the number of most-recent calendar months
	// considered hot and therefore subject to age-based expiry.
	RefreshWindowMonths int `validate:"min=1"`

	// MaxCacheAge is how long a hot month's entry stays usable before a
	// refresh is required.
	MaxCacheAge time.Duration `validate:"min=1m"`

	// MaxRequestSpanMonths caps the inclusive month span of a single range
	// request.
	MaxRequestSpanMonths int `validate:"min=1"`

	// InterMonthDelay is the pause between consecutive month fetches.
	InterMonthDelay time.Duration `validate:"min=0"`

	// RetryBudget is the number of retries after the first attempt.
	RetryBudget int `validate:"min=0,max=10"`

	// SummaryRecordCeiling: above this many records the consolidated-summary
	// write is skipped to keep large loads responsive.
	SummaryRecordCeiling int `validate:"min=0"`

	// Backoff bases per failure class, scaled by attempt number.
	BackoffRateLimit time.Duration `validate:"min=0"`
	BackoffTimeout   time.Duration `validate:"min=0"`
	BackoffOther     time.Duration `validate:"min=0"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RefreshWindowMonths:  core.DefaultRefreshWindowMonths,
		MaxCacheAge:          core.DefaultMaxCacheAge,
		MaxRequestSpanMonths: core.DefaultMaxRequestSpanMonths,
		InterMonthDelay:      core.DefaultInterMonthDelay,
		RetryBudget:          core.DefaultRetryBudget,
		SummaryRecordCeiling: core.DefaultSummaryRecordCeiling,
		BackoffRateLimit:     core.BackoffBaseRateLimit,
		BackoffTimeout:       core.BackoffBaseTimeout,
		BackoffOther:         core.BackoffBaseOther,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid cache config: %w", err)
	}
	return nil
}
