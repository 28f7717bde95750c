// Package core provides shared constants and configuration for the salesops CLI.
package core

import "time"

// ERP proxy configuration
const (
	ProxyURLEnvVar = "SALESOPS_PROXY_URL"
	ERPUserEnvVar  = "SALESOPS_ERP_USER"
	ERPPassEnvVar  = "SALESOPS_ERP_PASSWORD"
	LogLevelEnvVar = "SALESOPS_LOG_LEVEL"
	CacheDirEnvVar = "SALESOPS_CACHE_DIR"
)

// Date formats
const (
	DateFmt     = "2006-01-02"
	DatetimeFmt = "2006-01-02 15:04:05"
	MonthFmt    = "2006-01"
	LabelFmt    = "Jan/2006"
)

// Cache defaults
const (
	DefaultRefreshWindowMonths  = 3
	DefaultMaxCacheAge          = 24 * time.Hour
	DefaultMaxRequestSpanMonths = 12
	DefaultInterMonthDelay      = 500 * time.Millisecond
	DefaultRetryBudget          = 2
	DefaultSummaryRecordCeiling = 20000
)

// Retry backoff bases per failure class
const (
	BackoffBaseRateLimit = 5 * time.Second
	BackoffBaseTimeout   = 2 * time.Second
	BackoffBaseOther     = 1 * time.Second
)

// Version is the current CLI version.
const Version = "0.3.0"
