// Package erp defines the sale-line data model and the opaque fetch boundary
// to the remote ERP query proxy.
package erp

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRecord is one line item of one sale, exactly as the ERP reports it.
// All lines of a sale share SaleID. Records are immutable once fetched; the
// cache trusts the source and never deduplicates.
//
// SaleDate must be an RFC 3339 timestamp on the wire. Records whose date
// fails to parse arrive with a zero SaleDate and are excluded from month
// bucketing (but not from result sets).
type SaleLineRecord struct {
	BranchID      string          `json:"branchId"`
	SalespersonID string          `json:"salespersonId"`
	SaleID        string          `json:"saleId"`
	SaleDate      time.Time       `json:"saleDate"`
	ItemDesc      string          `json:"itemDesc"`
	ItemTypeCode  string          `json:"itemTypeCode"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	GrossAmount   decimal.Decimal `json:"grossAmount"`
	DiscountShare decimal.Decimal `json:"discountShare"`
	NetAmount     decimal.Decimal `json:"netAmount"`
	Commission    decimal.Decimal `json:"commission"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPct     decimal.Decimal `json:"profitPct"`
}

// Credentials identify the ERP account used by the query proxy.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ErrorKind classifies a fetch failure. The loader's retry policy keys off it:
// credential failures are never retried, rate limits back off longest,
// timeouts medium, everything else shortest.
type ErrorKind string

const (
	KindNeedsCredentials   ErrorKind = "needsCredentials"
	KindInvalidCredentials ErrorKind = "invalidCredentials"
	KindRateLimit          ErrorKind = "rateLimit"
	KindTimeout            ErrorKind = "timeout"
	KindOther              ErrorKind = "other"
)

// FetchError is the classified error returned by the fetch boundary.
type FetchError struct {
	Kind    ErrorKind
	Message string
}

func (e *FetchError) Error() string {
	return e.Message
}

// IsCredential reports whether the error is a credential failure (not retryable).
func (e *FetchError) IsCredential() bool {
	return e.Kind == KindNeedsCredentials || e.Kind == KindInvalidCredentials
}

// KindOf extracts the ErrorKind from err, defaulting to KindOther.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindOther
}

// FetchFunc is the single external collaborator of the cache: given a date
// range it performs the remote round-trip (authentication and query) and
// returns the flat sale-line list or a classified error.
type FetchFunc func(ctx context.Context, start, end time.Time) ([]SaleLineRecord, error)
