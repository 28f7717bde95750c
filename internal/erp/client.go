package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andrefarina/salesops-cli-go/internal/core"
)

// Client talks to the ERP query proxy: a single POST endpoint that performs
// the login handshake server-side and returns sale lines for a date range.
// The handshake itself is opaque to this client.
type Client struct {
	proxyURL   string
	creds      Credentials
	httpClient *http.Client
	log        *logrus.Logger
}

// queryRequest is the proxy request envelope.
type queryRequest struct {
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	Credentials Credentials `json:"credentials"`
}

// queryResponse is the proxy response envelope: either records or an error.
type queryResponse struct {
	Records []SaleLineRecord `json:"records"`
	Error   string           `json:"error,omitempty"`
	Kind    string           `json:"kind,omitempty"`
}

// NewClient creates a proxy client. Empty arguments fall back to the
// SALESOPS_PROXY_URL / SALESOPS_ERP_USER / SALESOPS_ERP_PASSWORD environment.
func NewClient(proxyURL string, creds Credentials) *Client {
	if proxyURL == "" {
		proxyURL = os.Getenv(core.ProxyURLEnvVar)
	}
	if creds.Username == "" {
		creds.Username = os.Getenv(core.ERPUserEnvVar)
		creds.Password = os.Getenv(core.ERPPassEnvVar)
	}
	return &Client{
		proxyURL: proxyURL,
		creds:    creds,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: core.GetLogger(),
	}
}

// FetchRange performs one query round-trip for [start, end]. It satisfies
// FetchFunc. Failures come back as *FetchError so the caller can classify
// them; retrying is the caller's concern, not this client's.
func (c *Client) FetchRange(ctx context.Context, start, end time.Time) ([]SaleLineRecord, error) {
	if c.proxyURL == "" {
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("missing %s", core.ProxyURLEnvVar)}
	}
	if c.creds.Username == "" {
		return nil, &FetchError{Kind: KindNeedsCredentials, Message: "no ERP credentials configured"}
	}

	body, err := json.Marshal(queryRequest{
		StartDate:   core.FormatDate(start),
		EndDate:     core.FormatDate(end),
		Credentials: c.creds,
	})
	if err != nil {
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("encode request: %v", err)}
	}

	c.log.WithFields(logrus.Fields{
		"start": core.FormatDate(start),
		"end":   core.FormatDate(end),
	}).Debug("erp query")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &FetchError{Kind: KindTimeout, Message: fmt.Sprintf("query timed out: %v", err)}
		}
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("read response: %v", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &FetchError{Kind: KindNeedsCredentials, Message: "ERP session expired or missing"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{Kind: KindInvalidCredentials, Message: "ERP rejected the configured credentials"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &FetchError{Kind: KindRateLimit, Message: fmt.Sprintf("rate limited (HTTP %d)", resp.StatusCode)}
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, &FetchError{Kind: KindTimeout, Message: fmt.Sprintf("upstream timeout (HTTP %d)", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(raw, 200))}
	}

	var payload queryResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &FetchError{Kind: KindOther, Message: fmt.Sprintf("parse response: %v", err)}
	}

	if payload.Error != "" {
		return nil, &FetchError{Kind: kindFromString(payload.Kind), Message: payload.Error}
	}

	c.log.WithField("records", len(payload.Records)).Debug("erp query done")
	return payload.Records, nil
}

func kindFromString(s string) ErrorKind {
	switch ErrorKind(s) {
	case KindNeedsCredentials, KindInvalidCredentials, KindRateLimit, KindTimeout:
		return ErrorKind(s)
	default:
		return KindOther
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var te timeouter
	return errors.As(err, &te) && te.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
