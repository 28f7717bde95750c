// Package output provides terminal rendering for records and summaries.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/andrefarina/salesops-cli-go/internal/cache"
	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/erp"
)

// PrintJSON prints any value as indented JSON.
func PrintJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// PrintRecordsTable renders sale lines as an aligned table with a totals row.
func PrintRecordsTable(records []erp.SaleLineRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tBRANCH\tSALE\tITEM\tQTY\tNET\tPROFIT")

	totalNet := decimal.Zero
	totalProfit := decimal.Zero
	for _, r := range records {
		date := ""
		if !r.SaleDate.IsZero() {
			date = core.FormatDate(r.SaleDate)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			date, r.BranchID, r.SaleID, r.ItemDesc,
			r.Quantity.String(), r.NetAmount.StringFixed(2), r.Profit.StringFixed(2))
		totalNet = totalNet.Add(r.NetAmount)
		totalProfit = totalProfit.Add(r.Profit)
	}

	fmt.Fprintf(w, "TOTAL\t\t\t%d lines\t\t%s\t%s\n",
		len(records), totalNet.StringFixed(2), totalProfit.StringFixed(2))
	w.Flush()
}

// PrintSummaryTable renders the cache summary for `salesops summary`.
func PrintSummaryTable(s cache.ManagerSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Cached months:\t%d\n", s.EntryCount)
	fmt.Fprintf(w, "Cached records:\t%d\n", s.RecordCount)
	fmt.Fprintf(w, "Estimated size:\t%d bytes\n", s.SizeBytes)
	if !s.Oldest.IsZero() {
		fmt.Fprintf(w, "Oldest entry:\t%s\n", s.Oldest.Format(core.DatetimeFmt))
		fmt.Fprintf(w, "Newest entry:\t%s\n", s.Newest.Format(core.DatetimeFmt))
	}
	w.Flush()

	if len(s.Months) > 0 {
		hot := make(map[string]bool, len(s.HotMonths))
		for _, k := range s.HotMonths {
			hot[k.String()] = true
		}
		fmt.Println("Months:")
		for _, k := range s.Months {
			badge := ""
			if hot[k.String()] {
				badge = "  (will auto-refresh)"
			}
			fmt.Printf("  %s%s\n", k.Label(), badge)
		}
	}

	if s.Consolidated != nil {
		c := s.Consolidated
		fmt.Printf("Last load: %s to %s: %d records, %d sales, revenue %s\n",
			core.FormatDate(c.PeriodFrom), core.FormatDate(c.PeriodTo),
			c.RecordCount, c.UniqueSales, c.TotalRevenue.StringFixed(2))
	}
}

// PrintOutcome writes the user-facing load outcome line to stderr,
// distinguishing full success, partial success, total failure and
// cancellation.
func PrintOutcome(result cache.LoadResult) {
	switch result.Status {
	case cache.StatusSuccess:
		fmt.Fprintf(os.Stderr, "Loaded %d records (%d from cache, %d fetched)\n",
			len(result.Records), result.FromCache, result.Fetched)
	case cache.StatusPartial:
		fmt.Fprintf(os.Stderr, "Loaded %d records; %d month(s) failed:\n",
			len(result.Records), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Label, e.Err)
		}
	case cache.StatusFailed:
		fmt.Fprintln(os.Stderr, "Could not load any data:")
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Label, e.Err)
		}
	case cache.StatusCancelled:
		fmt.Fprintln(os.Stderr, "Load cancelled; previously loaded data is unchanged")
	}
}

// PrintProgress writes one progress line to stderr (unless quiet).
func PrintProgress(p cache.LoadProgress, quiet bool) {
	if quiet || !p.Active || p.CurrentLabel == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "Fetching %s... (%d/%d months, %d records)\n",
		p.CurrentLabel, p.DoneMonths, p.TotalMonths, p.Records)
}
