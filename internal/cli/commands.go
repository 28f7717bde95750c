package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrefarina/salesops-cli-go/internal/cache"
	"github.com/andrefarina/salesops-cli-go/internal/core"
	"github.com/andrefarina/salesops-cli-go/internal/erp"
	"github.com/andrefarina/salesops-cli-go/internal/output"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Relative period commands
	for _, period := range []string{"this-month", "last-month", "this-quarter", "last-quarter"} {
		rootCmd.AddCommand(createPeriodCmd(period))
	}
}

// fetchCmd handles explicit date-range queries
var fetchCmd = &cobra.Command{
	Use:   "fetch [from] [to]",
	Short: "Fetch sale lines for a date range (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	RunE:  handleFetch,
}

// summaryCmd prints the cache summary
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show cached months, sizes and the last load summary",
	RunE:  handleSummary,
}

// cacheCmd groups cache maintenance subcommands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache maintenance",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-month cache status",
	RunE:  handleSummary,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached month and the consolidated summary",
	RunE:  handleCacheClear,
}

func handleFetch(cmd *cobra.Command, args []string) error {
	from, err := core.ParseDate(args[0])
	if err != nil {
		return err
	}
	to, err := core.ParseDate(args[1])
	if err != nil {
		return err
	}
	return runLoad(from, to)
}

func createPeriodCmd(period string) *cobra.Command {
	return &cobra.Command{
		Use:   period,
		Short: fmt.Sprintf("Fetch sale lines for %s", period),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := core.GetTimeRange(period, time.Now())
			if err != nil {
				return err
			}
			return runLoad(from, to)
		},
	}
}

func runLoad(from, to time.Time) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	// Ctrl-C cancels cooperatively between months.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := erp.NewClient("", erp.Credentials{})

	if !quiet {
		fmt.Fprintf(os.Stderr, "Loading sale lines from %s to %s...\n", core.FormatDate(from), core.FormatDate(to))
	}

	result, err := manager.LoadRange(ctx, from, to, forceRefresh, client.FetchRange, func(p cache.LoadProgress) {
		output.PrintProgress(p, quiet)
	})
	if err != nil {
		return err
	}

	output.PrintOutcome(result)

	if result.Status == cache.StatusSuccess || result.Status == cache.StatusPartial {
		if raw {
			output.PrintJSON(result.Records)
		} else {
			output.PrintRecordsTable(result.Records)
		}
	}
	return nil
}

func handleSummary(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	summary, err := manager.Summary()
	if err != nil {
		return err
	}
	if raw {
		output.PrintJSON(summary)
	} else {
		output.PrintSummaryTable(summary)
	}
	return nil
}

func handleCacheClear(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}
	if err := manager.ClearAll(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Cache cleared")
	return nil
}

// newManager builds the cache manager for the selected backend.
func newManager() (*cache.Manager, error) {
	var backend cache.Backend
	var err error

	switch backendName {
	case "memory":
		backend = cache.NewMemoryBackend()
	case "fs":
		backend = cache.NewFilesystemBackend(cacheDir)
	case "redis":
		backend, err = cache.NewRedisBackend(redisAddr)
	case "mysql":
		backend, err = cache.NewDatabaseBackend()
	default:
		return nil, fmt.Errorf("unknown backend '%s' (expected memory, fs, redis or mysql)", backendName)
	}
	if err != nil {
		return nil, err
	}

	return cache.NewManager(backend, cache.DefaultConfig())
}
