// Package cli implements the command-line interface for the salesops CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/andrefarina/salesops-cli-go/internal/core"
)

// Global flags
var (
	verbose      bool
	quiet        bool
	raw          bool
	forceRefresh bool
	backendName  string
	cacheDir     string
	redisAddr    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "salesops",
	Short:   "salesops – query ERP sales data through the monthly cache",
	Long:    `A command-line utility for fetching ERP sale-line data with month-granular caching.`,
	Version: core.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		godotenv.Load()
		if verbose {
			core.SetVerbose()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress messages")
	rootCmd.PersistentFlags().BoolVar(&raw, "raw", false, "Emit raw JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&forceRefresh, "force-refresh", "f", false, "Refetch every month, bypassing cache freshness")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "fs", "Cache backend (memory|fs|redis|mysql)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory for the fs backend")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the redis backend")
}
