// Package main is the entry point for the sqlbridge CLI, a small shell
// for running SQL against any registered backend through one uniform
// API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sqlbridge/sqlbridge/internal/debug"

	// Registered backends, selectable by URL scheme.
	_ "github.com/sqlbridge/sqlbridge/adapters/duckdb"
	_ "github.com/sqlbridge/sqlbridge/adapters/mysql"
	_ "github.com/sqlbridge/sqlbridge/adapters/postgres"
	_ "github.com/sqlbridge/sqlbridge/adapters/sqlite"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Pick up DATABASE_URL from a .env file when present.
	_ = godotenv.Load()

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:     "sqlbridge",
		Short:   "Uniform SQL access over heterogeneous database backends",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(opts.debug)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.url, "url", "", "database URL (defaults to $DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newQueryCommand(opts))
	rootCmd.AddCommand(newExecCommand(opts))
	rootCmd.AddCommand(newPingCommand(opts))
	rootCmd.AddCommand(newSchemesCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd.Execute()
}
