// Package cli is the back-office command line: the API server, schema
// migration and the scheduled jobs.
package cli

import (
	"encoding/json"
	"io"
	"time"

	"loan-backoffice/internal/config"
	"loan-backoffice/pkg/calendar"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Settings come from the environment.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "backoffice",
		Short:        "Loan back-office settlement and reconciliation service",
		Long:         "Disbursement approval, promissory notes, interest accrual and bank statement reconciliation.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newAccrueCmd(),
		newMarkOverdueCmd(),
		newDailyCmd(),
		newImportCSVCmd(),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// loadApp reads and validates the environment, then wires the app.
func loadApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newApp(cfg)
}

// dateFlag parses --date, defaulting to today (UTC).
func dateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return calendar.Today(), nil
	}
	return calendar.Parse(raw)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
