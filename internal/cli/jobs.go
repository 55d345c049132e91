package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// jobCmd wires a scheduled job behind a --date flag.
func jobCmd(use, short string, run func(ctx context.Context, a *app, day time.Time) (any, error)) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(date)
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := run(cmd.Context(), a, day)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "business date YYYY-MM-DD (default today, UTC)")
	return cmd
}

func newAccrueCmd() *cobra.Command {
	return jobCmd("accrue", "Accrue interest on every active and overdue note",
		func(ctx context.Context, a *app, day time.Time) (any, error) {
			return a.runner.Accrue(ctx, day)
		})
}

func newMarkOverdueCmd() *cobra.Command {
	return jobCmd("mark-overdue", "Mark active notes past their due date as overdue",
		func(ctx context.Context, a *app, day time.Time) (any, error) {
			n, err := a.runner.MarkOverdue(ctx, day)
			return map[string]int{"overdue_marked": n}, err
		})
}

func newDailyCmd() *cobra.Command {
	return jobCmd("daily", "Run the overdue sweep and then interest accrual",
		func(ctx context.Context, a *app, day time.Time) (any, error) {
			return a.runner.Daily(ctx, day)
		})
}
