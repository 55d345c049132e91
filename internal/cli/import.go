package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func newImportCSVCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import-csv",
		Short: "Import a bank statement CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.reconciliation.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "path to the statement CSV")
	return cmd
}
