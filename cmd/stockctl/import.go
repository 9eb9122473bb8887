package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockbook/internal/core"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var manufacturer, supplier string

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Merge invoice PDFs into the master sheet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoices := make([]core.Invoice, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				invoices = append(invoices, core.Invoice{
					Name:         filepath.Base(path),
					Data:         data,
					Manufacturer: manufacturer,
					Supplier:     supplier,
				})
			}

			a, snap, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			_, report, err := a.Service.Import(cmd.Context(), snap, invoices)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if report.Merged == 0 {
				return errors.New("no invoice merged")
			}
			if report.Skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d invoices skipped\n", report.Skipped, len(invoices))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "FABRICANTE stamped on every imported row")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Forn_Prod stamped on every imported row")
	return cmd
}
