package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockbook/internal/export"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the master sheet to an .xlsx or .csv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			a, snap, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			grid, err := a.Service.Export(snap)
			if err != nil {
				return err
			}

			if out == "" {
				out = f.FileName("estoque_atualizado")
			}
			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, f, grid); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", snap.Table.Len(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "output format: xlsx or csv")
	cmd.Flags().StringVarP(&out, "output", "o", "", `output path ("-" for stdout)`)
	return cmd
}
