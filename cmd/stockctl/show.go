package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the master sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, snap, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			grid, err := a.Service.Export(snap)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, row := range grid {
				// Row 1 holds labels; the machine names are enough here.
				if i == 1 {
					continue
				}
				if limit > 0 && i-2 >= limit {
					break
				}
				fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if snap.FromTemplate {
				fmt.Fprintln(cmd.ErrOrStderr(), "master sheet unusable; showing the template")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d rows\n", snap.Table.Len())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n rows (0 for all)")
	return cmd
}
