package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/orderimport/internal/batch"
	"github.com/JonMunkholm/orderimport/internal/core"
)

func newBatchCmd() *cobra.Command {
	var (
		dir    string
		opts   batch.Options
		source sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Validate every order file in a directory",
		Long: `Validate every .csv and .xlsx file in a directory. For each file with
rejected orders a "<name> - failed.csv" report is written next to it.
A JSON summary is printed to stdout.

Exit status is 1 when any file was rejected and 2 when only orders were.

Example: orderimport batch --dir ./uploads --warehouse WH-1 --inventory-url https://inventory.local/api --move`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := source.gateway()
			if err != nil {
				return err
			}

			summary, err := batch.ProcessDir(cmd.Context(), core.NewImporter(gw, slog.Default()), dir, opts)
			if err != nil {
				return &exitError{code: exitFailed, err: err}
			}
			if err := writeIndentedJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}

			switch {
			case summary.Failed > 0:
				return &exitError{code: exitFailed}
			case summary.ErrorRows > 0:
				return &exitError{code: exitRowErrors}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding order files")
	cmd.Flags().StringVar(&opts.WarehouseID, "warehouse", "", "Warehouse id the orders ship from")
	cmd.Flags().BoolVar(&opts.Move, "move", false, "Move processed files into a "+batch.ProcessedDir+" subdirectory")
	cmd.MarkFlagRequired("dir")
	cmd.MarkFlagRequired("warehouse")
	source.register(cmd)

	return cmd
}
