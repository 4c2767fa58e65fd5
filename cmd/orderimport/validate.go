package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/orderimport/internal/core"
)

func newValidateCmd() *cobra.Command {
	var (
		file      string
		warehouse string
		fileType  string
		source    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one order file and print the result as JSON",
		Long: `Validate one order file against the catalog of a warehouse.

Exit status is 0 when every order is valid, 1 when the file itself was
rejected, and 2 when some orders have errors.

Example: orderimport validate --file orders.xlsx --warehouse WH-1 --catalog catalog.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := source.gateway()
			if err != nil {
				return err
			}

			ft, err := core.DetectFileType(fileType, file, "")
			if err != nil {
				return &exitError{code: exitFailed, err: err}
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return &exitError{code: exitFailed, err: err}
			}

			result, importErr := core.NewImporter(gw, slog.Default()).Import(cmd.Context(), core.ImportRequest{
				FileName:    filepath.Base(file),
				FileType:    ft,
				Data:        data,
				WarehouseID: warehouse,
			})
			if err := writeIndentedJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			switch {
			case importErr != nil:
				return &exitError{code: exitFailed, err: fmt.Errorf("import failed: %w", importErr)}
			case result.ErrorRows > 0:
				return &exitError{code: exitRowErrors}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Order file (.csv or .xlsx)")
	cmd.Flags().StringVar(&warehouse, "warehouse", "", "Warehouse id the orders ship from")
	cmd.Flags().StringVar(&fileType, "type", "", "File type: csv or xlsx (default: from extension)")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("warehouse")
	source.register(cmd)

	return cmd
}
