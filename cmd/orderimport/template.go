package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/orderimport/internal/core"
)

func newTemplateCmd() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty order file with the expected header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := core.DetectFileType(format, "", "")
			if err != nil {
				return err
			}

			var (
				w    io.Writer = cmd.OutOrStdout()
				file *os.File
			)
			if out != "" && out != "-" {
				file, err = os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			} else if ft == core.FileTypeXLSX {
				return fmt.Errorf("--out is required for xlsx")
			}

			if ft == core.FileTypeXLSX {
				err = core.WriteTemplateXLSX(w)
			} else {
				err = core.WriteTemplateCSV(w)
			}
			if err != nil {
				return err
			}
			if file != nil {
				return file.Close()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Template format: csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: stdout, csv only)")

	return cmd
}
