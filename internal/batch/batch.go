// Package batch validates every order file in a directory and writes a
// failure report next to each file that has rejected rows.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// ProcessedDir is the subdirectory files are moved to when Options.Move is set.
const ProcessedDir = "Processed"

// reportSuffix ends the name of every failure report.
const reportSuffix = " - failed.csv"

// reportHeader is the first row of a failure report.
var reportHeader = []string{"Status", "Line", "ORDER ID", "CUSTOMER NAME", "PRODUCT ID"}

// Options controls a batch run.
type Options struct {
	WarehouseID string
	// Move processed files into ProcessedDir so a rerun skips them.
	Move bool
}

// FileReport is the outcome for one file.
type FileReport struct {
	File       string            `json:"file"`
	Result     core.ImportResult `json:"result"`
	Error      string            `json:"error,omitempty"`
	ReportPath string            `json:"reportPath,omitempty"`
}

// Summary aggregates a whole run.
type Summary struct {
	Files     []FileReport `json:"files"`
	Failed    int          `json:"failedFiles"`
	ErrorRows int          `json:"errorRows"`
}

// ProcessDir runs every .csv and .xlsx file directly inside dir through the
// importer. A file-level failure is recorded on its FileReport and does not
// stop the run; only cancellation and filesystem errors do.
func ProcessDir(ctx context.Context, im *core.Importer, dir string, opts Options) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	summary := &Summary{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), reportSuffix) {
			continue
		}
		fileType, err := core.DetectFileType("", entry.Name(), "")
		if err != nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("operation cancelled: %w", err)
		}

		report, err := processFile(ctx, im, dir, entry.Name(), fileType, opts)
		if err != nil {
			return summary, err
		}
		summary.Files = append(summary.Files, report)
		if report.Error != "" {
			summary.Failed++
		}
		summary.ErrorRows += report.Result.ErrorRows
	}
	return summary, nil
}

func processFile(ctx context.Context, im *core.Importer, dir, name string, fileType core.FileType, opts Options) (FileReport, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return FileReport{}, fmt.Errorf("reading %s: %w", name, err)
	}

	report := FileReport{File: name}
	result, err := im.Import(ctx, core.ImportRequest{
		FileName:    name,
		FileType:    fileType,
		Data:        data,
		WarehouseID: opts.WarehouseID,
	})
	report.Result = result
	if err != nil {
		report.Error = result.Message
		slog.Warn("batch: file rejected", "file", name, "error", err)
		return report, nil
	}

	if result.ErrorRows > 0 {
		reportName := strings.TrimSuffix(name, filepath.Ext(name)) + reportSuffix
		report.ReportPath = filepath.Join(dir, reportName)
		if err := writeReport(report.ReportPath, result.Orders); err != nil {
			return report, fmt.Errorf("failed writing failure file: %w", err)
		}
	}

	if opts.Move {
		processed := filepath.Join(dir, ProcessedDir)
		if err := os.MkdirAll(processed, 0o755); err != nil {
			return report, fmt.Errorf("failed to create %s directory: %w", ProcessedDir, err)
		}
		if err := os.Rename(path, filepath.Join(processed, name)); err != nil {
			return report, fmt.Errorf("failed moving file %s: %w", name, err)
		}
	}
	return report, nil
}

// writeReport writes one line per rejected order. Line is the 1-based line
// of the order in the source file, counting the header.
func writeReport(path string, orders []core.OrderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return err
	}
	for i, o := range orders {
		if o.Valid() {
			continue
		}
		ids := make([]string, len(o.Products))
		for j, p := range o.Products {
			ids[j] = p.ID
		}
		row := []string{
			strings.Join(o.Errors, "; "),
			strconv.Itoa(i + 2),
			o.OrderID,
			o.Customer.Name,
			strings.Join(ids, "|"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
