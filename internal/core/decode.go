package core

// decode.go turns uploaded bytes into a RawTable.
//
// Two strategies exist, selected by the declared FileType:
//   - DelimitedDecoder: comma-separated text with RFC 4180 quoting
//   - SpreadsheetDecoder: first sheet of an .xlsx workbook
//
// Both produce plain string cells; numeric interpretation happens later.
// Rows whose cells are all blank are dropped by both, so a blank line in a
// CSV and an empty row in a sheet never become orders.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Decoder converts raw file content into a RawTable.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (RawTable, error)
}

// DecoderFor returns the decoding strategy for a file type.
func DecoderFor(ft FileType) (Decoder, error) {
	switch ft {
	case FileTypeCSV:
		return DelimitedDecoder{}, nil
	case FileTypeXLSX:
		return SpreadsheetDecoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", ft)
	}
}

// DetectFileType resolves a FileType from an explicit declaration, the file
// name extension, or a MIME content type, in that order.
func DetectFileType(declared, fileName, contentType string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "csv", "text/csv":
		return FileTypeCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FileTypeXLSX, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported file type: %q", declared)
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	}

	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mt {
			case "text/csv", "text/plain", "application/csv":
				return FileTypeCSV, nil
			case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
				return FileTypeXLSX, nil
			}
		}
	}

	return "", fmt.Errorf("unsupported file type: %q", fileName)
}

// contextCheckInterval is how often, in records, decoding checks for
// cancellation.
const contextCheckInterval = 100

// DelimitedDecoder reads comma-separated text. Quoted fields may contain
// commas and newlines; a doubled quote inside a quoted field is one quote.
type DelimitedDecoder struct{}

// Decode implements Decoder. ctx is checked every contextCheckInterval
// records.
func (DelimitedDecoder) Decode(ctx context.Context, r io.Reader) (RawTable, error) {
	cr := csv.NewReader(newDelimitedReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var table RawTable
	for i := 0; ; i++ {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse delimited file: %w", err)
		}
		if blankRow(record) {
			continue
		}
		table = append(table, record)
	}
	return table, nil
}

// SpreadsheetDecoder reads the first sheet of a workbook. Every cell is
// rendered with its display format, so numbers and dates come back as the
// seller sees them.
type SpreadsheetDecoder struct{}

// Decode implements Decoder.
func (SpreadsheetDecoder) Decode(ctx context.Context, r io.Reader) (RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open spreadsheet: no sheets found")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var table RawTable
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		table = append(table, row)
	}
	return table, nil
}

// blankRow reports whether every cell is empty or whitespace.
func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
