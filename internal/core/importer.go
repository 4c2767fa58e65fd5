package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// Importer runs the order import pipeline:
//
//	decode -> header check -> fetch catalog -> normalize and validate rows -> aggregate
//
// An Importer holds no per-import state and is safe for concurrent use.
type Importer struct {
	gateway   InventoryGateway
	logger    *slog.Logger
	normalize func(row []string) OrderRecord
}

// NewImporter creates an Importer that validates against gateway.
func NewImporter(gateway InventoryGateway, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{gateway: gateway, logger: logger, normalize: NormalizeRow}
}

// Import processes one order file.
//
// The returned ImportResult is always well-formed. When the import is
// aborted (unreadable file, too few rows, wrong header, catalog fetch
// failure) the result has Success=false and the error is a *ImportError
// describing the failure. Row-level problems never produce an error; they
// are recorded on the affected OrderRecord.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	logger := im.logger.With("file", req.FileName, "warehouse_id", req.WarehouseID)

	table, err := im.decode(ctx, req)
	if err != nil {
		ie := newReadError(err)
		logger.Warn("import: decode failed", "error", err)
		return failedResult(ie), ie
	}

	if err := ValidateHeader(table); err != nil {
		ie := err.(*ImportError)
		logger.Info("import: header rejected", "kind", ie.Kind, "reason", ie.Message)
		return failedResult(ie), ie
	}

	products, err := im.gateway.FetchCatalog(ctx, req.WarehouseID)
	if err != nil {
		ie := newGatewayError(err)
		logger.Error("import: catalog fetch failed", "error", err)
		return failedResult(ie), ie
	}
	catalog := NewCatalog(req.WarehouseID, products)
	logger.Debug("import: catalog loaded", "products", len(products))

	validator := NewFieldValidator(catalog)
	dataRows := table[1:]
	orders := make([]OrderRecord, len(dataRows))
	for i, row := range dataRows {
		orders[i] = im.processRow(validator, row)
	}

	result := Aggregate(orders)
	logger.Info("import: processed",
		"total_rows", result.TotalRows,
		"valid_rows", result.ValidRows,
		"error_rows", result.ErrorRows,
	)
	return result, nil
}

func (im *Importer) decode(ctx context.Context, req ImportRequest) (RawTable, error) {
	dec, err := DecoderFor(req.FileType)
	if err != nil {
		return nil, err
	}
	return dec.Decode(ctx, bytes.NewReader(req.Data))
}

// processRow normalizes and validates one data row. A panic in either step
// becomes a row error on that record; the import carries on.
func (im *Importer) processRow(v *FieldValidator, row []string) OrderRecord {
	rec := OrderRecord{
		OrderID:  cellAt(row, ColOrderID),
		Products: []ProductLine{},
		Errors:   []string{},
		Warnings: []string{},
	}
	guardRow(&rec, func() {
		rec = im.normalize(row)
		v.Validate(&rec)
	})
	return rec
}

func guardRow(rec *OrderRecord, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("import: panic while processing row", "order_id", rec.OrderID, "panic", r)
			rec.addError(fmt.Sprintf("Unexpected error while processing row: %v", r))
		}
	}()
	fn()
}
