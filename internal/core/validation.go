package core

// validation.go checks a normalized order row against business rules.
//
// Validation happens at two levels:
//  1. Row level: required order fields are present
//  2. Product line level: price and quantity parse, and the product exists in
//     the catalog snapshot with an approved expedition and enough stock
//
// Every applicable problem is recorded; validation never stops at the first.
// Stock shortfalls are warnings and leave the row valid.

import (
	"fmt"
	"strings"
)

// FieldValidator validates order records against one catalog snapshot.
// The snapshot is passed in explicitly so the validator holds no shared
// state and can be exercised with a hand-built catalog.
type FieldValidator struct {
	catalog *Catalog
}

// NewFieldValidator creates a validator bound to a catalog snapshot.
func NewFieldValidator(catalog *Catalog) *FieldValidator {
	return &FieldValidator{catalog: catalog}
}

// Validate records all errors and warnings for rec in place.
func (v *FieldValidator) Validate(rec *OrderRecord) {
	if strings.TrimSpace(rec.OrderID) == "" {
		rec.addError(msgOrderIDRequired)
	}
	if strings.TrimSpace(rec.Customer.Name) == "" {
		rec.addError(msgCustomerRequired)
	}

	for i := range rec.Products {
		v.validateLine(rec, &rec.Products[i])
	}
}

func (v *FieldValidator) validateLine(rec *OrderRecord, line *ProductLine) {
	line.Price, line.priceOK = parseNumber(line.RawPrice)
	if !line.priceOK {
		rec.addError(fmt.Sprintf("Invalid price %q for product %s", line.RawPrice, line.ID))
	}

	line.Quantity, line.quantityOK = parseNumber(line.RawQuantity)
	if !line.quantityOK {
		rec.addError(fmt.Sprintf("Invalid quantity %q for product %s", line.RawQuantity, line.ID))
	}

	product, ok := v.catalog.Lookup(line.ID)
	if !ok {
		rec.addError(fmt.Sprintf("Product %q does not exist in selected warehouse", line.ID))
		return
	}

	if !product.HasApprovedExpedition() {
		rec.addError(fmt.Sprintf("Product %q has no approved expeditions in selected warehouse", line.ID))
	}

	if line.quantityOK {
		stock := product.StockIn(v.catalog.WarehouseID())
		if line.Quantity > stock {
			rec.addWarning(fmt.Sprintf("Product %q has insufficient stock (available: %s, requested: %s)",
				line.ID, formatNumber(stock), formatNumber(line.Quantity)))
		}
	}
}
