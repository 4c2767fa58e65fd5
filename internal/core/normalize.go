package core

import "strings"

// MultiValueSeparator separates the per-product values of one cell.
const MultiValueSeparator = "|"

// NormalizeRow maps a data row onto an OrderRecord and expands the four
// multi-value columns into product lines. When the columns disagree in item
// count the record gets no products and a single row error.
func NormalizeRow(row []string) OrderRecord {
	rec := OrderRecord{
		OrderID: cellAt(row, ColOrderID),
		Date:    cellAt(row, ColDate),
		Customer: Customer{
			Name:    cellAt(row, ColCustomerName),
			Phone:   cellAt(row, ColPhoneNumber),
			Address: cellAt(row, ColAddress),
		},
		ProductLink: cellAt(row, ColProductLink),
		StoreName:   cellAt(row, ColStoreName),
		Products:    []ProductLine{},
		Errors:      []string{},
		Warnings:    []string{},
	}

	ids := splitMulti(cellAt(row, ColProductID))
	names := splitMulti(cellAt(row, ColProductName))
	prices := splitMulti(cellAt(row, ColPrice))
	quantities := splitMulti(cellAt(row, ColQuantity))

	lines, ok := zipProductLines(ids, names, prices, quantities)
	if !ok {
		rec.addError(msgLengthMismatch)
		return rec
	}
	rec.Products = lines
	return rec
}

// zipProductLines pairs the i-th element of each slice into one ProductLine.
// Returns false without building anything if the lengths differ.
func zipProductLines(ids, names, prices, quantities []string) ([]ProductLine, bool) {
	n := len(ids)
	if len(names) != n || len(prices) != n || len(quantities) != n {
		return nil, false
	}

	lines := make([]ProductLine, n)
	for i := 0; i < n; i++ {
		lines[i] = ProductLine{
			ID:          ids[i],
			Name:        names[i],
			RawPrice:    prices[i],
			RawQuantity: quantities[i],
		}
	}
	return lines, true
}

// splitMulti splits a cell on the separator and trims each item.
// An empty cell yields one empty item.
func splitMulti(cell string) []string {
	parts := strings.Split(cell, MultiValueSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
