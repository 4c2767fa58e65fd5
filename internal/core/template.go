package core

// template.go writes header-only order file templates so sellers start from
// the exact column layout the importer expects.

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateSheetName is the first sheet of the spreadsheet template.
const TemplateSheetName = "Orders"

// templateNotes documents the columns on the second sheet of the workbook.
var templateNotes = [columnCount]string{
	ColOrderID:      "Required. Your reference for the order.",
	ColProductID:    "Product code. Separate several products with |",
	ColDate:         "Order date, e.g. 2024-01-15.",
	ColProductName:  "Product name. One per product, separated by |",
	ColProductLink:  "Link to the product page.",
	ColCustomerName: "Required. Recipient name.",
	ColPhoneNumber:  "Recipient phone number.",
	ColAddress:      "Delivery address.",
	ColPrice:        "Unit price per product, separated by |",
	ColQuantity:     "Quantity per product, separated by |",
	ColStoreName:    "Name of the selling store.",
}

// WriteTemplateCSV writes the header row as CSV.
func WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HeaderNames()); err != nil {
		return fmt.Errorf("write template header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplateXLSX writes a workbook whose first sheet holds the header row
// and whose second sheet explains each column.
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create required style: %w", err)
	}

	for i, col := range HeaderSchema {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TemplateSheetName, cell, col.Name); err != nil {
			return fmt.Errorf("write header %q: %w", col.Name, err)
		}

		style := headerStyle
		if col.Required {
			style = requiredStyle
		}
		if err := f.SetCellStyle(TemplateSheetName, cell, cell, style); err != nil {
			return err
		}

		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(TemplateSheetName, letter, letter, 20); err != nil {
			return err
		}
	}

	const notes = "Instructions"
	if _, err := f.NewSheet(notes); err != nil {
		return fmt.Errorf("create instructions sheet: %w", err)
	}
	if err := f.SetSheetRow(notes, "A1", &[]string{"Column", "Description"}); err != nil {
		return err
	}
	for i, col := range HeaderSchema {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(notes, cell, &[]string{col.Name, templateNotes[i]}); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
