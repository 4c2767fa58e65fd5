package core

import "fmt"

// ValidateHeader checks that the table has a header plus at least one data
// row and that the header matches HeaderSchema exactly, column by column.
// Cells past the last schema column are ignored; missing cells compare as "".
func ValidateHeader(table RawTable) error {
	if len(table) < 2 {
		return &ImportError{Kind: KindInsufficientRows, Message: MsgInsufficientRows}
	}

	header := table[0]
	for i, col := range HeaderSchema {
		actual := cellAt(header, i)
		if actual != col.Name {
			return &ImportError{
				Kind: KindHeaderMismatch,
				Message: fmt.Sprintf("Invalid file format. Column %d should be %q but found %q",
					i+1, col.Name, actual),
			}
		}
	}
	return nil
}

// cellAt returns row[i], or "" when the row is too short.
func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
