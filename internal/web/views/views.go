// Package views renders the HTML pages of the order import UI.
//
// Pages are written as templ components in views.templ; views_templ.go is
// generated from it with `templ generate`.
package views

import (
	"strconv"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// productSummary formats one product line as "ID × qty @ price".
func productSummary(p core.ProductLine) string {
	return p.ID + " × " + strconv.FormatFloat(p.Quantity, 'f', -1, 64) +
		" @ " + strconv.FormatFloat(p.Price, 'f', 2, 64)
}
