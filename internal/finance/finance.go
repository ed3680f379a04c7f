// Package finance holds the money arithmetic and document numbering shared
// by quotes, invoices and jobs.
package finance

import (
	"fmt"

	"github.com/cravencooling/fsm/internal/models"
)

// VATRate is the flat UK VAT rate applied to every quote and invoice.
const VATRate = 0.20

// Document number prefixes.
const (
	JobPrefix     = "JOB"
	QuotePrefix   = "QUO"
	InvoicePrefix = "INV"
)

// Totals computes subtotal, VAT and total for a set of line items. A zero
// quantity is treated as 1 (an omitted quantity decodes to zero). Values
// are plain float64s; totals are computed once at document creation and
// stored, never recomputed on read.
func Totals(lines []models.Line) (subtotal, vat, total float64) {
	for _, line := range lines {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		subtotal += qty * line.UnitPrice
	}
	vat = subtotal * VATRate
	total = subtotal + vat
	return subtotal, vat, total
}

// FormatNumber renders a human-readable document number from the current
// row count, e.g. FormatNumber("JOB", 4) == "JOB-00005". The count is read
// fresh at generation time; two concurrent creations can read the same
// count and collide, and no uniqueness constraint catches that here.
func FormatNumber(prefix string, count int64) string {
	return fmt.Sprintf("%s-%05d", prefix, count+1)
}
