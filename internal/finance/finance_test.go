package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cravencooling/fsm/internal/models"
)

func TestTotals(t *testing.T) {
	lines := []models.Line{
		{Description: "Compressor service", Quantity: 2, UnitPrice: 65.0, Type: "labour"},
		{Description: "Callout charge", Quantity: 1, UnitPrice: 85.0, Type: "callout"},
	}

	subtotal, vat, total := Totals(lines)

	assert.Equal(t, 215.0, subtotal)
	assert.Equal(t, 43.0, vat)
	assert.Equal(t, 258.0, total)
}

func TestTotals_EmptyLines(t *testing.T) {
	subtotal, vat, total := Totals(nil)

	assert.Equal(t, 0.0, subtotal)
	assert.Equal(t, 0.0, vat)
	assert.Equal(t, 0.0, total)
}

func TestTotals_DefaultQuantity(t *testing.T) {
	// An omitted quantity decodes to zero and counts as one unit.
	lines := []models.Line{
		{Description: "Filter drier", UnitPrice: 40.0, Type: "parts"},
	}

	subtotal, vat, total := Totals(lines)

	assert.Equal(t, 40.0, subtotal)
	assert.Equal(t, 8.0, vat)
	assert.Equal(t, 48.0, total)
}

func TestTotals_DefaultUnitPrice(t *testing.T) {
	lines := []models.Line{
		{Description: "Goodwill visit", Quantity: 3, Type: "labour"},
	}

	subtotal, vat, total := Totals(lines)

	assert.Equal(t, 0.0, subtotal)
	assert.Equal(t, 0.0, vat)
	assert.Equal(t, 0.0, total)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "JOB-00001", FormatNumber(JobPrefix, 0))
	assert.Equal(t, "QUO-00001", FormatNumber(QuotePrefix, 0))
	assert.Equal(t, "INV-00005", FormatNumber(InvoicePrefix, 4))
	assert.Equal(t, "JOB-12346", FormatNumber(JobPrefix, 12345))
}

func TestFormatNumber_Monotonic(t *testing.T) {
	prev := ""
	for count := int64(0); count < 100; count++ {
		n := FormatNumber(QuotePrefix, count)
		assert.Greater(t, n, prev)
		prev = n
	}
}
