// Package pdf renders quotes, invoices and job sheets as A4 PDFs.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/cravencooling/fsm/internal/models"
)

const companyName = "CRAVEN COOLING SERVICES LTD"

// newDoc creates an A4 portrait document and a cp1252 translator so the
// pound sign and customer free text render with the built-in fonts.
func newDoc() (*gofpdf.Fpdf, func(string) string) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(12, 12, 12)
	doc.AddPage()
	return doc, doc.UnicodeTranslatorFromDescriptor("")
}

func header(doc *gofpdf.Fpdf, tr func(string) string, subtitle string) {
	doc.SetFont("Helvetica", "B", 18)
	doc.SetTextColor(6, 182, 212)
	doc.Cell(0, 10, tr(companyName))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(0, 0, 0)
	doc.Cell(0, 8, tr(subtitle))
	doc.Ln(12)
}

func infoRow(doc *gofpdf.Fpdf, tr func(string) string, label, value string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(50, 6, tr(label), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func sectionTitle(doc *gofpdf.Fpdf, tr func(string) string, title string) {
	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 7, tr(title))
	doc.Ln(8)
}

func money(v float64) string {
	return fmt.Sprintf("£%.2f", v)
}

func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// linesTable writes the billable line items followed by the totals block.
func linesTable(doc *gofpdf.Fpdf, tr func(string) string, lines []models.Line, subtotal, vat, total float64) {
	widths := []float64{76, 26, 16, 28, 28}
	headers := []string{"Description", "Type", "Qty", "Unit Price", "Total"}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(15, 23, 42)
	doc.SetTextColor(255, 255, 255)
	for i, h := range headers {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		doc.CellFormat(widths[i], 7, tr(h), "1", 0, align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	for _, line := range lines {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		doc.CellFormat(widths[0], 7, tr(line.Description), "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[1], 7, tr(titleCase(line.Type)), "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[2], 7, fmt.Sprintf("%g", qty), "1", 0, "R", false, 0, "")
		doc.CellFormat(widths[3], 7, tr(money(line.UnitPrice)), "1", 0, "R", false, 0, "")
		doc.CellFormat(widths[4], 7, tr(money(qty*line.UnitPrice)), "1", 1, "R", false, 0, "")
	}

	doc.Ln(2)
	totals := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal:", subtotal, false},
		{"VAT (20%):", vat, false},
		{"Total:", total, true},
	}
	for _, row := range totals {
		style := ""
		if row.bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 10)
		doc.CellFormat(widths[0]+widths[1]+widths[2], 6, "", "", 0, "L", false, 0, "")
		doc.CellFormat(widths[3], 6, tr(row.label), "", 0, "R", false, 0, "")
		doc.CellFormat(widths[4], 6, tr(money(row.value)), "", 1, "R", false, 0, "")
	}
}

func output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Quote renders a quotation document.
func Quote(quote *models.Quote, customer *models.Customer) ([]byte, error) {
	doc, tr := newDoc()
	header(doc, tr, "QUOTATION")

	infoRow(doc, tr, "Quote Number:", quote.QuoteNumber)
	infoRow(doc, tr, "Date:", quote.CreatedAt.Format("2006-01-02"))
	infoRow(doc, tr, "Valid Until:", quote.ValidUntil.Format("2006-01-02"))
	doc.Ln(6)

	if customer != nil {
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 6, tr("To: "+customer.CompanyName), "", 1, "L", false, 0, "")
		doc.CellFormat(0, 6, tr(customer.BillingAddress), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	linesTable(doc, tr, quote.Lines, quote.Subtotal, quote.VAT, quote.Total)

	if quote.Notes != "" {
		sectionTitle(doc, tr, "Notes:")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 5, tr(quote.Notes), "", "L", false)
	}

	return output(doc)
}

// Invoice renders an invoice document.
func Invoice(invoice *models.Invoice, customer *models.Customer) ([]byte, error) {
	doc, tr := newDoc()
	header(doc, tr, "INVOICE")

	infoRow(doc, tr, "Invoice Number:", invoice.InvoiceNumber)
	infoRow(doc, tr, "Date:", invoice.CreatedAt.Format("2006-01-02"))
	infoRow(doc, tr, "Due Date:", invoice.DueDate.Format("2006-01-02"))
	infoRow(doc, tr, "Status:", strings.ToUpper(invoice.Status))
	doc.Ln(6)

	if customer != nil {
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 6, tr("Bill To: "+customer.CompanyName), "", 1, "L", false, 0, "")
		doc.CellFormat(0, 6, tr(customer.BillingAddress), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	linesTable(doc, tr, invoice.Lines, invoice.Subtotal, invoice.VAT, invoice.Total)

	doc.Ln(10)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr("Payment Terms: Net 30 days"), "", 1, "L", false, 0, "")

	return output(doc)
}

// JobSheet renders a service report for a job, including the completion
// sign-off when the work is done.
func JobSheet(job *models.Job, customer *models.Customer, site *models.Site, completion *models.JobCompletion) ([]byte, error) {
	doc, tr := newDoc()
	header(doc, tr, "Service Report")

	scheduled := "N/A"
	if job.ScheduledDate != nil {
		scheduled = *job.ScheduledDate
	}
	infoRow(doc, tr, "Job Number:", job.JobNumber)
	infoRow(doc, tr, "Type:", titleCase(job.JobType))
	infoRow(doc, tr, "Status:", titleCase(job.Status))
	infoRow(doc, tr, "Priority:", titleCase(job.Priority))
	infoRow(doc, tr, "Date:", scheduled)

	sectionTitle(doc, tr, "Customer Details")
	if customer != nil {
		infoRow(doc, tr, "Company:", customer.CompanyName)
		infoRow(doc, tr, "Address:", customer.BillingAddress)
		infoRow(doc, tr, "Phone:", customer.Phone)
	}

	sectionTitle(doc, tr, "Site Details")
	if site != nil {
		infoRow(doc, tr, "Site:", site.Name)
		infoRow(doc, tr, "Address:", site.Address)
		infoRow(doc, tr, "Access Notes:", site.AccessNotes)
	}

	sectionTitle(doc, tr, "Job Description")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, tr(job.Description), "", "L", false)

	if completion != nil {
		sectionTitle(doc, tr, "Work Completed")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 5, tr(completion.EngineerNotes), "", "L", false)
		doc.Ln(2)

		infoRow(doc, tr, "Travel Time:", fmt.Sprintf("%d minutes", completion.TravelTime))
		infoRow(doc, tr, "Time on Site:", fmt.Sprintf("%d minutes", completion.TimeOnSite))

		if len(completion.PartsUsed) > 0 {
			sectionTitle(doc, tr, "Parts Used")
			doc.SetFont("Helvetica", "B", 10)
			doc.SetFillColor(6, 182, 212)
			doc.SetTextColor(255, 255, 255)
			doc.CellFormat(120, 7, tr("Part"), "1", 0, "L", true, 0, "")
			doc.CellFormat(40, 7, tr("Quantity"), "1", 1, "L", true, 0, "")

			doc.SetFont("Helvetica", "", 10)
			doc.SetTextColor(0, 0, 0)
			for _, part := range completion.PartsUsed {
				name, _ := part["name"].(string)
				qty := "1"
				if q, ok := part["quantity"]; ok {
					qty = fmt.Sprintf("%v", q)
				}
				doc.CellFormat(120, 7, tr(name), "1", 0, "L", false, 0, "")
				doc.CellFormat(40, 7, qty, "1", 1, "L", false, 0, "")
			}
		}
	}

	doc.Ln(12)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr("Customer Signature: ________________________"), "", 1, "L", false, 0, "")
	doc.Ln(6)
	doc.CellFormat(0, 6, tr("Generated: "+time.Now().UTC().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")

	return output(doc)
}
