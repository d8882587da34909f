package infra

// pdf.go — Invoice PDF generation using go-pdf/fpdf.
// Renders a finalized Sale as a fixed-layout GST invoice:
//   - Issuer block (store name, address, phone, GSTIN, drug license)
//   - Bill number, date, and customer block
//   - Item table (product, HSN, batch, pack, expiry MM/YY, MRP, qty, rate,
//     disc%, GST%, amount)
//   - Totals block (subtotal, discount, GST, grand total)
//   - Generation timestamp footer
//
// Two page formats are supported: A4 (default) and A5 (compact counter print).
// The output file is saved to storagePath/invoice_{billNumber}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drugbee/internal/model"

	"github.com/go-pdf/fpdf"
)

// StoreInfo is the issuer identity printed on every invoice.
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
	GSTIN   string
	License string
}

// GenerateInvoicePDF renders the sale and returns the absolute path of the
// written file. pageFormat is "A4" or "A5"; anything else falls back to A4.
func GenerateInvoicePDF(sale *model.Sale, store StoreInfo, pageFormat, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	if pageFormat != "A5" {
		pageFormat = "A4"
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", sale.BillNumber)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", pageFormat, "")
	margin := 10.0
	baseFont := 9.0
	if pageFormat == "A5" {
		margin = 6.0
		baseFont = 7.0
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*margin

	// ── Issuer block ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", baseFont+5)
	pdf.CellFormat(contentW, 7, store.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", baseFont-1)
	if store.Address != "" {
		pdf.CellFormat(contentW, 4, store.Address, "", 1, "C", false, 0, "")
	}
	issuerLine := ""
	if store.Phone != "" {
		issuerLine = "Ph: " + store.Phone
	}
	if store.GSTIN != "" {
		if issuerLine != "" {
			issuerLine += "   "
		}
		issuerLine += "GSTIN: " + store.GSTIN
	}
	if store.License != "" {
		if issuerLine != "" {
			issuerLine += "   "
		}
		issuerLine += "DL No: " + store.License
	}
	if issuerLine != "" {
		pdf.CellFormat(contentW, 4, issuerLine, "", 1, "C", false, 0, "")
	}
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", baseFont)
	pdf.CellFormat(contentW, 5, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Line(margin, pdf.GetY(), pageW-margin, pdf.GetY())
	pdf.Ln(2)

	// ── Bill + customer block ────────────────────────────────────────────────
	half := contentW / 2
	pdf.SetFont("Helvetica", "B", baseFont-1)
	pdf.CellFormat(half, 4, "Bill No: "+sale.BillNumber, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", baseFont-1)
	pdf.CellFormat(half, 4, "Date: "+sale.CreatedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")

	pdf.CellFormat(half, 4, "Customer: "+sale.CustomerName, "", 0, "L", false, 0, "")
	phone := sale.CustomerPhone
	if phone == "" {
		phone = "-"
	}
	pdf.CellFormat(half, 4, "Phone: "+phone, "", 1, "R", false, 0, "")
	if sale.DoctorName != nil && *sale.DoctorName != "" {
		pdf.CellFormat(contentW, 4, "Prescribed by: "+*sale.DoctorName, "", 1, "L", false, 0, "")
	}
	if sale.Address != nil && *sale.Address != "" {
		pdf.CellFormat(contentW, 4, "Address: "+*sale.Address, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	// ── Item table ───────────────────────────────────────────────────────────
	type col struct {
		title string
		frac  float64
		align string
	}
	cols := []col{
		{"Product", 0.24, "L"},
		{"HSN", 0.07, "L"},
		{"Batch", 0.09, "L"},
		{"Pack", 0.07, "L"},
		{"Exp", 0.07, "C"},
		{"MRP", 0.08, "R"},
		{"Qty", 0.05, "C"},
		{"Rate", 0.08, "R"},
		{"Dis%", 0.06, "R"},
		{"GST%", 0.06, "R"},
		{"Amount", 0.13, "R"},
	}

	pdf.SetFont("Helvetica", "B", baseFont-2)
	for _, cl := range cols {
		pdf.CellFormat(contentW*cl.frac, 5, cl.title, "B", 0, cl.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", baseFont-2)
	for _, item := range sale.Items {
		name := item.ProductName
		if len(name) > 28 {
			name = name[:27] + "…"
		}
		gst := item.CgstRate.Add(item.SgstRate)
		row := []string{
			name,
			item.HSNCode,
			item.Batch,
			item.PackUnits,
			item.ExpiryDate.Format("01/06"),
			item.MRP.StringFixed(2),
			fmt.Sprintf("%d", item.Quantity),
			item.UnitPrice.StringFixed(2),
			item.DiscountPct.StringFixed(0),
			gst.StringFixed(0),
			item.LineTotal.StringFixed(2),
		}
		for i, cl := range cols {
			pdf.CellFormat(contentW*cl.frac, 4.5, row[i], "", 0, cl.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(1)
	pdf.Line(margin, pdf.GetY(), pageW-margin, pdf.GetY())
	pdf.Ln(2)

	// ── Totals block ─────────────────────────────────────────────────────────
	labelW := contentW * 0.85
	valueW := contentW * 0.15

	pdf.SetFont("Helvetica", "", baseFont-1)
	pdf.CellFormat(labelW, 4.5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 4.5, sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")

	if !sale.DiscountAmount.IsZero() {
		pdf.CellFormat(labelW, 4.5, fmt.Sprintf("Discount (%s%%):", sale.DiscountPct.StringFixed(0)), "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 4.5, "-"+sale.DiscountAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.CellFormat(labelW, 4.5, "GST:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 4.5, sale.TaxAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", baseFont+1)
	pdf.CellFormat(labelW, 6, "GRAND TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", baseFont-1)
	pdf.CellFormat(contentW, 4.5, "Payment: "+sale.PaymentMethod+" ("+sale.PaymentStatus+")", "", 1, "L", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", baseFont-2)
	pdf.CellFormat(contentW, 4, "Generated "+time.Now().Format("02/01/2006 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Get well soon!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
