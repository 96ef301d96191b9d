package libs

import (
	"bytes"
	"fmt"
	"strconv"

	"saif-gifts/models"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	invoiceStoreName = "SAIF GIFTS"
	invoiceCurrency  = "Rs."
)

type InvoiceRenderer struct {
	taxRate decimal.Decimal
}

func NewInvoiceRenderer(taxRate decimal.Decimal) *InvoiceRenderer {
	return &InvoiceRenderer{taxRate: taxRate}
}

func InvoiceFilename(orderID string) string {
	return fmt.Sprintf("invoice-%s.pdf", orderID)
}

func money(d decimal.Decimal) string {
	return invoiceCurrency + " " + d.StringFixed(2)
}

// Render draws a single A4 invoice for the snapshot.
func (r *InvoiceRenderer) Render(order *models.OrderSnapshot) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.OrderID, true)
	pdf.SetCreator(invoiceStoreName, true)
	pdf.SetCreationDate(order.OrderDate)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW/2, 10, invoiceStoreName, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW/2, 10, "INVOICE", "", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, "Order ID: "+order.OrderID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Date: "+order.OrderDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	ship := order.ShippingDetails
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		ship.FullName,
		ship.Address,
		ship.City + " - " + ship.PostalCode,
		"Phone: " + ship.Phone,
		"Email: " + ship.Email,
	} {
		pdf.CellFormat(contentW, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	cols := []float64{contentW * 0.46, contentW * 0.12, contentW * 0.21, contentW * 0.21}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"Item", "Qty", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetDrawColor(180, 180, 180)
	for _, item := range order.LineItems {
		pdf.CellFormat(cols[0], 8, tr(item.Name), "B", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 8, strconv.Itoa(item.Quantity), "B", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 8, money(item.UnitPrice), "B", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 8, money(item.LineTotal().Round(2)), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	labelW := cols[0] + cols[1] + cols[2]
	taxLabel := fmt.Sprintf("Tax (%s%%):", r.taxRate.Mul(decimal.NewFromInt(100)).String())
	for _, row := range []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Subtotal:", order.Subtotal, false},
		{taxLabel, order.Tax, false},
		{"Total:", order.Total, true},
	} {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(labelW, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, money(row.value), "", 1, "R", false, 0, "")
	}

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "I", 11)
	pdf.CellFormat(contentW, 6, "Thank you for shopping with Saif Gifts!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", order.OrderID, err)
	}
	return buf.Bytes(), nil
}
