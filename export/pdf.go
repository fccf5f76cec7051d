package export

import (
	"fmt"
	"io"
	"strconv"

	"restaurant-pos/models"

	"github.com/go-pdf/fpdf"
)

// InvoicePDF renders an A4 tax invoice.
func InvoicePDF(w io.Writer, shop Shop, inv *models.Invoice, order *models.Order) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(inv.InvoiceNumber, false)
	pdf.SetAuthor(shop.Name, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if shop.GSTNumber != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+shop.GSTNumber, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(95, 6, "Invoice: "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+inv.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "R", false, 0, "")
	if order != nil {
		where := order.Type.Label()
		if order.TableNumber != "" {
			where += ", Table " + order.TableNumber
		}
		pdf.CellFormat(95, 6, "Order: "+order.OrderNumber, "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, where, "", 1, "R", false, 0, "")
	}
	if inv.CustomerName != "" {
		pdf.CellFormat(0, 6, "Customer: "+inv.CustomerName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	widths := []float64{90, 20, 35, 45}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, head := range []string{"Item", "Qty", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, head, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if order != nil {
		for _, item := range order.Items {
			pdf.CellFormat(widths[0], 6, item.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, strconv.Itoa(item.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[2], 6, money(item.UnitPrice), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], 6, money(item.Total), "1", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(2)

	cgst, sgst := GSTSplit(inv.TaxAmount)
	totals := [][2]string{
		{"Subtotal", money(inv.Subtotal)},
		{"CGST", money(cgst)},
		{"SGST", money(sgst)},
	}
	if inv.DiscountAmount.IsPositive() {
		totals = append(totals, [2]string{"Discount", "-" + money(inv.DiscountAmount)})
	}
	totals = append(totals,
		[2]string{fmt.Sprintf("Total (%s)", shop.Currency), money(inv.Total)},
		[2]string{"Paid", money(inv.PaidAmount)},
	)
	for i, t := range totals {
		if t[0] == "Paid" || i == len(totals)-2 {
			pdf.SetFont("Helvetica", "B", 10)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(145, 6, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, t[1], "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, "Status: "+inv.Status.Label(), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return pdf.Output(w)
}
