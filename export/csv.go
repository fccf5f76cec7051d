package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"restaurant-pos/models"
)

// InvoiceCSV writes one row per order line followed by the invoice totals.
func InvoiceCSV(w io.Writer, inv *models.Invoice, order *models.Order) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"invoice_number", "order_number", "item", "quantity", "unit_price", "line_total"},
	}
	orderNumber := ""
	if order != nil {
		orderNumber = order.OrderNumber
		for _, item := range order.Items {
			records = append(records, []string{
				inv.InvoiceNumber, orderNumber, item.Name,
				strconv.Itoa(item.Quantity), money(item.UnitPrice), money(item.Total),
			})
		}
	}
	cgst, sgst := GSTSplit(inv.TaxAmount)
	for _, total := range [][2]string{
		{"Subtotal", money(inv.Subtotal)},
		{"CGST", money(cgst)},
		{"SGST", money(sgst)},
		{"Discount", money(inv.DiscountAmount)},
		{"Total", money(inv.Total)},
		{"Paid", money(inv.PaidAmount)},
	} {
		records = append(records, []string{inv.InvoiceNumber, orderNumber, total[0], "", "", total[1]})
	}
	return cw.WriteAll(records)
}

// InvoicesCSV writes the invoice register, one row per invoice.
func InvoicesCSV(w io.Writer, invoices []models.Invoice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"invoice_number", "created_at", "customer", "status", "payment_mode",
		"subtotal", "tax", "discount", "total", "paid",
	}); err != nil {
		return err
	}
	for _, inv := range invoices {
		if err := cw.Write([]string{
			inv.InvoiceNumber,
			inv.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			inv.CustomerName,
			inv.Status.String(),
			inv.PaymentMode.String(),
			money(inv.Subtotal),
			money(inv.TaxAmount),
			money(inv.DiscountAmount),
			money(inv.Total),
			money(inv.PaidAmount),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
