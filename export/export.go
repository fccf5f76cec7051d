// Package export renders finalized orders and invoices for print and
// download: receipt text, kitchen tickets, CSV and PDF. Rendering reads its
// inputs and never changes them.
package export

import (
	"fmt"
	"strings"

	"restaurant-pos/models"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// Shop is the letterhead printed on every document.
type Shop struct {
	Name      string
	GSTNumber string
	Currency  string
}

// GSTSplit divides tax into its central and state halves. Any odd paisa goes
// to the state half so the two always add back to tax.
func GSTSplit(tax decimal.Decimal) (cgst, sgst decimal.Decimal) {
	cgst = tax.Div(decimal.NewFromInt(2)).RoundDown(2)
	return cgst, tax.Sub(cgst)
}

// percent renders a 0.18 style fraction as "18".
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

const receiptWidth = 42

// Widths are printer columns, so they are measured with runewidth rather than
// bytes: "Crème brûlée" is 12 columns, "पनीर" fewer than its byte count.
func center(s string) string {
	w := runewidth.StringWidth(s)
	if w >= receiptWidth {
		return s
	}
	pad := (receiptWidth - w) / 2
	return strings.Repeat(" ", pad) + s
}

// row lays out a label and a right-aligned amount on one receipt line.
func row(label, amount string) string {
	space := receiptWidth - runewidth.StringWidth(label) - runewidth.StringWidth(amount)
	if space < 1 {
		space = 1
	}
	return label + strings.Repeat(" ", space) + amount
}

func rule(ch string) string {
	return strings.Repeat(ch, receiptWidth)
}

// truncate cuts s to at most n columns on a rune boundary, marking the cut.
func truncate(s string, n int) string {
	if runewidth.StringWidth(s) <= n {
		return s
	}
	if n <= 1 {
		return runewidth.Truncate(s, n, "")
	}
	return runewidth.Truncate(s, n, ".")
}

// Receipt renders the customer bill for a thermal printer.
func Receipt(shop Shop, inv *models.Invoice, order *models.Order) string {
	var b strings.Builder
	line := func(s string) { b.WriteString(s); b.WriteByte('\n') }

	line(center(shop.Name))
	if shop.GSTNumber != "" {
		line(center("GSTIN: " + shop.GSTNumber))
	}
	line(rule("="))
	line(row("Bill: "+inv.InvoiceNumber, inv.CreatedAt.Format("02 Jan 2006 15:04")))
	if order != nil {
		kind := order.Type.Label()
		if order.TableNumber != "" {
			kind += " / Table " + order.TableNumber
		}
		line(row("Order: "+order.OrderNumber, kind))
	}
	if inv.CustomerName != "" {
		line("Customer: " + inv.CustomerName)
	}
	line(rule("-"))
	line(fmt.Sprintf("%-20s %3s %7s %9s", "Item", "Qty", "Rate", "Amount"))
	line(rule("-"))
	if order != nil {
		for _, item := range order.Items {
			name := runewidth.FillRight(truncate(item.Name, 20), 20)
			line(fmt.Sprintf("%s %3d %7s %9s", name, item.Quantity, money(item.UnitPrice), money(item.Total)))
		}
	}
	line(rule("-"))
	line(row("Subtotal", money(inv.Subtotal)))
	cgst, sgst := GSTSplit(inv.TaxAmount)
	half := ""
	if order != nil && order.TaxRate.IsPositive() {
		half = " @" + percent(order.TaxRate.Div(decimal.NewFromInt(2))) + "%"
	}
	line(row("CGST"+half, money(cgst)))
	line(row("SGST"+half, money(sgst)))
	if inv.DiscountAmount.IsPositive() {
		line(row("Discount", "-"+money(inv.DiscountAmount)))
	}
	line(rule("="))
	line(row("TOTAL "+shop.Currency, money(inv.Total)))
	line(rule("="))
	for _, p := range inv.Payments {
		label := "Paid " + p.Method.Label()
		if p.Reference != "" {
			label += " (" + truncate(p.Reference, 12) + ")"
		}
		line(row(label, money(p.Amount)))
	}
	remaining := inv.Total.Sub(inv.PaidAmount)
	switch {
	case inv.Status == models.InvoiceCancelled:
		line(center("*** CANCELLED ***"))
	case remaining.IsPositive():
		line(row("Balance due", money(remaining)))
	case remaining.IsNegative():
		line(row("Change", money(remaining.Neg())))
	}
	line("")
	line(center("Thank you! Visit again."))
	return b.String()
}

// KitchenTicket renders the order for the kitchen printer, lines in the
// order they were taken.
func KitchenTicket(order *models.Order) string {
	var b strings.Builder
	line := func(s string) { b.WriteString(s); b.WriteByte('\n') }

	line(center("KITCHEN ORDER TICKET"))
	line(rule("="))
	line(row(order.OrderNumber, order.UpdatedAt.Format("15:04")))
	where := order.Type.Label()
	if order.TableNumber != "" {
		where = "Table " + order.TableNumber
	}
	line(where)
	line(rule("-"))
	for _, item := range order.Items {
		line(fmt.Sprintf("%3dx %s", item.Quantity, item.Name))
		if item.Notes != "" {
			line("     > " + item.Notes)
		}
	}
	if order.Notes != "" {
		line(rule("-"))
		line("Note: " + order.Notes)
	}
	line(rule("="))
	return b.String()
}
