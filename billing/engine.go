// Package billing derives invoices from orders and settles them with payments.
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-pos/models"
	"restaurant-pos/utils"
)

// Engine is the single writer of Invoice state.
type Engine struct {
	Now       func() time.Time
	NewID     func() string
	NewNumber func() string
}

func NewEngine(numbers func() string) *Engine {
	e := &Engine{
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     uuid.NewString,
		NewNumber: numbers,
	}
	if e.NewNumber == nil {
		e.NewNumber = utils.LocalNumbers("INV")
	}
	return e
}

// PaymentInput is the add-payment command.
type PaymentInput struct {
	Amount    decimal.Decimal
	Method    models.PaymentMode
	Reference string
	Notes     string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

func wrongState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrState, fmt.Sprintf(format, args...))
}

// Create copies the order's amounts into a fresh UNPAID invoice.
// userID is the cashier raising the bill; empty falls back to the order owner.
func (e *Engine) Create(order *models.Order, userID string) (*models.Invoice, error) {
	if order == nil {
		return nil, invalid("order is required")
	}
	if order.Status == models.OrderCancelled {
		return nil, wrongState("order %s is cancelled", order.OrderNumber)
	}
	if len(order.Items) == 0 {
		return nil, invalid("order %s has no items to bill", order.OrderNumber)
	}
	if strings.TrimSpace(userID) == "" {
		userID = order.UserID
	}
	now := e.Now()
	inv := &models.Invoice{
		ID:             e.NewID(),
		InvoiceNumber:  e.NewNumber(),
		OrderID:        order.ID,
		CustomerName:   order.CustomerName,
		UserID:         userID,
		Subtotal:       order.Subtotal,
		TaxAmount:      order.TaxAmount,
		DiscountAmount: decimal.Zero,
		PaidAmount:     decimal.Zero,
		Status:         models.InvoiceUnpaid,
		Payments:       []models.Payment{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	Recalculate(inv)
	return inv, nil
}

// AddPayment appends an immutable payment and re-derives paid amount and status.
// Overpayment is accepted; see ChangeDue.
func (e *Engine) AddPayment(inv *models.Invoice, in PaymentInput) (*models.Payment, error) {
	if inv.Status == models.InvoiceCancelled {
		return nil, wrongState("invoice %s is cancelled", inv.InvoiceNumber)
	}
	amount := utils.Round2(in.Amount)
	if !amount.IsPositive() {
		return nil, invalid("payment amount must be positive, got %s", in.Amount)
	}
	if !in.Method.Valid() {
		return nil, invalid("unknown payment method %q", in.Method)
	}

	now := e.Now()
	inv.Payments = append(inv.Payments, models.Payment{
		ID:        e.NewID(),
		InvoiceID: inv.ID,
		Amount:    amount,
		Method:    in.Method,
		Reference: strings.TrimSpace(in.Reference),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
	})
	inv.PaymentMode = in.Method
	Recalculate(inv)
	inv.UpdatedAt = now
	return &inv.Payments[len(inv.Payments)-1], nil
}

// ApplyDiscount sets the absolute discount and recomputes the total. Subtotal
// and tax are never touched.
func (e *Engine) ApplyDiscount(inv *models.Invoice, discount decimal.Decimal) error {
	if inv.Status == models.InvoiceCancelled {
		return wrongState("invoice %s is cancelled", inv.InvoiceNumber)
	}
	discount = utils.Round2(discount)
	if discount.IsNegative() {
		return invalid("discount must not be negative")
	}
	if payable := inv.Subtotal.Add(inv.TaxAmount); discount.GreaterThan(payable) {
		return invalid("discount %s exceeds payable %s", discount, payable)
	}
	inv.DiscountAmount = discount
	Recalculate(inv)
	inv.UpdatedAt = e.Now()
	return nil
}

// MarkFullyPaid settles the remaining balance in one payment.
func (e *Engine) MarkFullyPaid(inv *models.Invoice, method models.PaymentMode) (*models.Payment, error) {
	if inv.Status == models.InvoiceCancelled {
		return nil, wrongState("invoice %s is cancelled", inv.InvoiceNumber)
	}
	remaining := Remaining(inv)
	if !remaining.IsPositive() {
		return nil, wrongState("invoice %s has nothing left to pay", inv.InvoiceNumber)
	}
	return e.AddPayment(inv, PaymentInput{Amount: remaining, Method: method, Notes: "Full payment"})
}

// Cancel is a terminal override. Recorded payments stay for audit.
func (e *Engine) Cancel(inv *models.Invoice) error {
	if inv.Status == models.InvoiceCancelled {
		return wrongState("invoice %s is already cancelled", inv.InvoiceNumber)
	}
	inv.Status = models.InvoiceCancelled
	inv.UpdatedAt = e.Now()
	return nil
}

// Recalculate is the only place invoice totals and status are derived.
func Recalculate(inv *models.Invoice) {
	inv.Total = inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount)
	amounts := make([]decimal.Decimal, len(inv.Payments))
	for i, p := range inv.Payments {
		amounts[i] = p.Amount
	}
	inv.PaidAmount = utils.Sum(amounts...)
	if inv.Status != models.InvoiceCancelled {
		inv.Status = DeriveStatus(inv.PaidAmount, inv.Total)
	}
}

// DeriveStatus maps paid vs total onto UNPAID, PARTIAL or PAID.
func DeriveStatus(paid, total decimal.Decimal) models.InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		// a fully discounted bill is settled without a payment
		return models.InvoicePaid
	case paid.IsPositive():
		return models.InvoicePartial
	default:
		return models.InvoiceUnpaid
	}
}

// Remaining is the outstanding balance, never negative.
func Remaining(inv *models.Invoice) decimal.Decimal {
	r := inv.Total.Sub(inv.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ChangeDue is the overpaid amount to hand back, zero when not overpaid.
func ChangeDue(inv *models.Invoice) decimal.Decimal {
	c := inv.PaidAmount.Sub(inv.Total)
	if c.IsNegative() {
		return decimal.Zero
	}
	return c
}
