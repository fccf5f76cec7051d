package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"restaurant-pos/billing"
	"restaurant-pos/database"
	"restaurant-pos/export"
	"restaurant-pos/middlewares"
	"restaurant-pos/models"
	"restaurant-pos/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type invoiceInput struct {
	OrderID string `json:"order_id" validate:"required"`
}

type paymentInput struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Method    string          `json:"method" validate:"required,payment_mode"`
	Reference string          `json:"reference" validate:"max=64"`
	Notes     string          `json:"notes" validate:"max=200"`
}

type discountInput struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type payFullInput struct {
	Method string `json:"method" validate:"required,payment_mode"`
}

// invoiceView adds the derived settlement figures to an invoice.
type invoiceView struct {
	*models.Invoice
	Remaining decimal.Decimal `json:"remaining"`
	ChangeDue decimal.Decimal `json:"change_due"`
}

func viewOf(inv *models.Invoice) invoiceView {
	return invoiceView{Invoice: inv, Remaining: billing.Remaining(inv), ChangeDue: billing.ChangeDue(inv)}
}

func (h *Handler) ListInvoices(c *fiber.Ctx) error {
	f, err := h.invoiceFilter(c)
	if err != nil {
		return err
	}
	list, err := h.Store.ListInvoices(f)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) invoiceFilter(c *fiber.Ctx) (database.InvoiceFilter, error) {
	f := database.InvoiceFilter{
		ListOptions: database.ListOptions{
			Limit:  utils.ParseIntDefault(c.Query("limit"), 0),
			Offset: utils.ParseIntDefault(c.Query("offset"), 0),
		},
	}
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseInvoiceStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		r, err := h.rangeQuery(c)
		if err != nil {
			return f, err
		}
		f.From, f.To = &r.From, &r.To
	}
	return f, nil
}

func (h *Handler) GetInvoice(c *fiber.Ctx) error {
	inv, err := h.Store.LoadInvoice(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(viewOf(inv))
}

// CreateInvoice bills an order. Each order can be billed once.
func (h *Handler) CreateInvoice(c *fiber.Ctx) error {
	var in invoiceInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	store := h.Store.For(c)
	order, err := store.LoadOrder(in.OrderID)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: unknown order %s", models.ErrValidation, in.OrderID)
	}
	if err != nil {
		return err
	}
	inv, err := h.Billing.Create(order, middlewares.CurrentUserID(c))
	if err != nil {
		return err
	}
	if err := store.CreateInvoice(inv); err != nil {
		return err
	}
	h.audit(c, "invoice_created", "invoice created",
		slog.String("invoice_id", inv.ID), slog.String("order_id", order.ID),
		slog.String("total", inv.Total.StringFixed(2)))
	return c.Status(fiber.StatusCreated).JSON(viewOf(inv))
}

// settle loads the invoice, applies fn and saves it. When the invoice turns
// PAID the order's table is released and cashier screens are told after the
// commit. The queued notifications are returned for the response.
func (h *Handler) settle(c *fiber.Ctx, fn func(inv *models.Invoice) error) (*models.Invoice, []string, error) {
	store := h.Store.For(c)
	inv, err := store.LoadInvoice(c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	wasPaid := inv.Status == models.InvoicePaid
	if err := fn(inv); err != nil {
		return nil, nil, err
	}
	if err := store.SaveInvoice(inv); err != nil {
		return nil, nil, err
	}

	var settled string
	if inv.Status == models.InvoicePaid && !wasPaid {
		order, err := store.LoadOrder(inv.OrderID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, nil, err
		}
		if order != nil {
			if err := h.releaseTable(store, order); err != nil {
				return nil, nil, err
			}
		}
		settled = h.notify(c, "invoice_settled", func(ctx context.Context) error {
			return h.Notifier.InvoiceSettled(ctx, inv)
		})
	}
	return inv, queued(settled), nil
}

func (h *Handler) AddPayment(c *fiber.Ctx) error {
	var in paymentInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	var payment models.Payment
	inv, sent, err := h.settle(c, func(inv *models.Invoice) error {
		p, err := h.Billing.AddPayment(inv, billing.PaymentInput{
			Amount:    in.Amount,
			Method:    models.PaymentMode(in.Method),
			Reference: in.Reference,
			Notes:     in.Notes,
		})
		if err != nil {
			return err
		}
		payment = *p
		return nil
	})
	if err != nil {
		return err
	}
	h.audit(c, "payment_recorded", "payment recorded",
		slog.String("invoice_id", inv.ID), slog.String("amount", payment.Amount.StringFixed(2)),
		slog.String("method", payment.Method.String()), slog.String("status", inv.Status.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"invoice":       viewOf(inv),
		"payment":       payment,
		"notifications": sent,
	})
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	inv, err := h.Store.LoadInvoice(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(inv.Payments)
}

func (h *Handler) MarkFullyPaid(c *fiber.Ctx) error {
	var in payFullInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	var payment models.Payment
	inv, sent, err := h.settle(c, func(inv *models.Invoice) error {
		p, err := h.Billing.MarkFullyPaid(inv, models.PaymentMode(in.Method))
		if err != nil {
			return err
		}
		payment = *p
		return nil
	})
	if err != nil {
		return err
	}
	h.audit(c, "payment_recorded", "invoice settled in full",
		slog.String("invoice_id", inv.ID), slog.String("amount", payment.Amount.StringFixed(2)))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"invoice":       viewOf(inv),
		"payment":       payment,
		"notifications": sent,
	})
}

func (h *Handler) ApplyDiscount(c *fiber.Ctx) error {
	var in discountInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	inv, sent, err := h.settle(c, func(inv *models.Invoice) error {
		return h.Billing.ApplyDiscount(inv, in.Amount)
	})
	if err != nil {
		return err
	}
	h.audit(c, "discount_applied", "discount applied",
		slog.String("invoice_id", inv.ID), slog.String("discount", inv.DiscountAmount.StringFixed(2)))
	return c.JSON(fiber.Map{"invoice": viewOf(inv), "notifications": sent})
}

func (h *Handler) CancelInvoice(c *fiber.Ctx) error {
	inv, _, err := h.settle(c, h.Billing.Cancel)
	if err != nil {
		return err
	}
	h.audit(c, "invoice_cancelled", "invoice cancelled", slog.String("invoice_id", inv.ID))
	return c.JSON(viewOf(inv))
}

func (h *Handler) InvoiceVersions(c *fiber.Ctx) error {
	versions, err := h.Store.InvoiceVersions(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(versions)
}

// loadForExport returns the invoice with its order; a missing order still
// renders the totals.
func (h *Handler) loadForExport(c *fiber.Ctx) (*models.Invoice, *models.Order, error) {
	inv, err := h.Store.LoadInvoice(c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	order, err := h.Store.LoadOrder(inv.OrderID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, nil, err
	}
	return inv, order, nil
}

func (h *Handler) InvoiceReceipt(c *fiber.Ctx) error {
	inv, order, err := h.loadForExport(c)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(export.Receipt(h.Shop, inv, order))
}

func (h *Handler) InvoiceCSV(c *fiber.Ctx) error {
	inv, order, err := h.loadForExport(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.InvoiceCSV(&buf, inv, order); err != nil {
		return err
	}
	c.Attachment(inv.InvoiceNumber + ".csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) InvoicePDF(c *fiber.Ctx) error {
	inv, order, err := h.loadForExport(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.InvoicePDF(&buf, h.Shop, inv, order); err != nil {
		h.Log.Error("invoice_pdf", middlewares.RequestID(c), "pdf render failed", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not render invoice PDF, try again")
	}
	c.Attachment(inv.InvoiceNumber + ".pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}

// ExportInvoices downloads the filtered invoice register as CSV.
func (h *Handler) ExportInvoices(c *fiber.Ctx) error {
	f, err := h.invoiceFilter(c)
	if err != nil {
		return err
	}
	if f.Limit == 0 {
		f.Limit = 500
	}
	list, err := h.Store.ListInvoices(f)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.InvoicesCSV(&buf, list); err != nil {
		return err
	}
	c.Attachment("invoices.csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}
