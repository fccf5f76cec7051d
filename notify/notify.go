// Package notify dispatches kitchen tickets and lifecycle events to other
// terminals (kitchen display, cashier screens). Dispatch is best effort:
// callers log failures and never undo the state change that caused them.
package notify

import (
	"context"
	"log/slog"
	"time"

	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/shopspring/decimal"
)

const (
	Exchange          = "pos_events"
	KeyKitchenTicket  = "kitchen.ticket"
	keyStatusPrefix   = "order.status."
	KeyInvoiceSettled = "invoice.paid"
)

// StatusRoutingKey is the routing key for an order entering status.
func StatusRoutingKey(status models.OrderStatus) string {
	return keyStatusPrefix + status.String()
}

type Notifier interface {
	KitchenTicket(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order) error
	InvoiceSettled(ctx context.Context, invoice *models.Invoice) error
}

// TicketLine is one line on the kitchen display.
type TicketLine struct {
	Name     string            `json:"name"`
	Quantity int               `json:"quantity"`
	Notes    string            `json:"notes,omitempty"`
	Status   models.ItemStatus `json:"status"`
}

type KitchenTicketMessage struct {
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Type        models.OrderType `json:"type"`
	TableNumber string           `json:"table_number,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Lines       []TicketLine     `json:"lines"`
	Timestamp   time.Time        `json:"timestamp"`
}

type OrderStatusMessage struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	TableNumber string             `json:"table_number,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

type InvoiceSettledMessage struct {
	InvoiceID     string             `json:"invoice_id"`
	InvoiceNumber string             `json:"invoice_number"`
	OrderID       string             `json:"order_id"`
	Total         decimal.Decimal    `json:"total"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	PaymentMode   models.PaymentMode `json:"payment_mode"`
	Timestamp     time.Time          `json:"timestamp"`
}

func NewKitchenTicketMessage(o *models.Order) KitchenTicketMessage {
	lines := make([]TicketLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, TicketLine{Name: item.Name, Quantity: item.Quantity, Notes: item.Notes, Status: item.Status})
	}
	return KitchenTicketMessage{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Type:        o.Type,
		TableNumber: o.TableNumber,
		Notes:       o.Notes,
		Lines:       lines,
		Timestamp:   o.UpdatedAt,
	}
}

func NewOrderStatusMessage(o *models.Order) OrderStatusMessage {
	return OrderStatusMessage{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		TableNumber: o.TableNumber,
		Timestamp:   o.UpdatedAt,
	}
}

func NewInvoiceSettledMessage(inv *models.Invoice) InvoiceSettledMessage {
	return InvoiceSettledMessage{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		OrderID:       inv.OrderID,
		Total:         inv.Total,
		PaidAmount:    inv.PaidAmount,
		PaymentMode:   inv.PaymentMode,
		Timestamp:     inv.UpdatedAt,
	}
}

// LogNotifier only records events; used when no broker is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) KitchenTicket(ctx context.Context, o *models.Order) error {
	n.log.Info("kitchen_ticket", o.ID, "kitchen ticket issued",
		slog.String("order_number", o.OrderNumber),
		slog.Int("lines", len(o.Items)),
	)
	return nil
}

func (n *LogNotifier) OrderStatusChanged(ctx context.Context, o *models.Order) error {
	n.log.Info("order_status_changed", o.ID, "order status changed",
		slog.String("order_number", o.OrderNumber),
		slog.String("status", o.Status.String()),
	)
	return nil
}

func (n *LogNotifier) InvoiceSettled(ctx context.Context, inv *models.Invoice) error {
	n.log.Info("invoice_settled", inv.ID, "invoice settled",
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("paid_amount", inv.PaidAmount.StringFixed(2)),
	)
	return nil
}
