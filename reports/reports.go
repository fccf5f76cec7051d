// Package reports runs the read-only aggregate queries behind the reports
// and dashboard screens. Queries are written with '?' placeholders and
// rebound for the connected dialect.
package reports

import (
	"context"
	"fmt"
	"time"

	"restaurant-pos/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Reports struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Reports {
	return &Reports{db: db}
}

// Range is the half-open interval [From, To).
type Range struct {
	From time.Time
	To   time.Time
}

// Day returns the calendar day containing t, in t's location.
func Day(t time.Time) Range {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Range{From: from.UTC(), To: from.AddDate(0, 0, 1).UTC()}
}

func (r Range) Valid() error {
	if !r.From.Before(r.To) {
		return fmt.Errorf("%w: report range start must be before its end", models.ErrValidation)
	}
	return nil
}

type SalesSummary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	InvoiceCount  int64           `db:"invoice_count" json:"invoice_count"`
	Gross         decimal.Decimal `db:"gross" json:"gross"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	Net           decimal.Decimal `db:"net" json:"net"`
	Paid          decimal.Decimal `db:"paid" json:"paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// Sales sums non-cancelled invoices raised inside r.
func (rp *Reports) Sales(ctx context.Context, r Range) (*SalesSummary, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	query := rp.db.Rebind(`SELECT COUNT(*) AS invoice_count,
		COALESCE(SUM(subtotal), 0) AS gross,
		COALESCE(SUM(discount_amount), 0) AS discount,
		COALESCE(SUM(tax_amount), 0) AS tax,
		COALESCE(SUM(total), 0) AS net,
		COALESCE(SUM(paid_amount), 0) AS paid
		FROM invoices
		WHERE status <> ? AND created_at >= ? AND created_at < ?`)

	var s SalesSummary
	if err := rp.db.GetContext(ctx, &s, query, models.InvoiceCancelled, r.From, r.To); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	s.From, s.To = r.From, r.To
	s.Outstanding = s.Net.Sub(s.Paid)
	if s.Outstanding.IsNegative() {
		s.Outstanding = decimal.Zero
	}
	s.AverageTicket = decimal.Zero
	if s.InvoiceCount > 0 {
		s.AverageTicket = s.Net.Div(decimal.NewFromInt(s.InvoiceCount)).Round(2)
	}
	return &s, nil
}

type PaymentModeTotal struct {
	Method models.PaymentMode `db:"method" json:"method"`
	Label  string             `json:"label"`
	Count  int64              `db:"payment_count" json:"count"`
	Amount decimal.Decimal    `db:"amount" json:"amount"`
}

// PaymentModes breaks payments recorded inside r down by method, largest first.
func (rp *Reports) PaymentModes(ctx context.Context, r Range) ([]PaymentModeTotal, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	query := rp.db.Rebind(`SELECT p.method AS method,
		COUNT(*) AS payment_count,
		COALESCE(SUM(p.amount), 0) AS amount
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE i.status <> ? AND p.created_at >= ? AND p.created_at < ?
		GROUP BY p.method
		ORDER BY amount DESC`)

	rows := []PaymentModeTotal{}
	if err := rp.db.SelectContext(ctx, &rows, query, models.InvoiceCancelled, r.From, r.To); err != nil {
		return nil, fmt.Errorf("payment modes: %w", err)
	}
	for i := range rows {
		rows[i].Label = rows[i].Method.Label()
	}
	return rows, nil
}

type TopItem struct {
	MenuItemID string          `db:"menu_item_id" json:"menu_item_id"`
	Name       string          `db:"name" json:"name"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
}

// TopItems ranks menu items by quantity sold on non-cancelled orders.
func (rp *Reports) TopItems(ctx context.Context, r Range, limit int) ([]TopItem, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := rp.db.Rebind(`SELECT oi.menu_item_id AS menu_item_id,
		MIN(oi.name) AS name,
		SUM(oi.quantity) AS quantity,
		COALESCE(SUM(oi.total), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> ? AND o.created_at >= ? AND o.created_at < ?
		GROUP BY oi.menu_item_id
		ORDER BY quantity DESC, revenue DESC
		LIMIT ?`)

	rows := []TopItem{}
	if err := rp.db.SelectContext(ctx, &rows, query, models.OrderCancelled, r.From, r.To, limit); err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	return rows, nil
}

type StatusCount struct {
	Status models.OrderStatus `db:"status" json:"status"`
	Count  int64              `db:"order_count" json:"count"`
}

// OrderCounts counts orders created inside r per status.
func (rp *Reports) OrderCounts(ctx context.Context, r Range) ([]StatusCount, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	query := rp.db.Rebind(`SELECT status, COUNT(*) AS order_count
		FROM orders
		WHERE created_at >= ? AND created_at < ?
		GROUP BY status`)

	var rows []StatusCount
	if err := rp.db.SelectContext(ctx, &rows, query, r.From, r.To); err != nil {
		return nil, fmt.Errorf("order counts: %w", err)
	}
	byStatus := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	out := make([]StatusCount, 0, len(models.OrderStatuses))
	for _, st := range models.OrderStatuses {
		out = append(out, StatusCount{Status: st, Count: byStatus[st]})
	}
	return out, nil
}

type HourBucket struct {
	Hour     int             `json:"hour"`
	Invoices int64           `json:"invoices"`
	Amount   decimal.Decimal `json:"amount"`
}

// Hourly buckets invoice totals by hour of day in loc. Bucketing happens here
// rather than in SQL so it works the same on every dialect.
func (rp *Reports) Hourly(ctx context.Context, r Range, loc *time.Location) ([]HourBucket, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	query := rp.db.Rebind(`SELECT created_at, total FROM invoices
		WHERE status <> ? AND created_at >= ? AND created_at < ?`)

	var rows []struct {
		CreatedAt time.Time       `db:"created_at"`
		Total     decimal.Decimal `db:"total"`
	}
	if err := rp.db.SelectContext(ctx, &rows, query, models.InvoiceCancelled, r.From, r.To); err != nil {
		return nil, fmt.Errorf("hourly sales: %w", err)
	}
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{Hour: h, Amount: decimal.Zero}
	}
	for _, row := range rows {
		b := &buckets[row.CreatedAt.In(loc).Hour()]
		b.Invoices++
		b.Amount = b.Amount.Add(row.Total)
	}
	return buckets, nil
}

type Dashboard struct {
	Sales          *SalesSummary `json:"sales"`
	ActiveOrders   int64         `db:"active_orders" json:"active_orders"`
	OccupiedTables int64         `db:"occupied_tables" json:"occupied_tables"`
	TotalTables    int64         `db:"total_tables" json:"total_tables"`
	PendingBills   int64         `db:"pending_bills" json:"pending_bills"`
}

// Today returns the live counters for the dashboard plus the day's sales.
func (rp *Reports) Today(ctx context.Context, now time.Time) (*Dashboard, error) {
	sales, err := rp.Sales(ctx, Day(now))
	if err != nil {
		return nil, err
	}
	query := rp.db.Rebind(`SELECT
		(SELECT COUNT(*) FROM orders WHERE status NOT IN (?, ?)) AS active_orders,
		(SELECT COUNT(*) FROM tables WHERE status = ?) AS occupied_tables,
		(SELECT COUNT(*) FROM tables) AS total_tables,
		(SELECT COUNT(*) FROM invoices WHERE status IN (?, ?)) AS pending_bills`)

	d := Dashboard{Sales: sales}
	err = rp.db.GetContext(ctx, &d, query,
		models.OrderServed, models.OrderCancelled,
		models.TableOccupied,
		models.InvoiceUnpaid, models.InvoicePartial,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &d, nil
}
