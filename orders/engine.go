// Package orders owns the order aggregate: its item lines, derived totals and
// status transitions. Every mutating call validates first and only then
// writes, so a rejected command leaves the order untouched.
package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-pos/models"
	"restaurant-pos/utils"
)

// Engine is the single writer of Order state.
type Engine struct {
	TaxRate   decimal.Decimal
	Now       func() time.Time
	NewID     func() string
	NewNumber func() string
}

// NewEngine returns an engine applying the flat taxRate (0.18 = 18%).
// numbers produces human order numbers; nil falls back to a local snowflake node.
func NewEngine(taxRate decimal.Decimal, numbers func() string) *Engine {
	e := &Engine{
		TaxRate:   taxRate,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     uuid.NewString,
		NewNumber: numbers,
	}
	if e.NewNumber == nil {
		e.NewNumber = utils.LocalNumbers("ORD")
	}
	return e
}

// NewOrder is the create command.
type NewOrder struct {
	Type          models.OrderType
	TableID       *string
	TableNumber   string
	CustomerName  string
	CustomerPhone string
	UserID        string
	Notes         string
	Items         []ItemInput
}

// ItemInput adds a line. Name and UnitPrice are the catalog snapshot.
type ItemInput struct {
	MenuItemID string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	Notes      string
}

// ItemUpdate carries a partial line update; nil fields are left alone.
type ItemUpdate struct {
	Quantity *int
	Notes    *string
	Status   *models.ItemStatus
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

func wrongState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrState, fmt.Sprintf(format, args...))
}

// Create builds a NEW order with totals computed from the initial items.
func (e *Engine) Create(in NewOrder) (*models.Order, error) {
	if !in.Type.Valid() {
		return nil, invalid("unknown order type %q", in.Type)
	}
	if in.Type == models.OrderDineIn && (in.TableID == nil || strings.TrimSpace(*in.TableID) == "") {
		return nil, invalid("dine-in order requires a table")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, invalid("order requires the acting staff user")
	}
	for i, item := range in.Items {
		if err := validateItem(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	now := e.Now()
	order := &models.Order{
		ID:            e.NewID(),
		OrderNumber:   e.NewNumber(),
		Type:          in.Type,
		Status:        models.OrderNew,
		TableNumber:   in.TableNumber,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		UserID:        in.UserID,
		Notes:         in.Notes,
		TaxRate:       e.TaxRate,
		Items:         []models.OrderItem{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Type == models.OrderDineIn {
		id := *in.TableID
		order.TableID = &id
	}
	for _, item := range in.Items {
		e.mergeOrAppend(order, item)
	}
	Recalculate(order)
	return order, nil
}

// AddItem merges into the existing line for the same menu item or appends a
// new line at the end, then recomputes totals. It returns the affected line.
func (e *Engine) AddItem(o *models.Order, in ItemInput) (*models.OrderItem, error) {
	if o.Status.Terminal() {
		return nil, wrongState("order %s is %s", o.OrderNumber, o.Status)
	}
	if err := validateItem(in); err != nil {
		return nil, err
	}
	line := e.mergeOrAppend(o, in)
	Recalculate(o)
	o.UpdatedAt = e.Now()
	return line, nil
}

// UpdateItem applies a partial update to one line and recomputes totals.
func (e *Engine) UpdateItem(o *models.Order, itemID string, upd ItemUpdate) error {
	if o.Status.Terminal() {
		return wrongState("order %s is %s", o.OrderNumber, o.Status)
	}
	line := o.Item(itemID)
	if line == nil {
		return invalid("order %s has no item %s", o.OrderNumber, itemID)
	}
	if upd.Quantity != nil && *upd.Quantity < 1 {
		return invalid("quantity must be at least 1, got %d", *upd.Quantity)
	}
	if upd.Status != nil && !line.Status.CanAdvanceTo(*upd.Status) {
		return invalid("item status cannot move from %s to %s", line.Status, *upd.Status)
	}

	if upd.Quantity != nil {
		line.Quantity = *upd.Quantity
	}
	if upd.Notes != nil {
		line.Notes = strings.TrimSpace(*upd.Notes)
	}
	if upd.Status != nil {
		line.Status = *upd.Status
	}
	Recalculate(o)
	o.UpdatedAt = e.Now()
	return nil
}

// RemoveItem deletes a line. An order left without lines stays open with zero totals.
func (e *Engine) RemoveItem(o *models.Order, itemID string) error {
	if o.Status.Terminal() {
		return wrongState("order %s is %s", o.OrderNumber, o.Status)
	}
	idx := -1
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return invalid("order %s has no item %s", o.OrderNumber, itemID)
	}
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	Recalculate(o)
	o.UpdatedAt = e.Now()
	return nil
}

// Advance moves the order to next if the transition graph allows it.
func (e *Engine) Advance(o *models.Order, next models.OrderStatus) error {
	if !next.Valid() {
		return invalid("unknown order status %q", next)
	}
	if o.Status.Terminal() {
		return wrongState("order %s is already %s", o.OrderNumber, o.Status)
	}
	if !o.Status.CanTransitionTo(next) {
		return invalid("illegal transition %s -> %s", o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = e.Now()
	return nil
}

// Recalculate is the only place order totals are derived.
func Recalculate(o *models.Order) {
	subtotal := decimal.Zero
	for i := range o.Items {
		line := &o.Items[i]
		line.Total = utils.Round2(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		subtotal = subtotal.Add(line.Total)
	}
	o.Subtotal = utils.Round2(subtotal)
	o.TaxAmount = utils.Round2(o.Subtotal.Mul(o.TaxRate))
	o.Total = o.Subtotal.Add(o.TaxAmount)
}

func (e *Engine) mergeOrAppend(o *models.Order, in ItemInput) *models.OrderItem {
	for i := range o.Items {
		line := &o.Items[i]
		if line.MenuItemID == in.MenuItemID {
			line.Quantity += in.Quantity
			if line.Notes == "" {
				line.Notes = strings.TrimSpace(in.Notes)
			}
			return line
		}
	}
	o.Items = append(o.Items, models.OrderItem{
		ID:         e.NewID(),
		OrderID:    o.ID,
		Position:   len(o.Items),
		MenuItemID: in.MenuItemID,
		Name:       in.Name,
		Quantity:   in.Quantity,
		UnitPrice:  utils.Round2(in.UnitPrice),
		Notes:      strings.TrimSpace(in.Notes),
		Status:     models.ItemOrdered,
	})
	return &o.Items[len(o.Items)-1]
}

func validateItem(in ItemInput) error {
	if strings.TrimSpace(in.MenuItemID) == "" {
		return invalid("menu item id is required")
	}
	if in.Quantity < 1 {
		return invalid("quantity must be at least 1, got %d", in.Quantity)
	}
	if in.UnitPrice.IsNegative() {
		return invalid("unit price must not be negative")
	}
	return nil
}
