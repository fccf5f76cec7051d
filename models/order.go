package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the aggregate root for a customer's request. Items are owned by the
// order and kept in insertion order (Position) for kitchen tickets.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber   string          `json:"order_number" gorm:"size:32;not null;unique"`
	Type          OrderType       `json:"type" gorm:"size:20;not null"`
	Status        OrderStatus     `json:"status" gorm:"size:20;not null;index"`
	TableID       *string         `json:"table_id" gorm:"size:36;index"`
	TableNumber   string          `json:"table_number" gorm:"size:16"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	UserID        string          `json:"user_id" gorm:"size:36;not null"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TaxRate       decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,4)"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	Notes         string          `json:"notes"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime:false"`
}

type OrderItem struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string          `json:"-" gorm:"size:36;not null;index"`
	Position   int             `json:"position"`
	MenuItemID string          `json:"menu_item_id" gorm:"size:36;not null;index"`
	Name       string          `json:"name"` // snapshot at order time
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"` // snapshot at order time
	Total      decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	Notes      string          `json:"notes"`
	Status     ItemStatus      `json:"status" gorm:"size:20;not null"`
}

// Item returns the line with the given id, or nil.
func (o *Order) Item(id string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}
