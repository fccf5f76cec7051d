package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice is the billing record derived from one order.
type Invoice struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	InvoiceNumber  string          `json:"invoice_number" gorm:"size:32;not null;unique"`
	OrderID        string          `json:"order_id" gorm:"size:36;not null;index:idx_invoices_order"` // one live invoice per order, see database.Migrate
	CustomerName   string          `json:"customer_name"`
	UserID         string          `json:"user_id" gorm:"size:36;not null"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2)"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	PaidAmount     decimal.Decimal `json:"paid_amount" gorm:"type:numeric(12,2)"`
	Status         InvoiceStatus   `json:"status" gorm:"size:20;not null;index"`
	PaymentMode    PaymentMode     `json:"payment_mode" gorm:"size:20"` // method of the latest payment
	Payments       []Payment       `json:"payments" gorm:"foreignKey:InvoiceID;constraint:OnDelete:RESTRICT"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// Payment is immutable once recorded; corrections are new entries.
type Payment struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	InvoiceID string          `json:"invoice_id" gorm:"size:36;not null;index:idx_payments_invoice_created,priority:1"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Method    PaymentMode     `json:"method" gorm:"size:20;not null"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime:false;index:idx_payments_invoice_created,priority:2"`
}

// InvoiceVersion is an immutable snapshot written on every invoice save.
type InvoiceVersion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	InvoiceID string         `json:"invoice_id" gorm:"size:36;index:idx_invoice_versions_invoice_id_version_no,unique,priority:1"`
	VersionNo int            `json:"version_no" gorm:"not null;index:idx_invoice_versions_invoice_id_version_no,unique,priority:2"`
	Status    InvoiceStatus  `json:"status" gorm:"size:20"`
	Snapshot  datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
}
