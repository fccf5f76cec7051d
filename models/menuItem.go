package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem is a sellable catalog entry. Items are soft-disabled through
// IsAvailable instead of being deleted, so historic order lines keep resolving.
type MenuItem struct {
	ID          string              `json:"id" gorm:"primaryKey;size:36"`
	Name        string              `json:"name" gorm:"not null;unique"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price" gorm:"type:numeric(12,2);not null"`
	Cost        decimal.NullDecimal `json:"cost" gorm:"type:numeric(12,2)"`
	CategoryID  string              `json:"category_id" gorm:"size:36;not null;index"`
	ItemType    ItemType            `json:"item_type" gorm:"size:20;not null"`
	IsAvailable bool                `json:"is_available"`
	TaxRate     decimal.Decimal     `json:"tax_rate" gorm:"type:numeric(5,4)"` // fraction, 0.18 = 18%
	SortOrder   int                 `json:"sort_order"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (item *MenuItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return
}
