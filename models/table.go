package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table is a physical dining table. CurrentOrderID is set while an order occupies it.
type Table struct {
	ID             string      `json:"id" gorm:"primaryKey;size:36"`
	Number         string      `json:"number" gorm:"size:16;not null;unique"`
	Capacity       int         `json:"capacity"`
	Status         TableStatus `json:"status" gorm:"size:20;not null;index"`
	Section        string      `json:"section"`
	CurrentOrderID *string     `json:"current_order_id" gorm:"size:36"`
}

func (table *Table) BeforeCreate(tx *gorm.DB) (err error) {
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	if table.Status == "" {
		table.Status = TableAvailable
	}
	return
}
