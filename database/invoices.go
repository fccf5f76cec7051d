package database

import (
	"encoding/json"
	"fmt"
	"time"

	"restaurant-pos/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadPayments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// CreateInvoice inserts inv at version 1 and records the first snapshot.
// An order has at most one live invoice; cancelled ones stay for audit and
// do not block a rebill.
func (s *Store) CreateInvoice(inv *models.Invoice) error {
	if inv.Version == 0 {
		inv.Version = 1
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Invoice{}).Where("order_id = ? AND status <> ?", inv.OrderID, models.InvoiceCancelled).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: order %s already has an invoice", ErrConflict, inv.OrderID)
		}
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return translate(err)
		}
		if err := insertPayments(tx, inv); err != nil {
			return err
		}
		return snapshot(tx, inv)
	})
}

func (s *Store) LoadInvoice(id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := first(s.db.Preload("Payments", preloadPayments).Where("id = ?", id), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// InvoiceByOrder returns the order's live invoice, or its latest cancelled
// one when every invoice was cancelled.
func (s *Store) InvoiceByOrder(orderID string) (*models.Invoice, error) {
	var inv models.Invoice
	q := s.db.Preload("Payments", preloadPayments).
		Where("order_id = ?", orderID).
		Order(fmt.Sprintf("CASE WHEN status = '%s' THEN 1 ELSE 0 END", models.InvoiceCancelled)).
		Order("created_at DESC")
	if err := first(q, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// SaveInvoice writes inv under the same version check as SaveOrder. Payments
// are insert-only: rows already stored are left untouched.
func (s *Store) SaveInvoice(inv *models.Invoice) error {
	expected := inv.Version
	err := s.db.Transaction(func(tx *gorm.DB) error {
		inv.Version = expected + 1
		res := tx.Model(inv).Omit(clause.Associations).Select("*").
			Where("version = ?", expected).
			Updates(inv)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return staleOrMissing(tx, &models.Invoice{}, inv.ID)
		}
		if err := insertPayments(tx, inv); err != nil {
			return err
		}
		return snapshot(tx, inv)
	})
	if err != nil {
		inv.Version = expected
	}
	return err
}

func insertPayments(tx *gorm.DB, inv *models.Invoice) error {
	if len(inv.Payments) == 0 {
		return nil
	}
	for i := range inv.Payments {
		inv.Payments[i].InvoiceID = inv.ID
	}
	return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&inv.Payments).Error)
}

func snapshot(tx *gorm.DB, inv *models.Invoice) error {
	blob, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("snapshot invoice %s: %w", inv.ID, err)
	}
	return translate(tx.Create(&models.InvoiceVersion{
		InvoiceID: inv.ID,
		VersionNo: inv.Version,
		Status:    inv.Status,
		Snapshot:  datatypes.JSON(blob),
		CreatedAt: inv.UpdatedAt,
	}).Error)
}

// InvoiceVersions lists the stored snapshots, oldest first.
func (s *Store) InvoiceVersions(invoiceID string) ([]models.InvoiceVersion, error) {
	if _, err := s.LoadInvoice(invoiceID); err != nil {
		return nil, err
	}
	var versions []models.InvoiceVersion
	if err := s.db.Where("invoice_id = ?", invoiceID).Order("version_no ASC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// InvoiceFilter narrows ListInvoices. Zero values mean no filter.
type InvoiceFilter struct {
	Status models.InvoiceStatus
	From   *time.Time
	To     *time.Time
	ListOptions
}

func (s *Store) ListInvoices(f InvoiceFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice
	q := s.db.Preload("Payments", preloadPayments).Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if err := f.apply(q).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
