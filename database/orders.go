package database

import (
	"fmt"
	"time"

	"restaurant-pos/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// CreateOrder inserts a new order and its lines at version 1.
func (s *Store) CreateOrder(o *models.Order) error {
	if o.Version == 0 {
		o.Version = 1
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return translate(err)
		}
		return insertItems(tx, o)
	})
}

// LoadOrder returns the order with its lines in position order.
func (s *Store) LoadOrder(id string) (*models.Order, error) {
	var order models.Order
	if err := first(s.db.Preload("Items", preloadItems).Where("id = ?", id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SaveOrder writes o when the stored version still equals o.Version, then
// bumps o.Version. Lines are replaced wholesale.
func (s *Store) SaveOrder(o *models.Order) error {
	expected := o.Version
	err := s.db.Transaction(func(tx *gorm.DB) error {
		o.Version = expected + 1
		res := tx.Model(o).Omit(clause.Associations).Select("*").
			Where("version = ?", expected).
			Updates(o)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return staleOrMissing(tx, &models.Order{}, o.ID)
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return insertItems(tx, o)
	})
	if err != nil {
		o.Version = expected
	}
	return err
}

func insertItems(tx *gorm.DB, o *models.Order) error {
	if len(o.Items) == 0 {
		return nil
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		o.Items[i].Position = i
	}
	return translate(tx.Create(&o.Items).Error)
}

func staleOrMissing(tx *gorm.DB, model any, id string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrStaleWrite, id)
}

// OrderFilter narrows ListOrders. Zero values mean no filter.
type OrderFilter struct {
	Statuses []models.OrderStatus
	Type     models.OrderType
	TableID  string
	UserID   string
	From     *time.Time
	To       *time.Time
	ListOptions
}

// ListOrders returns newest orders first.
func (s *Store) ListOrders(f OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := s.db.Preload("Items", preloadItems).Order("created_at DESC")
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.TableID != "" {
		q = q.Where("table_id = ?", f.TableID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if err := f.apply(q).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
