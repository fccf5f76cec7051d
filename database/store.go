package database

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Store is the repository over orders, invoices, catalog, tables and staff.
// A Store is bound to either the base connection or an open transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for collaborators that run their own SQL.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// For returns a Store bound to the request's transaction when the Tx
// middleware opened one, otherwise the Store itself.
func (s *Store) For(c *fiber.Ctx) *Store {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return &Store{db: tx}
		}
	}
	return s
}

// Transaction runs fn inside a transaction (a savepoint when s is already
// transactional) and rolls back when fn returns an error.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// ListOptions pages list queries; zero Limit means the default page size.
type ListOptions struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (o ListOptions) apply(q *gorm.DB) *gorm.DB {
	limit := o.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	q = q.Limit(limit)
	if o.Offset > 0 {
		q = q.Offset(o.Offset)
	}
	return q
}

func first(q *gorm.DB, dst any) error {
	if err := q.First(dst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
