// Package tables drives table occupancy in response to order lifecycle events.
package tables

import (
	"fmt"

	"restaurant-pos/models"
)

// Registry holds the status a table returns to once its order is closed.
type Registry struct {
	ReleaseStatus models.TableStatus
}

func NewRegistry(release models.TableStatus) *Registry {
	if release != models.TableCleaning {
		release = models.TableAvailable
	}
	return &Registry{ReleaseStatus: release}
}

// Occupy seats an order at t. Only AVAILABLE or RESERVED tables can be taken.
func (r *Registry) Occupy(t *models.Table, orderID string) error {
	switch t.Status {
	case models.TableAvailable, models.TableReserved:
	default:
		return fmt.Errorf("%w: table %s is %s", models.ErrState, t.Number, t.Status)
	}
	id := orderID
	t.Status = models.TableOccupied
	t.CurrentOrderID = &id
	return nil
}

// Release frees t when the order seated there was paid or cancelled.
// Releasing a table held by another order is a no-op.
func (r *Registry) Release(t *models.Table, orderID string) bool {
	if t.Status != models.TableOccupied || t.CurrentOrderID == nil || *t.CurrentOrderID != orderID {
		return false
	}
	t.Status = r.ReleaseStatus
	t.CurrentOrderID = nil
	return true
}

// SetStatus is the manual override used by floor staff. Occupancy is only
// ever changed through Occupy and Release.
func (r *Registry) SetStatus(t *models.Table, status models.TableStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown table status %q", models.ErrValidation, status)
	}
	if status == models.TableOccupied {
		return fmt.Errorf("%w: tables become occupied only by seating an order", models.ErrValidation)
	}
	if t.Status == models.TableOccupied {
		return fmt.Errorf("%w: table %s is occupied by an open order", models.ErrState, t.Number)
	}
	t.Status = status
	return nil
}
