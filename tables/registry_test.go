package tables

import (
	"errors"
	"testing"

	"restaurant-pos/models"
)

func TestOccupyAndRelease(t *testing.T) {
	tests := []struct {
		name    string
		status  models.TableStatus
		wantErr error
	}{
		{"available", models.TableAvailable, nil},
		{"reserved", models.TableReserved, nil},
		{"occupied", models.TableOccupied, models.ErrState},
		{"maintenance", models.TableMaintenance, models.ErrState},
		{"cleaning", models.TableCleaning, models.ErrState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(models.TableAvailable)
			table := &models.Table{Number: "T05", Status: tt.status}
			err := r.Occupy(table, "order-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if table.Status != tt.status {
					t.Fatalf("rejected occupy changed status to %s", table.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Occupy: %v", err)
			}
			if table.Status != models.TableOccupied || *table.CurrentOrderID != "order-1" {
				t.Fatalf("table = %+v", table)
			}
			if r.Release(table, "other-order") {
				t.Fatalf("release by a different order must be ignored")
			}
			if !r.Release(table, "order-1") || table.Status != models.TableAvailable || table.CurrentOrderID != nil {
				t.Fatalf("after release = %+v", table)
			}
		})
	}
}

func TestReleaseToCleaning(t *testing.T) {
	r := NewRegistry(models.TableCleaning)
	table := &models.Table{Number: "T01", Status: models.TableAvailable}
	r.Occupy(table, "o")
	r.Release(table, "o")
	if table.Status != models.TableCleaning {
		t.Fatalf("status = %s, want CLEANING", table.Status)
	}
	if err := r.SetStatus(table, models.TableAvailable); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	r := NewRegistry("")
	table := &models.Table{Number: "T02", Status: models.TableAvailable}

	if err := r.SetStatus(table, models.TableOccupied); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("manual OCCUPIED err = %v", err)
	}
	if err := r.SetStatus(table, "BROKEN"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("unknown status err = %v", err)
	}
	if err := r.SetStatus(table, models.TableReserved); err != nil || table.Status != models.TableReserved {
		t.Fatalf("reserve: err = %v status = %s", err, table.Status)
	}

	r.Occupy(table, "o")
	if err := r.SetStatus(table, models.TableMaintenance); !errors.Is(err, models.ErrState) {
		t.Fatalf("override of occupied table err = %v", err)
	}
}
