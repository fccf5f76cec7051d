package orders

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-pos/models"
)

func newTestEngine() *Engine {
	seq := 0
	e := NewEngine(decimal.RequireFromString("0.18"), func() string { return "ORD-1" })
	e.Now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	e.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func assertTotals(t *testing.T, o *models.Order) {
	t.Helper()
	sum := decimal.Zero
	for _, line := range o.Items {
		want := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if !line.Total.Equal(want) {
			t.Fatalf("line %s total = %s, want %s", line.ID, line.Total, want)
		}
		sum = sum.Add(line.Total)
	}
	if !o.Subtotal.Equal(sum) {
		t.Fatalf("subtotal = %s, want %s", o.Subtotal, sum)
	}
	if !o.Total.Equal(o.Subtotal.Add(o.TaxAmount)) {
		t.Fatalf("total = %s, want subtotal+tax = %s", o.Total, o.Subtotal.Add(o.TaxAmount))
	}
}

func TestCreateDineInScenario(t *testing.T) {
	e := newTestEngine()
	o, err := e.Create(NewOrder{
		Type:        models.OrderDineIn,
		TableID:     strPtr("table-5"),
		TableNumber: "T5",
		UserID:      "user-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.Status != models.OrderNew {
		t.Fatalf("status = %s, want NEW", o.Status)
	}
	if _, err := e.AddItem(o, ItemInput{MenuItemID: "m1", Name: "Butter Chicken", Quantity: 2, UnitPrice: dec("320")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := e.AddItem(o, ItemInput{MenuItemID: "m2", Name: "Naan", Quantity: 4, UnitPrice: dec("45")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if !o.Subtotal.Equal(dec("820")) {
		t.Errorf("subtotal = %s, want 820", o.Subtotal)
	}
	if !o.TaxAmount.Equal(dec("147.6")) {
		t.Errorf("tax = %s, want 147.6", o.TaxAmount)
	}
	if !o.Total.Equal(dec("967.6")) {
		t.Errorf("total = %s, want 967.6", o.Total)
	}
	assertTotals(t, o)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      NewOrder
		wantErr error
	}{
		{
			name:    "dine in without table",
			in:      NewOrder{Type: models.OrderDineIn, UserID: "u"},
			wantErr: models.ErrValidation,
		},
		{
			name:    "unknown type",
			in:      NewOrder{Type: "DRIVE_THRU", UserID: "u"},
			wantErr: models.ErrValidation,
		},
		{
			name:    "missing user",
			in:      NewOrder{Type: models.OrderTakeaway},
			wantErr: models.ErrValidation,
		},
		{
			name: "zero quantity initial item",
			in: NewOrder{Type: models.OrderTakeaway, UserID: "u", Items: []ItemInput{
				{MenuItemID: "m1", Quantity: 0, UnitPrice: dec("10")},
			}},
			wantErr: models.ErrValidation,
		},
		{
			name: "takeaway with merged initial items",
			in: NewOrder{Type: models.OrderTakeaway, UserID: "u", Items: []ItemInput{
				{MenuItemID: "m1", Quantity: 1, UnitPrice: dec("10")},
				{MenuItemID: "m1", Quantity: 2, UnitPrice: dec("10")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := newTestEngine().Create(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(o.Items) != 1 || o.Items[0].Quantity != 3 {
				t.Fatalf("expected one merged line of 3, got %+v", o.Items)
			}
			assertTotals(t, o)
		})
	}
}

func TestAddItemMergesSameMenuItem(t *testing.T) {
	e := newTestEngine()
	o, _ := e.Create(NewOrder{Type: models.OrderTakeaway, UserID: "u"})

	first, _ := e.AddItem(o, ItemInput{MenuItemID: "m1", Name: "Lassi", Quantity: 1, UnitPrice: dec("129")})
	e.AddItem(o, ItemInput{MenuItemID: "m2", Name: "Chai", Quantity: 1, UnitPrice: dec("49")})
	merged, err := e.AddItem(o, ItemInput{MenuItemID: "m1", Name: "Lassi", Quantity: 2, UnitPrice: dec("150")})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(o.Items) != 2 {
		t.Fatalf("lines = %d, want 2", len(o.Items))
	}
	if merged.ID != first.ID || merged.Quantity != 3 {
		t.Fatalf("merged line = %+v", merged)
	}
	// the first snapshot price wins
	if !o.Items[0].UnitPrice.Equal(dec("129")) {
		t.Errorf("unit price = %s, want snapshot 129", o.Items[0].UnitPrice)
	}
	if o.Items[0].MenuItemID != "m1" || o.Items[1].MenuItemID != "m2" {
		t.Errorf("insertion order changed: %+v", o.Items)
	}
	assertTotals(t, o)
}

func TestAddItemZeroQuantityLeavesTotals(t *testing.T) {
	e := newTestEngine()
	o, _ := e.Create(NewOrder{Type: models.OrderTakeaway, UserID: "u", Items: []ItemInput{
		{MenuItemID: "m1", Quantity: 2, UnitPrice: dec("99")},
	}})
	before := *o

	_, err := e.AddItem(o, ItemInput{MenuItemID: "m2", Quantity: 0, UnitPrice: dec("10")})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(o.Items) != 1 || !o.Subtotal.Equal(before.Subtotal) || !o.Total.Equal(before.Total) {
		t.Fatalf("order mutated by rejected add: %+v", o)
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	e := newTestEngine()
	o, _ := e.Create(NewOrder{Type: models.OrderDelivery, UserID: "u", Items: []ItemInput{
		{MenuItemID: "m1", Quantity: 1, UnitPrice: dec("299")},
		{MenuItemID: "m2", Quantity: 1, UnitPrice: dec("89")},
	}})
	lineID := o.Items[0].ID

	qty := 3
	if err := e.UpdateItem(o, lineID, ItemUpdate{Quantity: &qty, Notes: strPtr(" extra spicy ")}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if o.Items[0].Notes != "extra spicy" || !o.Items[0].Total.Equal(dec("897")) {
		t.Fatalf("line after update = %+v", o.Items[0])
	}
	assertTotals(t, o)

	zero := 0
	if err := e.UpdateItem(o, lineID, ItemUpdate{Quantity: &zero}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("zero quantity update err = %v", err)
	}
	if err := e.UpdateItem(o, "missing", ItemUpdate{Quantity: &qty}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("missing item err = %v", err)
	}

	ready := models.ItemReady
	if err := e.UpdateItem(o, lineID, ItemUpdate{Status: &ready}); err != nil {
		t.Fatalf("advance item status: %v", err)
	}
	back := models.ItemPreparing
	if err := e.UpdateItem(o, lineID, ItemUpdate{Status: &back}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("backward item status err = %v", err)
	}

	if err := e.RemoveItem(o, lineID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := e.RemoveItem(o, o.Items[0].ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(o.Items) != 0 || !o.Subtotal.IsZero() || !o.TaxAmount.IsZero() || !o.Total.IsZero() {
		t.Fatalf("empty order totals = %s/%s/%s", o.Subtotal, o.TaxAmount, o.Total)
	}
	if o.Status != models.OrderNew {
		t.Fatalf("empty order must stay open, got %s", o.Status)
	}
}

func TestRandomMutationsKeepInvariants(t *testing.T) {
	e := newTestEngine()
	o, _ := e.Create(NewOrder{Type: models.OrderTakeaway, UserID: "u"})
	rng := rand.New(rand.NewSource(42))
	prices := []string{"45", "89.5", "129", "320", "0.99"}

	for i := 0; i < 300; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(o.Items) == 0:
			menuID := fmt.Sprintf("m%d", rng.Intn(6))
			e.AddItem(o, ItemInput{MenuItemID: menuID, Quantity: rng.Intn(4), UnitPrice: dec(prices[rng.Intn(len(prices))])})
		case op == 1:
			q := rng.Intn(5)
			e.UpdateItem(o, o.Items[rng.Intn(len(o.Items))].ID, ItemUpdate{Quantity: &q})
		default:
			e.RemoveItem(o, o.Items[rng.Intn(len(o.Items))].ID)
		}
		assertTotals(t, o)

		seen := map[string]bool{}
		for _, line := range o.Items {
			if seen[line.MenuItemID] {
				t.Fatalf("duplicate line for menu item %s", line.MenuItemID)
			}
			seen[line.MenuItemID] = true
		}
	}
}

func TestAdvance(t *testing.T) {
	legal := map[[2]models.OrderStatus]bool{
		{models.OrderNew, models.OrderConfirmed}:       true,
		{models.OrderConfirmed, models.OrderPreparing}: true,
		{models.OrderPreparing, models.OrderReady}:     true,
		{models.OrderReady, models.OrderServed}:        true,
		{models.OrderNew, models.OrderCancelled}:       true,
		{models.OrderConfirmed, models.OrderCancelled}: true,
		{models.OrderPreparing, models.OrderCancelled}: true,
		{models.OrderReady, models.OrderCancelled}:     true,
	}

	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				e := newTestEngine()
				o, _ := e.Create(NewOrder{Type: models.OrderTakeaway, UserID: "u"})
				o.Status = from

				err := e.Advance(o, to)
				if legal[[2]models.OrderStatus{from, to}] {
					if err != nil || o.Status != to {
						t.Fatalf("expected legal transition, err = %v status = %s", err, o.Status)
					}
					return
				}
				if err == nil {
					t.Fatalf("expected rejection")
				}
				if from.Terminal() && !errors.Is(err, models.ErrState) {
					t.Fatalf("terminal order err = %v, want state error", err)
				}
				if o.Status != from {
					t.Fatalf("rejected transition changed status to %s", o.Status)
				}
			})
		}
	}
}

func TestTerminalOrderRejectsItemChanges(t *testing.T) {
	e := newTestEngine()
	o, _ := e.Create(NewOrder{Type: models.OrderTakeaway, UserID: "u", Items: []ItemInput{
		{MenuItemID: "m1", Quantity: 1, UnitPrice: dec("10")},
	}})
	e.Advance(o, models.OrderCancelled)

	if _, err := e.AddItem(o, ItemInput{MenuItemID: "m2", Quantity: 1, UnitPrice: dec("5")}); !errors.Is(err, models.ErrState) {
		t.Errorf("AddItem err = %v, want state error", err)
	}
	if err := e.RemoveItem(o, o.Items[0].ID); !errors.Is(err, models.ErrState) {
		t.Errorf("RemoveItem err = %v, want state error", err)
	}
}

func TestDefaultNumbersUniqueOnFrozenClock(t *testing.T) {
	e := NewEngine(dec("0.18"), nil)
	e.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		o, err := e.Create(NewOrder{Type: models.OrderTakeaway, UserID: "user-1"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[o.OrderNumber] {
			t.Fatalf("duplicate order number %s", o.OrderNumber)
		}
		seen[o.OrderNumber] = true
	}
}
