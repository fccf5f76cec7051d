package database

import (
	"errors"
	"testing"
	"time"

	"restaurant-pos/billing"
	"restaurant-pos/models"
	"restaurant-pos/orders"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db)
}

func seedMenu(t *testing.T, s *Store) (*models.Category, *models.MenuItem, *models.MenuItem) {
	t.Helper()
	cat := &models.Category{Name: "Main Course", Active: true}
	if err := s.CreateCategory(cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	paneer := &models.MenuItem{Name: "Paneer Tikka", Price: decimal.RequireFromString("320"), CategoryID: cat.ID, ItemType: models.ItemTypeVeg, IsAvailable: true}
	lassi := &models.MenuItem{Name: "Sweet Lassi", Price: decimal.RequireFromString("45"), CategoryID: cat.ID, ItemType: models.ItemTypeBeverage, IsAvailable: true}
	for _, item := range []*models.MenuItem{paneer, lassi} {
		if err := s.CreateMenuItem(item); err != nil {
			t.Fatalf("create item: %v", err)
		}
	}
	return cat, paneer, lassi
}

func newOrder(t *testing.T, paneer, lassi *models.MenuItem) *models.Order {
	t.Helper()
	engine := orders.NewEngine(decimal.RequireFromString("0.18"), nil)
	order, err := engine.Create(orders.NewOrder{
		Type:   models.OrderTakeaway,
		UserID: "user-1",
		Items: []orders.ItemInput{
			{MenuItemID: paneer.ID, Name: paneer.Name, Quantity: 2, UnitPrice: paneer.Price},
			{MenuItemID: lassi.ID, Name: lassi.Name, Quantity: 4, UnitPrice: lassi.Price},
		},
	})
	if err != nil {
		t.Fatalf("engine create: %v", err)
	}
	return order
}

func TestOrderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, paneer, lassi := seedMenu(t, s)
	order := newOrder(t, paneer, lassi)

	if err := s.CreateOrder(order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	got, err := s.LoadOrder(order.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].MenuItemID != paneer.ID {
		t.Fatalf("items not restored in order: %+v", got.Items)
	}
	if !got.Total.Equal(decimal.RequireFromString("967.6")) {
		t.Errorf("total = %s, want 967.6", got.Total)
	}
	if got.Version != 1 {
		t.Errorf("version = %d, want 1", got.Version)
	}

	engine := orders.NewEngine(got.TaxRate, nil)
	if err := engine.RemoveItem(got, got.Items[1].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.SaveOrder(got); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, _ := s.LoadOrder(order.ID)
	if len(again.Items) != 1 || again.Version != 2 {
		t.Fatalf("after save: items=%d version=%d", len(again.Items), again.Version)
	}
	if !again.Subtotal.Equal(decimal.RequireFromString("640")) {
		t.Errorf("subtotal = %s, want 640", again.Subtotal)
	}
}

func TestSaveOrderStaleWrite(t *testing.T) {
	s := newTestStore(t)
	_, paneer, lassi := seedMenu(t, s)
	order := newOrder(t, paneer, lassi)
	if err := s.CreateOrder(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	a, _ := s.LoadOrder(order.ID)
	b, _ := s.LoadOrder(order.ID)

	a.Notes = "no onions"
	if err := s.SaveOrder(a); err != nil {
		t.Fatalf("first save: %v", err)
	}
	b.Notes = "extra spicy"
	err := s.SaveOrder(b)
	if !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("second save err = %v, want ErrStaleWrite", err)
	}
	if b.Version != 1 {
		t.Errorf("failed save must keep version, got %d", b.Version)
	}

	missing := newOrder(t, paneer, lassi)
	if err := s.SaveOrder(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("save of unknown order err = %v, want ErrNotFound", err)
	}
}

func TestInvoicePersistence(t *testing.T) {
	s := newTestStore(t)
	_, paneer, lassi := seedMenu(t, s)
	order := newOrder(t, paneer, lassi)
	if err := s.CreateOrder(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	bill := billing.NewEngine(nil)
	inv, err := bill.Create(order, "cashier-1")
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	if err := s.CreateInvoice(inv); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	dup, _ := bill.Create(order, "cashier-1")
	if err := s.CreateInvoice(dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("second invoice err = %v, want ErrConflict", err)
	}

	loaded, err := s.LoadInvoice(inv.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := bill.AddPayment(loaded, billing.PaymentInput{Amount: decimal.RequireFromString("500"), Method: models.PaymentCash}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := s.SaveInvoice(loaded); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := bill.MarkFullyPaid(loaded, models.PaymentCard); err != nil {
		t.Fatalf("pay full: %v", err)
	}
	if err := s.SaveInvoice(loaded); err != nil {
		t.Fatalf("save: %v", err)
	}

	final, err := s.InvoiceByOrder(order.ID)
	if err != nil {
		t.Fatalf("by order: %v", err)
	}
	if final.Status != models.InvoicePaid || len(final.Payments) != 2 {
		t.Fatalf("status=%s payments=%d", final.Status, len(final.Payments))
	}
	if !final.PaidAmount.Equal(decimal.RequireFromString("967.6")) {
		t.Errorf("paid = %s, want 967.6", final.PaidAmount)
	}

	versions, err := s.InvoiceVersions(inv.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("versions = %d, want 3", len(versions))
	}
	wantStatus := []models.InvoiceStatus{models.InvoiceUnpaid, models.InvoicePartial, models.InvoicePaid}
	for i, v := range versions {
		if v.VersionNo != i+1 || v.Status != wantStatus[i] {
			t.Errorf("version[%d] = %d/%s, want %d/%s", i, v.VersionNo, v.Status, i+1, wantStatus[i])
		}
	}

	paid, err := s.ListInvoices(InvoiceFilter{Status: models.InvoicePaid})
	if err != nil || len(paid) != 1 {
		t.Fatalf("list paid = %d, %v", len(paid), err)
	}
}

func TestRebillAfterCancelledInvoice(t *testing.T) {
	s := newTestStore(t)
	_, paneer, lassi := seedMenu(t, s)
	order := newOrder(t, paneer, lassi)
	if err := s.CreateOrder(order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	bill := billing.NewEngine(nil)

	first, err := bill.Create(order, "cashier-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateInvoice(first); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if err := bill.Cancel(first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveInvoice(first); err != nil {
		t.Fatalf("save cancelled: %v", err)
	}

	second, err := bill.Create(order, "cashier-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateInvoice(second); err != nil {
		t.Fatalf("rebill after cancel: %v", err)
	}

	live, err := s.InvoiceByOrder(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if live.ID != second.ID || live.Status != models.InvoiceUnpaid {
		t.Errorf("InvoiceByOrder = %s/%s, want live %s", live.ID, live.Status, second.ID)
	}

	third, err := bill.Create(order, "cashier-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateInvoice(third); !errors.Is(err, ErrConflict) {
		t.Errorf("second live invoice err = %v, want ErrConflict", err)
	}
	// the index holds even when the count check is bypassed
	if err := translate(s.db.Omit(clause.Associations).Create(third).Error); !errors.Is(err, ErrConflict) {
		t.Errorf("raw insert of second live invoice err = %v, want ErrConflict", err)
	}
}

func TestDeleteCategoryRestrict(t *testing.T) {
	s := newTestStore(t)
	cat, _, _ := seedMenu(t, s)

	if err := s.DeleteCategory(cat.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete referenced category err = %v, want ErrConflict", err)
	}

	empty := &models.Category{Name: "Specials"}
	if err := s.CreateCategory(empty); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteCategory(empty.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	if _, err := s.GetCategory(empty.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
}

func TestCatalogQueries(t *testing.T) {
	s := newTestStore(t)
	cat, paneer, _ := seedMenu(t, s)

	if err := s.CreateCategory(&models.Category{Name: "Main Course"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate category err = %v, want ErrConflict", err)
	}
	if err := s.CreateMenuItem(&models.MenuItem{Name: "Ghost", CategoryID: "missing", ItemType: models.ItemTypeVeg}); !errors.Is(err, ErrNotFound) {
		t.Errorf("item with unknown category err = %v, want ErrNotFound", err)
	}

	if _, err := s.SetMenuItemAvailability(paneer.ID, false); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		filter MenuFilter
		want   int
	}{
		{"all", MenuFilter{}, 2},
		{"available", MenuFilter{AvailableOnly: true}, 1},
		{"by category", MenuFilter{CategoryID: cat.ID}, 2},
		{"by type", MenuFilter{ItemType: models.ItemTypeBeverage}, 1},
		{"search", MenuFilter{Search: "paneer"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ListMenuItems(tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.want {
				t.Errorf("got %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestTableSaveClearsOrder(t *testing.T) {
	s := newTestStore(t)
	table := &models.Table{Number: "T05", Capacity: 4}
	if err := s.CreateTable(table); err != nil {
		t.Fatal(err)
	}
	orderID := "order-1"
	table.Status = models.TableOccupied
	table.CurrentOrderID = &orderID
	if err := s.SaveTable(table); err != nil {
		t.Fatal(err)
	}
	table.Status = models.TableAvailable
	table.CurrentOrderID = nil
	if err := s.SaveTable(table); err != nil {
		t.Fatal(err)
	}
	got, err := s.TableByNumber("T05")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TableAvailable || got.CurrentOrderID != nil {
		t.Errorf("table = %s/%v, want AVAILABLE/nil", got.Status, got.CurrentOrderID)
	}
}

func TestListOrdersFilters(t *testing.T) {
	s := newTestStore(t)
	_, paneer, lassi := seedMenu(t, s)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		o := newOrder(t, paneer, lassi)
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if i == 2 {
			o.Status = models.OrderCancelled
		}
		if err := s.CreateOrder(o); err != nil {
			t.Fatal(err)
		}
	}
	from := base.Add(30 * time.Minute)
	tests := []struct {
		name   string
		filter OrderFilter
		want   int
	}{
		{"all", OrderFilter{}, 3},
		{"new only", OrderFilter{Statuses: []models.OrderStatus{models.OrderNew}}, 2},
		{"since", OrderFilter{From: &from}, 2},
		{"paged", OrderFilter{ListOptions: ListOptions{Limit: 1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListOrders(tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d orders, want %d", len(got), tt.want)
			}
		})
	}
}
