package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-pos/billing"
	"restaurant-pos/database"
	"restaurant-pos/models"
	"restaurant-pos/orders"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var noon = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *database.Store
	reports *Reports
	paneer  *models.MenuItem
	lassi   *models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	store := database.NewStore(db)
	cat := &models.Category{Name: "Main Course", Active: true}
	if err := store.CreateCategory(cat); err != nil {
		t.Fatal(err)
	}
	paneer := &models.MenuItem{Name: "Paneer Tikka", Price: decimal.RequireFromString("320"), CategoryID: cat.ID, ItemType: models.ItemTypeVeg, IsAvailable: true}
	lassi := &models.MenuItem{Name: "Sweet Lassi", Price: decimal.RequireFromString("45"), CategoryID: cat.ID, ItemType: models.ItemTypeBeverage, IsAvailable: true}
	for _, item := range []*models.MenuItem{paneer, lassi} {
		if err := store.CreateMenuItem(item); err != nil {
			t.Fatal(err)
		}
	}
	return &fixture{
		store:   store,
		reports: New(sqlx.NewDb(sqlDB, database.SQLDriverName(db))),
		paneer:  paneer,
		lassi:   lassi,
	}
}

// sell records an order and its invoice at the given time, paying amounts in order.
func (f *fixture) sell(t *testing.T, at time.Time, paneerQty, lassiQty int, payments ...billing.PaymentInput) *models.Invoice {
	t.Helper()
	clock := func() time.Time { return at }
	oe := orders.NewEngine(decimal.RequireFromString("0.18"), nil)
	oe.Now = clock
	var items []orders.ItemInput
	if paneerQty > 0 {
		items = append(items, orders.ItemInput{MenuItemID: f.paneer.ID, Name: f.paneer.Name, Quantity: paneerQty, UnitPrice: f.paneer.Price})
	}
	if lassiQty > 0 {
		items = append(items, orders.ItemInput{MenuItemID: f.lassi.ID, Name: f.lassi.Name, Quantity: lassiQty, UnitPrice: f.lassi.Price})
	}
	order, err := oe.Create(orders.NewOrder{Type: models.OrderTakeaway, UserID: "u-1", Items: items})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.store.CreateOrder(order); err != nil {
		t.Fatal(err)
	}
	be := billing.NewEngine(nil)
	be.Now = clock
	inv, err := be.Create(order, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range payments {
		if _, err := be.AddPayment(inv, p); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.store.CreateInvoice(inv); err != nil {
		t.Fatal(err)
	}
	return inv
}

func cash(amount string) billing.PaymentInput {
	return billing.PaymentInput{Amount: decimal.RequireFromString(amount), Method: models.PaymentCash}
}

func card(amount string) billing.PaymentInput {
	return billing.PaymentInput{Amount: decimal.RequireFromString(amount), Method: models.PaymentCard}
}

func TestSales(t *testing.T) {
	f := newFixture(t)
	f.sell(t, noon, 2, 4, card("967.6"))              // 820 + 147.6
	f.sell(t, noon.Add(2*time.Hour), 1, 0, cash("100")) // 320 + 57.6
	f.sell(t, noon.AddDate(0, 0, -1), 1, 0)             // outside the day

	got, err := f.reports.Sales(context.Background(), Day(noon))
	if err != nil {
		t.Fatal(err)
	}
	if got.InvoiceCount != 2 {
		t.Fatalf("invoice count = %d, want 2", got.InvoiceCount)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"gross", got.Gross, "1140"},
		{"tax", got.Tax, "205.2"},
		{"net", got.Net, "1345.2"},
		{"paid", got.Paid, "1067.6"},
		{"outstanding", got.Outstanding, "277.6"},
		{"average", got.AverageTicket, "672.6"},
	}
	for _, c := range checks {
		if !c.got.Round(2).Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestPaymentModesAndTopItems(t *testing.T) {
	f := newFixture(t)
	f.sell(t, noon, 2, 4, card("967.6"))
	f.sell(t, noon, 0, 2, cash("50"), cash("56.2"))

	modes, err := f.reports.PaymentModes(context.Background(), Day(noon))
	if err != nil {
		t.Fatal(err)
	}
	if len(modes) != 2 || modes[0].Method != models.PaymentCard || modes[1].Count != 2 {
		t.Fatalf("modes = %+v", modes)
	}
	if modes[0].Label != "Card" {
		t.Errorf("label = %q", modes[0].Label)
	}

	top, err := f.reports.TopItems(context.Background(), Day(noon), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Name != "Sweet Lassi" || top[0].Quantity != 6 {
		t.Fatalf("top = %+v", top)
	}
	if !top[1].Revenue.Equal(decimal.RequireFromString("640")) {
		t.Errorf("paneer revenue = %s, want 640", top[1].Revenue)
	}
}

func TestOrderCountsAndHourly(t *testing.T) {
	f := newFixture(t)
	f.sell(t, noon, 1, 0)
	f.sell(t, noon.Add(30*time.Minute), 1, 0)
	f.sell(t, noon.Add(3*time.Hour), 0, 1)

	counts, err := f.reports.OrderCounts(context.Background(), Day(noon))
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != len(models.OrderStatuses) || counts[0].Status != models.OrderNew || counts[0].Count != 3 {
		t.Fatalf("counts = %+v", counts)
	}

	hours, err := f.reports.Hourly(context.Background(), Day(noon), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if hours[12].Invoices != 2 || hours[15].Invoices != 1 || hours[13].Invoices != 0 {
		t.Errorf("hourly = %+v", hours[12:16])
	}
}

func TestToday(t *testing.T) {
	f := newFixture(t)
	f.sell(t, noon, 1, 0)
	if err := f.store.CreateTable(&models.Table{Number: "T01", Capacity: 4}); err != nil {
		t.Fatal(err)
	}
	d, err := f.reports.Today(context.Background(), noon)
	if err != nil {
		t.Fatal(err)
	}
	if d.ActiveOrders != 1 || d.TotalTables != 1 || d.OccupiedTables != 0 || d.PendingBills != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}

func TestRangeValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.Sales(context.Background(), Range{From: noon, To: noon})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("empty range err = %v, want ErrValidation", err)
	}
}
