package seed

import (
	"bytes"
	"log/slog"
	"testing"

	"restaurant-pos/database"
	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/shopspring/decimal"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	store := database.NewStore(db)
	log := logger.New("test", &bytes.Buffer{}, slog.LevelInfo)
	rate := decimal.RequireFromString("0.18")

	first, err := Run(store, "admin123", rate, log)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	want := Result{Users: 1, Categories: 4, MenuItems: 12, Tables: 12}
	if first != want {
		t.Fatalf("first run = %+v, want %+v", first, want)
	}

	second, err := Run(store, "admin123", rate, log)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second != (Result{}) {
		t.Errorf("second run created %+v, want nothing", second)
	}

	admin, err := store.UserByUsername("admin")
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != models.RoleAdmin || admin.ComparePassword("admin123") != nil {
		t.Errorf("admin = %+v", admin)
	}

	t05, err := store.TableByNumber("T05")
	if err != nil {
		t.Fatal(err)
	}
	if t05.Capacity != 4 || t05.Section != "Ground Floor" {
		t.Errorf("T05 = %+v", t05)
	}

	drinks, err := store.ListMenuItems(database.MenuFilter{ItemType: models.ItemTypeBeverage})
	if err != nil {
		t.Fatal(err)
	}
	if len(drinks) != 3 {
		t.Errorf("beverages = %d, want 3", len(drinks))
	}
}
