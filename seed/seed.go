// Package seed loads the starter catalog, floor plan and admin account into an
// empty database. Running it again only fills in what is missing.
package seed

import (
	"errors"
	"fmt"
	"log/slog"

	"restaurant-pos/database"
	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/shopspring/decimal"
)

type category struct {
	name        string
	description string
}

type menuItem struct {
	name     string
	price    int64
	category string
	itemType models.ItemType
}

var categories = []category{
	{"Starters", "Appetizers and starters"},
	{"Main Course", "Main dishes"},
	{"Beverages", "Drinks and beverages"},
	{"Desserts", "Sweet treats"},
}

var menu = []menuItem{
	{"Chicken Wings", 299, "Starters", models.ItemTypeNonVeg},
	{"Paneer Tikka", 249, "Starters", models.ItemTypeVeg},
	{"Fish Fingers", 349, "Starters", models.ItemTypeNonVeg},
	{"Butter Chicken", 399, "Main Course", models.ItemTypeNonVeg},
	{"Dal Makhani", 299, "Main Course", models.ItemTypeVeg},
	{"Biryani", 449, "Main Course", models.ItemTypeNonVeg},
	{"Paneer Makhani", 349, "Main Course", models.ItemTypeVeg},
	{"Fresh Lime Soda", 89, "Beverages", models.ItemTypeBeverage},
	{"Mango Lassi", 129, "Beverages", models.ItemTypeBeverage},
	{"Masala Chai", 49, "Beverages", models.ItemTypeBeverage},
	{"Gulab Jamun", 149, "Desserts", models.ItemTypeDessert},
	{"Ice Cream", 99, "Desserts", models.ItemTypeDessert},
}

// Result counts the rows created by one Run.
type Result struct {
	Users      int `json:"users"`
	Categories int `json:"categories"`
	MenuItems  int `json:"menu_items"`
	Tables     int `json:"tables"`
}

// Run seeds inside a single transaction.
func Run(store *database.Store, adminPassword string, taxRate decimal.Decimal, log *logger.Logger) (Result, error) {
	var res Result
	err := store.Transaction(func(tx *database.Store) error {
		var err error
		if res.Users, err = seedAdmin(tx, adminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		ids, created, err := seedCategories(tx)
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		res.Categories = created
		if res.MenuItems, err = seedMenu(tx, ids, taxRate); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
		if res.Tables, err = seedTables(tx); err != nil {
			return fmt.Errorf("seed tables: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("seed", "startup", "database seeded",
		slog.Int("users", res.Users),
		slog.Int("categories", res.Categories),
		slog.Int("menu_items", res.MenuItems),
		slog.Int("tables", res.Tables),
	)
	return res, nil
}

func seedAdmin(tx *database.Store, password string) (int, error) {
	_, err := tx.UserByUsername("admin")
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return 0, err
	}
	admin := models.User{Username: "admin", FullName: "Administrator", Role: models.RoleAdmin, Active: true}
	if err := admin.SetPassword(password); err != nil {
		return 0, err
	}
	if err := tx.CreateUser(&admin); err != nil {
		return 0, err
	}
	return 1, nil
}

func seedCategories(tx *database.Store) (map[string]string, int, error) {
	existing, err := tx.ListCategories(false)
	if err != nil {
		return nil, 0, err
	}
	ids := make(map[string]string, len(categories))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}
	created := 0
	for i, c := range categories {
		if _, ok := ids[c.name]; ok {
			continue
		}
		row := models.Category{Name: c.name, Description: c.description, SortOrder: i, Active: true}
		if err := tx.CreateCategory(&row); err != nil {
			return nil, 0, err
		}
		ids[c.name] = row.ID
		created++
	}
	return ids, created, nil
}

func seedMenu(tx *database.Store, categoryIDs map[string]string, taxRate decimal.Decimal) (int, error) {
	existing, err := tx.ListMenuItems(database.MenuFilter{})
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, item := range existing {
		have[item.Name] = true
	}
	created := 0
	for i, m := range menu {
		if have[m.name] {
			continue
		}
		row := models.MenuItem{
			Name:        m.name,
			Price:       decimal.NewFromInt(m.price),
			CategoryID:  categoryIDs[m.category],
			ItemType:    m.itemType,
			IsAvailable: true,
			TaxRate:     taxRate,
			SortOrder:   i,
		}
		if err := tx.CreateMenuItem(&row); err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}

// seedTables lays out T01..T12: two-seaters first, six-seaters upstairs.
func seedTables(tx *database.Store) (int, error) {
	created := 0
	for i := 1; i <= 12; i++ {
		number := fmt.Sprintf("T%02d", i)
		_, err := tx.TableByNumber(number)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return 0, err
		}
		capacity := 6
		switch {
		case i <= 4:
			capacity = 2
		case i <= 8:
			capacity = 4
		}
		section := "First Floor"
		if i <= 6 {
			section = "Ground Floor"
		}
		row := models.Table{Number: number, Capacity: capacity, Section: section, Status: models.TableAvailable}
		if err := tx.CreateTable(&row); err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}
