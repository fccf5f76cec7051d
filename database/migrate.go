package database

import (
	"fmt"

	"restaurant-pos/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations.
// On Postgres it additionally enforces:
// - Money column types (NUMERIC(12,2))
// - Composite indexes (invoice versions, payments, order items)
// - Basic CHECK constraints
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Category{},
			&models.MenuItem{},
			&models.Table{},
			&models.Order{},
			&models.OrderItem{},
			&models.Invoice{},
			&models.Payment{},
			&models.InvoiceVersion{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// One live invoice per order. Cancelled invoices are kept for audit,
		// so the uniqueness is partial; both dialects support the WHERE form.
		live := []string{
			`DROP INDEX IF EXISTS idx_invoices_order_id`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_live_order ON invoices (order_id) WHERE status <> 'CANCELLED'`,
		}
		for _, stmt := range live {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("invoice index migration failed on: %s - %w", stmt, err)
			}
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE menu_items  ALTER COLUMN price      TYPE numeric(12,2)`,
			`ALTER TABLE orders      ALTER COLUMN subtotal   TYPE numeric(12,2)`,
			`ALTER TABLE orders      ALTER COLUMN tax_amount TYPE numeric(12,2)`,
			`ALTER TABLE orders      ALTER COLUMN total      TYPE numeric(12,2)`,
			`ALTER TABLE order_items ALTER COLUMN unit_price TYPE numeric(12,2)`,
			`ALTER TABLE order_items ALTER COLUMN total      TYPE numeric(12,2)`,
			`ALTER TABLE invoices    ALTER COLUMN subtotal   TYPE numeric(12,2)`,
			`ALTER TABLE invoices    ALTER COLUMN tax_amount TYPE numeric(12,2)`,
			`ALTER TABLE invoices    ALTER COLUMN discount_amount TYPE numeric(12,2)`,
			`ALTER TABLE invoices    ALTER COLUMN total      TYPE numeric(12,2)`,
			`ALTER TABLE invoices    ALTER COLUMN paid_amount TYPE numeric(12,2)`,
			`ALTER TABLE payments    ALTER COLUMN amount     TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_order_items_order_position ON order_items (order_id, position)`,
			`CREATE INDEX IF NOT EXISTS idx_orders_table_status ON orders (table_id, status)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := map[string]string{
			"chk_menu_items_price_nonneg":    `ALTER TABLE menu_items ADD CONSTRAINT chk_menu_items_price_nonneg CHECK (price >= 0)`,
			"chk_order_items_quantity_pos":   `ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity_pos CHECK (quantity > 0)`,
			"chk_payments_amount_pos":        `ALTER TABLE payments ADD CONSTRAINT chk_payments_amount_pos CHECK (amount > 0)`,
			"chk_invoices_discount_in_range": `ALTER TABLE invoices ADD CONSTRAINT chk_invoices_discount_in_range CHECK (discount_amount >= 0 AND discount_amount <= subtotal + tax_amount)`,
		}
		for name, stmt := range checks {
			guarded := fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		%s;
	END IF;
END $$;`, name, stmt)
			if err := tx.Exec(guarded).Error; err != nil {
				return fmt.Errorf("check constraint migration failed (%s): %w", name, err)
			}
		}

		return nil
	})
}
