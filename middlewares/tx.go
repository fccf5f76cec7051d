package middlewares

import (
	"restaurant-pos/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Tx opens a per-request DB transaction for mutating requests.
// Order: run AFTER IsAuthenticatedHeader() and AFTER Idempotency() (so
// idempotency records aren't tied to the handler TX). Reads use the base
// connection through database.Store.For.
func Tx(db *gorm.DB, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		if !isMutation(c.Method()) {
			return c.Next()
		}

		tx := db.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		// Ensure we always cleanup.
		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so the recover middleware can catch
			}
			if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				log.Error("tx_commit", RequestID(c), "tx commit failed", e)
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
				return
			}
			hooks, _ := c.Locals("afterCommit").([]func())
			for _, fn := range hooks {
				fn()
			}
		}()

		c.Locals("tx", tx)

		err = c.Next()
		return err
	}
}

func isMutation(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}

// AfterCommit defers fn until the request transaction commits. Without an
// open transaction fn runs immediately. Hooks are dropped on rollback.
func AfterCommit(c *fiber.Ctx, fn func()) {
	if c.Locals("tx") == nil {
		fn()
		return
	}
	hooks, _ := c.Locals("afterCommit").([]func())
	c.Locals("afterCommit", append(hooks, fn))
}
