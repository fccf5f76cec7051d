package routes

import (
	"restaurant-pos/controllers"
	"restaurant-pos/logger"
	"restaurant-pos/middlewares"
	"restaurant-pos/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, h *controllers.Handler, db *gorm.DB, log *logger.Logger) {
	api := app.Group("/api")

	// Public auth endpoint
	api.Post("/login", h.Login)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader(h.Secret))

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency(db))

	// Then per-request transaction for mutations (commits/rolls back)
	protected.Use(middlewares.Tx(db, log))

	catalogEditors := middlewares.RequireRole(models.RoleAdmin, models.RoleManager)
	cashiers := middlewares.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleCashier)
	floor := middlewares.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleCashier, models.RoleWaiter)
	kitchen := middlewares.RequireRole(models.Roles...)

	protected.Get("/me", h.Me)

	// Catalog
	protected.Get("/categories", h.ListCategories)
	protected.Get("/categories/:id", h.GetCategory)
	protected.Post("/categories", catalogEditors, h.CreateCategory)
	protected.Patch("/categories/:id", catalogEditors, h.UpdateCategory)
	protected.Delete("/categories/:id", catalogEditors, h.DeleteCategory)

	protected.Get("/menu-items", h.ListMenuItems)
	protected.Get("/menu-items/:id", h.GetMenuItem)
	protected.Post("/menu-items", catalogEditors, h.CreateMenuItem)
	protected.Patch("/menu-items/:id", catalogEditors, h.UpdateMenuItem)
	protected.Patch("/menu-items/:id/availability", catalogEditors, h.ToggleMenuItem)
	protected.Delete("/menu-items/:id", catalogEditors, h.DeleteMenuItem)

	// Tables
	protected.Get("/tables", h.ListTables)
	protected.Get("/tables/:id", h.GetTable)
	protected.Post("/tables", catalogEditors, h.CreateTable)
	protected.Patch("/tables/:id", catalogEditors, h.UpdateTable)
	protected.Patch("/tables/:id/status", floor, h.SetTableStatus)

	// Orders
	protected.Get("/orders", h.ListOrders)
	protected.Get("/orders/:id", h.GetOrder)
	protected.Post("/orders", floor, h.CreateOrder)
	protected.Post("/orders/:id/items", floor, h.AddOrderItem)
	protected.Patch("/orders/:id/items/:itemId", floor, h.UpdateOrderItem)
	protected.Patch("/orders/:id/items/:itemId/status", kitchen, h.UpdateOrderItemStatus)
	protected.Delete("/orders/:id/items/:itemId", floor, h.RemoveOrderItem)
	protected.Patch("/orders/:id/status", floor, h.AdvanceOrder)
	protected.Patch("/orders/:id/kitchen-status", kitchen, h.KitchenAdvanceOrder)
	protected.Get("/orders/:id/ticket", h.KitchenTicket)
	protected.Post("/orders/:id/ticket", floor, h.ResendKitchenTicket)

	// Invoices (versioned, with insert-only payments)
	protected.Get("/invoices", cashiers, h.ListInvoices)
	protected.Get("/invoices/export.csv", cashiers, h.ExportInvoices)
	protected.Get("/invoices/:id", cashiers, h.GetInvoice)
	protected.Post("/invoices", cashiers, h.CreateInvoice)
	protected.Post("/invoices/:id/payments", cashiers, h.AddPayment)
	protected.Get("/invoices/:id/payments", cashiers, h.ListPayments)
	protected.Post("/invoices/:id/discount", cashiers, h.ApplyDiscount)
	protected.Post("/invoices/:id/pay-full", cashiers, h.MarkFullyPaid)
	protected.Post("/invoices/:id/cancel", catalogEditors, h.CancelInvoice)
	protected.Get("/invoices/:id/versions", cashiers, h.InvoiceVersions)
	protected.Get("/invoices/:id/receipt", cashiers, h.InvoiceReceipt)
	protected.Get("/invoices/:id/csv", cashiers, h.InvoiceCSV)
	protected.Get("/invoices/:id/pdf", cashiers, h.InvoicePDF)

	// Reports
	reports := protected.Group("/reports", catalogEditors)
	reports.Get("/dashboard", h.Dashboard)
	reports.Get("/sales", h.SalesReport)
	reports.Get("/payment-modes", h.PaymentModeReport)
	reports.Get("/top-items", h.TopItemsReport)
	reports.Get("/order-status", h.OrderStatusReport)
	reports.Get("/hourly", h.HourlyReport)

	// Staff
	staff := protected.Group("/staff", middlewares.RequireRole(models.RoleAdmin))
	staff.Get("/", h.ListStaff)
	staff.Post("/", h.CreateStaff)
	staff.Patch("/:id", h.UpdateStaff)
}
