package controllers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"restaurant-pos/billing"
	"restaurant-pos/database"
	"restaurant-pos/export"
	"restaurant-pos/logger"
	"restaurant-pos/middlewares"
	"restaurant-pos/notify"
	"restaurant-pos/orders"
	"restaurant-pos/reports"
	"restaurant-pos/tables"

	"github.com/gofiber/fiber/v2"
)

// Handler carries the collaborators every endpoint needs. It is built once in
// main and shared by all requests.
type Handler struct {
	Store    *database.Store
	Orders   *orders.Engine
	Billing  *billing.Engine
	Tables   *tables.Registry
	Reports  *reports.Reports
	Notifier notify.Notifier
	Log      *logger.Logger
	Shop     export.Shop
	Secret   []byte
	Location *time.Location
}

// notify queues a best-effort dispatch that runs once the request transaction
// commits, so a rolled-back change is never announced. Delivery failures are
// logged and the committed state stays as it is. It returns the queued action,
// or "" when no notifier is configured.
func (h *Handler) notify(c *fiber.Ctx, action string, fn func(ctx context.Context) error) string {
	if h.Notifier == nil {
		return ""
	}
	ctx := c.UserContext()
	requestID := middlewares.RequestID(c)
	middlewares.AfterCommit(c, func() {
		if err := fn(ctx); err != nil {
			h.Log.Error(action, requestID, "notification failed", err)
		}
	})
	return action
}

// queued collects the non-empty actions returned by notify.
func queued(actions ...string) []string {
	out := []string{}
	for _, a := range actions {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (h *Handler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

// audit logs a state change once the request transaction has committed.
func (h *Handler) audit(c *fiber.Ctx, action, message string, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("user_id", middlewares.CurrentUserID(c)))
	requestID := middlewares.RequestID(c)
	middlewares.AfterCommit(c, func() {
		h.Log.Info(action, requestID, message, attrs...)
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message})
}

// parseDay reads a YYYY-MM-DD query value in loc; empty returns def.
func parseDay(c *fiber.Ctx, key string, loc *time.Location, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

// rangeQuery reads ?from=&to= (inclusive days) and defaults to today.
func (h *Handler) rangeQuery(c *fiber.Ctx) (reports.Range, error) {
	loc := h.location()
	today := reports.Day(time.Now().In(loc))
	from, err := parseDay(c, "from", loc, today.From.In(loc))
	if err != nil {
		return reports.Range{}, fiber.NewError(fiber.StatusBadRequest, "from must be in YYYY-MM-DD format")
	}
	to, err := parseDay(c, "to", loc, from)
	if err != nil {
		return reports.Range{}, fiber.NewError(fiber.StatusBadRequest, "to must be in YYYY-MM-DD format")
	}
	return reports.Range{From: from.UTC(), To: to.AddDate(0, 0, 1).UTC()}, nil
}
