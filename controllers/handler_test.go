package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"restaurant-pos/database"
	"restaurant-pos/logger"
	"restaurant-pos/middlewares"
	"restaurant-pos/models"

	"github.com/gofiber/fiber/v2"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recordingNotifier) record(event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingNotifier) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingNotifier) KitchenTicket(_ context.Context, order *models.Order) error {
	return r.record("kitchen_ticket:" + order.OrderNumber)
}

func (r *recordingNotifier) OrderStatusChanged(_ context.Context, order *models.Order) error {
	return r.record("order_status_changed:" + order.OrderNumber)
}

func (r *recordingNotifier) InvoiceSettled(_ context.Context, inv *models.Invoice) error {
	return r.record("invoice_settled:" + inv.InvoiceNumber)
}

func newNotifyApp(t *testing.T, rec *recordingNotifier) *fiber.App {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	log := logger.New("test", io.Discard, slog.LevelError)
	h := &Handler{Store: database.NewStore(db), Notifier: rec, Log: log}

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler(log)})
	app.Use(middlewares.Tx(db, log))
	order := &models.Order{OrderNumber: "ORD-1"}

	app.Post("/confirm", func(c *fiber.Ctx) error {
		action := h.notify(c, "kitchen_ticket", func(ctx context.Context) error {
			return h.Notifier.KitchenTicket(ctx, order)
		})
		if n := len(rec.sent()); n != 0 {
			t.Errorf("dispatched %d events before commit", n)
		}
		return c.JSON(fiber.Map{"notifications": queued(action)})
	})
	app.Post("/confirm-then-fail", func(c *fiber.Ctx) error {
		h.notify(c, "kitchen_ticket", func(ctx context.Context) error {
			return h.Notifier.KitchenTicket(ctx, order)
		})
		return fmt.Errorf("%w: table is taken", models.ErrState)
	})
	return app
}

func TestNotifyWaitsForCommit(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		notifyErr  error
		wantStatus int
		wantSent   int
	}{
		{"committed request dispatches once", "/confirm", nil, http.StatusOK, 1},
		{"rolled back request dispatches nothing", "/confirm-then-fail", nil, http.StatusConflict, 0},
		{"delivery failure keeps the response", "/confirm", errors.New("broker down"), http.StatusOK, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNotifier{err: tt.notifyErr}
			app := newNotifyApp(t, rec)

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, tt.path, nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := rec.sent(); len(got) != tt.wantSent {
				t.Fatalf("sent = %v, want %d events", got, tt.wantSent)
			}
		})
	}
}

func TestNotifyWithoutNotifier(t *testing.T) {
	h := &Handler{}
	app := fiber.New()
	var action string
	app.Post("/", func(c *fiber.Ctx) error {
		action = h.notify(c, "kitchen_ticket", func(context.Context) error {
			t.Error("dispatch ran without a notifier")
			return nil
		})
		return c.SendStatus(http.StatusNoContent)
	})
	if _, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil), -1); err != nil {
		t.Fatal(err)
	}
	if action != "" || len(queued(action)) != 0 {
		t.Errorf("action = %q, want nothing queued", action)
	}
}
