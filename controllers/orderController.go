package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"restaurant-pos/database"
	"restaurant-pos/export"
	"restaurant-pos/middlewares"
	"restaurant-pos/models"
	"restaurant-pos/orders"
	"restaurant-pos/utils"

	"github.com/gofiber/fiber/v2"
)

type orderLineInput struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gte=1,lte=999"`
	Notes      string `json:"notes" validate:"max=200"`
}

type orderInput struct {
	Type          string           `json:"type" validate:"required,order_type"`
	TableID       string           `json:"table_id"`
	CustomerName  string           `json:"customer_name" validate:"max=120"`
	CustomerPhone string           `json:"customer_phone" validate:"max=20"`
	Notes         string           `json:"notes" validate:"max=500"`
	Items         []orderLineInput `json:"items" validate:"dive"`
}

type orderLinePatch struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gte=1,lte=999"`
	Notes    *string `json:"notes" validate:"omitempty,max=200"`
	Status   *string `json:"status" validate:"omitempty,item_status"`
}

type itemStatusInput struct {
	Status string `json:"status" validate:"required,item_status"`
}

type orderStatusInput struct {
	Status string `json:"status" validate:"required,order_status"`
}

// catalogLine snapshots the menu item into an order line. Unavailable items
// cannot be ordered.
func catalogLine(store *database.Store, in orderLineInput) (orders.ItemInput, error) {
	item, err := store.GetMenuItem(in.MenuItemID)
	if errors.Is(err, database.ErrNotFound) {
		return orders.ItemInput{}, fmt.Errorf("%w: unknown menu item %s", models.ErrValidation, in.MenuItemID)
	}
	if err != nil {
		return orders.ItemInput{}, err
	}
	if !item.IsAvailable {
		return orders.ItemInput{}, fmt.Errorf("%w: %s is not available", models.ErrValidation, item.Name)
	}
	return orders.ItemInput{
		MenuItemID: item.ID,
		Name:       item.Name,
		Quantity:   in.Quantity,
		UnitPrice:  item.Price,
		Notes:      strings.TrimSpace(in.Notes),
	}, nil
}

// ensureNotBilled rejects line changes once an active invoice exists, since
// the invoice carries a copy of the order totals.
func ensureNotBilled(store *database.Store, order *models.Order) error {
	inv, err := store.InvoiceByOrder(order.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if inv.Status != models.InvoiceCancelled {
		return fmt.Errorf("%w: order %s is already billed on %s", models.ErrState, order.OrderNumber, inv.InvoiceNumber)
	}
	return nil
}

func (h *Handler) ListOrders(c *fiber.Ctx) error {
	f := database.OrderFilter{
		Type:    models.OrderType(c.Query("type")),
		TableID: c.Query("table_id"),
		ListOptions: database.ListOptions{
			Limit:  utils.ParseIntDefault(c.Query("limit"), 0),
			Offset: utils.ParseIntDefault(c.Query("offset"), 0),
		},
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st, err := models.ParseOrderStatus(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		r, err := h.rangeQuery(c)
		if err != nil {
			return err
		}
		f.From, f.To = &r.From, &r.To
	}
	list, err := h.Store.ListOrders(f)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) GetOrder(c *fiber.Ctx) error {
	order, err := h.Store.LoadOrder(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var in orderInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	store := h.Store.For(c)

	cmd := orders.NewOrder{
		Type:          models.OrderType(in.Type),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		UserID:        middlewares.CurrentUserID(c),
		Notes:         strings.TrimSpace(in.Notes),
	}
	var table *models.Table
	if tableID := strings.TrimSpace(in.TableID); tableID != "" {
		t, err := store.GetTable(tableID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: unknown table %s", models.ErrValidation, tableID)
		}
		if err != nil {
			return err
		}
		if cmd.Type == models.OrderDineIn {
			table = t
			cmd.TableID = &t.ID
			cmd.TableNumber = t.Number
		}
	}
	for _, line := range in.Items {
		item, err := catalogLine(store, line)
		if err != nil {
			return err
		}
		cmd.Items = append(cmd.Items, item)
	}

	order, err := h.Orders.Create(cmd)
	if err != nil {
		return err
	}
	if table != nil {
		if err := h.Tables.Occupy(table, order.ID); err != nil {
			return err
		}
		if err := store.SaveTable(table); err != nil {
			return err
		}
	}
	if err := store.CreateOrder(order); err != nil {
		return err
	}

	h.audit(c, "order_created", "order created",
		slog.String("order_id", order.ID), slog.String("order_number", order.OrderNumber),
		slog.String("type", order.Type.String()), slog.String("total", order.Total.StringFixed(2)))
	return c.Status(fiber.StatusCreated).JSON(order)
}

// mutateOrder loads the order, applies fn and saves it under the version check.
func (h *Handler) mutateOrder(c *fiber.Ctx, fn func(store *database.Store, order *models.Order) error) (*models.Order, error) {
	store := h.Store.For(c)
	order, err := store.LoadOrder(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if err := fn(store, order); err != nil {
		return nil, err
	}
	if err := store.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (h *Handler) AddOrderItem(c *fiber.Ctx) error {
	var in orderLineInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	var line models.OrderItem
	order, err := h.mutateOrder(c, func(store *database.Store, order *models.Order) error {
		if err := ensureNotBilled(store, order); err != nil {
			return err
		}
		item, err := catalogLine(store, in)
		if err != nil {
			return err
		}
		added, err := h.Orders.AddItem(order, item)
		if err != nil {
			return err
		}
		line = *added
		return nil
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": order, "item": line})
}

func (h *Handler) UpdateOrderItem(c *fiber.Ctx) error {
	var in orderLinePatch
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	upd := orders.ItemUpdate{Quantity: in.Quantity}
	if in.Notes != nil {
		notes := strings.TrimSpace(*in.Notes)
		upd.Notes = &notes
	}
	if in.Status != nil {
		st := models.ItemStatus(*in.Status)
		upd.Status = &st
	}
	order, err := h.mutateOrder(c, func(store *database.Store, order *models.Order) error {
		// kitchen progress on a billed order is fine; quantities are not
		if upd.Quantity != nil {
			if err := ensureNotBilled(store, order); err != nil {
				return err
			}
		}
		return h.Orders.UpdateItem(order, c.Params("itemId"), upd)
	})
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// UpdateOrderItemStatus records kitchen progress on one line. It is the only
// line change open to kitchen staff.
func (h *Handler) UpdateOrderItemStatus(c *fiber.Ctx) error {
	var in itemStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	st := models.ItemStatus(in.Status)
	order, err := h.mutateOrder(c, func(_ *database.Store, order *models.Order) error {
		return h.Orders.UpdateItem(order, c.Params("itemId"), orders.ItemUpdate{Status: &st})
	})
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *Handler) RemoveOrderItem(c *fiber.Ctx) error {
	order, err := h.mutateOrder(c, func(store *database.Store, order *models.Order) error {
		if err := ensureNotBilled(store, order); err != nil {
			return err
		}
		return h.Orders.RemoveItem(order, c.Params("itemId"))
	})
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// AdvanceOrder moves the order along its status graph. Confirming sends the
// ticket to the kitchen; cancelling frees the table.
func (h *Handler) AdvanceOrder(c *fiber.Ctx) error {
	var in orderStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	return h.advance(c, models.OrderStatus(in.Status))
}

// KitchenAdvanceOrder lets the kitchen mark an order PREPARING or READY.
// Every other move belongs to floor staff.
func (h *Handler) KitchenAdvanceOrder(c *fiber.Ctx) error {
	var in orderStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	next := models.OrderStatus(in.Status)
	if !next.KitchenStage() {
		return fiber.NewError(fiber.StatusForbidden, "kitchen staff can only mark orders PREPARING or READY")
	}
	return h.advance(c, next)
}

func (h *Handler) advance(c *fiber.Ctx, next models.OrderStatus) error {
	order, err := h.mutateOrder(c, func(store *database.Store, order *models.Order) error {
		if next == models.OrderCancelled {
			if err := ensureNotBilled(store, order); err != nil {
				return err
			}
		}
		if err := h.Orders.Advance(order, next); err != nil {
			return err
		}
		if next == models.OrderCancelled {
			return h.releaseTable(store, order)
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.audit(c, "order_status_changed", "order status changed",
		slog.String("order_id", order.ID), slog.String("status", order.Status.String()))

	var ticket string
	if order.Status == models.OrderConfirmed {
		ticket = h.notify(c, "kitchen_ticket", func(ctx context.Context) error {
			return h.Notifier.KitchenTicket(ctx, order)
		})
	}
	status := h.notify(c, "order_status_changed", func(ctx context.Context) error {
		return h.Notifier.OrderStatusChanged(ctx, order)
	})
	return c.JSON(fiber.Map{"order": order, "notifications": queued(ticket, status)})
}

// releaseTable frees the dine-in table held by order, if any.
func (h *Handler) releaseTable(store *database.Store, order *models.Order) error {
	if order.TableID == nil {
		return nil
	}
	table, err := store.GetTable(*order.TableID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if h.Tables.Release(table, order.ID) {
		return store.SaveTable(table)
	}
	return nil
}

// KitchenTicket renders the printable ticket.
func (h *Handler) KitchenTicket(c *fiber.Ctx) error {
	order, err := h.Store.LoadOrder(c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(export.KitchenTicket(order))
}

// ResendKitchenTicket queues the ticket for the kitchen display again.
func (h *Handler) ResendKitchenTicket(c *fiber.Ctx) error {
	order, err := h.Store.For(c).LoadOrder(c.Params("id"))
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return fmt.Errorf("%w: order %s is %s", models.ErrState, order.OrderNumber, order.Status)
	}
	action := h.notify(c, "kitchen_ticket", func(ctx context.Context) error {
		return h.Notifier.KitchenTicket(ctx, order)
	})
	return c.JSON(fiber.Map{"queued": action != ""})
}
