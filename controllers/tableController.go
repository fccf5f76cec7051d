package controllers

import (
	"log/slog"

	"restaurant-pos/middlewares"
	"restaurant-pos/models"
	"restaurant-pos/utils"

	"github.com/gofiber/fiber/v2"
)

type tableInput struct {
	Number   string `json:"number" validate:"required,max=16"`
	Capacity int    `json:"capacity" validate:"required,gte=1,lte=50"`
	Section  string `json:"section" validate:"max=60"`
}

type tablePatch struct {
	Number   *string `json:"number" validate:"omitempty,min=1,max=16"`
	Capacity *int    `json:"capacity" validate:"omitempty,gte=1,lte=50"`
	Section  *string `json:"section" validate:"omitempty,max=60"`
}

type tableStatusInput struct {
	Status string `json:"status" validate:"required,table_status"`
}

func (h *Handler) ListTables(c *fiber.Ctx) error {
	status := models.TableStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return badRequest(c, "unknown table status")
	}
	list, err := h.Store.ListTables(status)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) GetTable(c *fiber.Ctx) error {
	table, err := h.Store.GetTable(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(table)
}

func (h *Handler) CreateTable(c *fiber.Ctx) error {
	var in tableInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)
	table := models.Table{
		Number:   in.Number,
		Capacity: in.Capacity,
		Section:  in.Section,
		Status:   models.TableAvailable,
	}
	if err := h.Store.For(c).CreateTable(&table); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(table)
}

func (h *Handler) UpdateTable(c *fiber.Ctx) error {
	var in tablePatch
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	store := h.Store.For(c)
	table, err := store.GetTable(c.Params("id"))
	if err != nil {
		return err
	}
	if in.Number != nil {
		table.Number = *in.Number
	}
	if in.Capacity != nil {
		table.Capacity = *in.Capacity
	}
	if in.Section != nil {
		table.Section = *in.Section
	}
	if err := store.SaveTable(table); err != nil {
		return err
	}
	return c.JSON(table)
}

// SetTableStatus is the manual status change (reserve, clean, maintenance).
// Occupancy itself only changes through orders.
func (h *Handler) SetTableStatus(c *fiber.Ctx) error {
	var in tableStatusInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	store := h.Store.For(c)
	table, err := store.GetTable(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.Tables.SetStatus(table, models.TableStatus(in.Status)); err != nil {
		return err
	}
	if err := store.SaveTable(table); err != nil {
		return err
	}
	h.audit(c, "table_status_changed", "table status changed",
		slog.String("table", table.Number), slog.String("status", table.Status.String()))
	return c.JSON(table)
}
