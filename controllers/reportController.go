package controllers

import (
	"time"

	"restaurant-pos/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) SalesReport(c *fiber.Ctx) error {
	r, err := h.rangeQuery(c)
	if err != nil {
		return err
	}
	summary, err := h.Reports.Sales(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (h *Handler) PaymentModeReport(c *fiber.Ctx) error {
	r, err := h.rangeQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.PaymentModes(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) TopItemsReport(c *fiber.Ctx) error {
	r, err := h.rangeQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.TopItems(c.UserContext(), r, utils.ParseIntDefault(c.Query("limit"), 10))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) OrderStatusReport(c *fiber.Ctx) error {
	r, err := h.rangeQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.OrderCounts(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) HourlyReport(c *fiber.Ctx) error {
	r, err := h.rangeQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.Hourly(c.UserContext(), r, h.location())
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Reports.Today(c.UserContext(), time.Now().In(h.location()))
	if err != nil {
		return err
	}
	return c.JSON(d)
}
