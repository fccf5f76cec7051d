package controllers

import (
	"log/slog"
	"strconv"

	"restaurant-pos/database"
	"restaurant-pos/middlewares"
	"restaurant-pos/models"
	"restaurant-pos/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type categoryInput struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=500"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
	Active      *bool  `json:"active"`
}

type categoryPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=80"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active"`
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	categories, err := h.Store.ListCategories(activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (h *Handler) GetCategory(c *fiber.Ctx) error {
	category, err := h.Store.GetCategory(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var in categoryInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)
	category := models.Category{
		Name:        in.Name,
		Description: in.Description,
		SortOrder:   in.SortOrder,
		Active:      in.Active == nil || *in.Active,
	}
	if err := h.Store.For(c).CreateCategory(&category); err != nil {
		return err
	}
	h.audit(c, "category_created", "category created", slog.String("category_id", category.ID))
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	var in categoryPatch
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	category, err := h.Store.For(c).UpdateCategory(c.Params("id"), utils.PatchColumns(&in))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// DeleteCategory only succeeds for categories no menu item points at.
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Store.For(c).DeleteCategory(id); err != nil {
		return err
	}
	h.audit(c, "category_deleted", "category deleted", slog.String("category_id", id))
	return c.SendStatus(fiber.StatusNoContent)
}

type menuItemInput struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Description string           `json:"description" validate:"max=500"`
	Price       *decimal.Decimal `json:"price" validate:"required,money"`
	Cost        *decimal.Decimal `json:"cost" validate:"omitempty,money"`
	CategoryID  string           `json:"category_id" validate:"required"`
	ItemType    string           `json:"item_type" validate:"required,item_type"`
	IsAvailable *bool            `json:"is_available"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	SortOrder   int              `json:"sort_order" validate:"gte=0"`
}

type menuItemPatch struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,money"`
	Cost        *decimal.Decimal `json:"cost" validate:"omitempty,money" patch:"-"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,min=1"`
	ItemType    *string          `json:"item_type" validate:"omitempty,item_type"`
	IsAvailable *bool            `json:"is_available"`
	TaxRate     *decimal.Decimal `json:"tax_rate" patch:"-"`
	SortOrder   *int             `json:"sort_order" validate:"omitempty,gte=0"`
}

func validTaxRate(rate *decimal.Decimal) bool {
	return rate == nil || (!rate.IsNegative() && rate.LessThan(decimal.NewFromInt(1)))
}

func (h *Handler) ListMenuItems(c *fiber.Ctx) error {
	available, _ := strconv.ParseBool(c.Query("available"))
	items, err := h.Store.ListMenuItems(database.MenuFilter{
		CategoryID:    c.Query("category_id"),
		ItemType:      models.ItemType(c.Query("item_type")),
		AvailableOnly: available,
		Search:        c.Query("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handler) GetMenuItem(c *fiber.Ctx) error {
	item, err := h.Store.GetMenuItem(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *Handler) CreateMenuItem(c *fiber.Ctx) error {
	var in menuItemInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if !validTaxRate(in.TaxRate) {
		return badRequest(c, "tax_rate must be a fraction between 0 and 1")
	}
	taxRate := h.Orders.TaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	utils.NormalizeDTO(&in)

	item := models.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		CategoryID:  in.CategoryID,
		ItemType:    models.ItemType(in.ItemType),
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
		TaxRate:     taxRate,
		SortOrder:   in.SortOrder,
	}
	if in.Cost != nil {
		item.Cost = decimal.NewNullDecimal(utils.Round2(*in.Cost))
	}
	if err := h.Store.For(c).CreateMenuItem(&item); err != nil {
		return err
	}
	h.audit(c, "menu_item_created", "menu item created",
		slog.String("menu_item_id", item.ID), slog.String("price", item.Price.StringFixed(2)))
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateMenuItem(c *fiber.Ctx) error {
	var in menuItemPatch
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if !validTaxRate(in.TaxRate) {
		return badRequest(c, "tax_rate must be a fraction between 0 and 1")
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.PatchColumns(&in)
	if in.TaxRate != nil {
		updates["tax_rate"] = *in.TaxRate
	}
	if in.Cost != nil {
		updates["cost"] = decimal.NewNullDecimal(utils.Round2(*in.Cost))
	}
	item, err := h.Store.For(c).UpdateMenuItem(c.Params("id"), updates)
	if err != nil {
		return err
	}
	if in.Price != nil {
		h.audit(c, "menu_price_changed", "menu item price changed",
			slog.String("menu_item_id", item.ID), slog.String("price", item.Price.StringFixed(2)))
	}
	return c.JSON(item)
}

// DeleteMenuItem soft-disables the item; order history keeps resolving it.
func (h *Handler) DeleteMenuItem(c *fiber.Ctx) error {
	item, err := h.Store.For(c).SetMenuItemAvailability(c.Params("id"), false)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// ToggleMenuItem flips availability, e.g. when the kitchen runs out.
func (h *Handler) ToggleMenuItem(c *fiber.Ctx) error {
	store := h.Store.For(c)
	item, err := store.GetMenuItem(c.Params("id"))
	if err != nil {
		return err
	}
	item, err = store.SetMenuItemAvailability(item.ID, !item.IsAvailable)
	if err != nil {
		return err
	}
	return c.JSON(item)
}
