package controllers

import (
	"log/slog"

	"restaurant-pos/middlewares"
	"restaurant-pos/models"
	"restaurant-pos/utils"

	"github.com/gofiber/fiber/v2"
)

type staffInput struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	FullName string `json:"full_name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,role"`
}

type staffPatch struct {
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72" patch:"-"`
	Role     *string `json:"role" validate:"omitempty,role"`
	Active   *bool   `json:"active"`
}

func (h *Handler) ListStaff(c *fiber.Ctx) error {
	users, err := h.Store.ListUsers()
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handler) CreateStaff(c *fiber.Ctx) error {
	var in staffInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	user := models.User{
		Username: in.Username,
		FullName: in.FullName,
		Role:     models.Role(in.Role),
		Active:   true,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return err
	}
	if err := h.Store.For(c).CreateUser(&user); err != nil {
		return err
	}
	h.audit(c, "staff_created", "staff account created",
		slog.String("staff_id", user.ID), slog.String("role", user.Role.String()))
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) UpdateStaff(c *fiber.Ctx) error {
	var in staffPatch
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	id := c.Params("id")
	if id == middlewares.CurrentUserID(c) && ((in.Active != nil && !*in.Active) || (in.Role != nil && *in.Role != models.RoleAdmin.String())) {
		return badRequest(c, "you cannot deactivate or demote yourself")
	}

	utils.NormalizePtrDTO(&in)
	updates := utils.PatchColumns(&in)
	if in.Password != nil {
		var tmp models.User
		if err := tmp.SetPassword(*in.Password); err != nil {
			return err
		}
		updates["password"] = tmp.Password
	}

	user, err := h.Store.For(c).UpdateUser(id, updates)
	if err != nil {
		return err
	}
	h.audit(c, "staff_updated", "staff account updated", slog.String("staff_id", user.ID))
	return c.JSON(user)
}
