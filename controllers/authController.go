package controllers

import (
	"errors"
	"log/slog"
	"strings"

	"restaurant-pos/database"
	"restaurant-pos/middlewares"

	"github.com/gofiber/fiber/v2"
)

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	user, err := h.Store.UserByUsername(in.Username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if user == nil || !user.Active || user.ComparePassword(in.Password) != nil {
		h.Log.Warn("login", middlewares.RequestID(c), "rejected login",
			slog.String("username", strings.ToLower(strings.TrimSpace(in.Username))))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}

	token, expires, err := middlewares.GenerateJWT(h.Secret, user.ID, user.Role)
	if err != nil {
		return err
	}

	h.Log.Info("login", middlewares.RequestID(c), "staff signed in",
		slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expires,
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

// Me returns the signed-in staff member.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.Store.GetUser(middlewares.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}
