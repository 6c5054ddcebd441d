package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/ticketflow/internal/service"
)

// UsersHandler exposes the user directory.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List GET /users. Summaries only; hashes and roles are never serialized.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	summaries, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}
