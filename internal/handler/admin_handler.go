package handler

import (
	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/service"
)

type AdminHandler struct {
	store service.StoreService
}

func NewAdminHandler(s service.StoreService) *AdminHandler {
	return &AdminHandler{store: s}
}

// ResetStore replaces all store data with the seed catalog.
// POST /api/v1/admin/reset
func (h *AdminHandler) ResetStore(c *fiber.Ctx) error {
	if err := h.store.Reset(c.UserContext(), actor(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Store reset to seed data"})
}
