package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/assistant"
)

type AssistantHandler struct {
	service assistant.Service
}

func NewAssistantHandler(s assistant.Service) *AssistantHandler {
	return &AssistantHandler{service: s}
}

type AskRequest struct {
	Question string `json:"question"`
}

// Ask answers 200 with the fixed error text when the model is unavailable,
// the same way a successful answer is returned.
// POST /api/v1/assistant/ask
func (h *AssistantHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	reply, err := h.service.Ask(c.UserContext(), getUserID(c), req.Question)
	if errors.Is(err, assistant.ErrEmptyQuestion) {
		return errorResponse(c, err)
	}
	if err != nil {
		log.Printf("Warning: assistant request by %s failed: %v", getUserEmail(c), err)
	}
	return c.JSON(reply)
}

// GET /api/v1/assistant/history
func (h *AssistantHandler) History(c *fiber.Ctx) error {
	return c.JSON(h.service.History(getUserID(c)))
}

// DELETE /api/v1/assistant/history
func (h *AssistantHandler) ResetHistory(c *fiber.Ctx) error {
	h.service.Reset(getUserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
