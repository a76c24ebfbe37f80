package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/assistant"
	"pharmaclic/internal/ledger"
	"pharmaclic/internal/service"
)

// Helpers reading the user set by the auth middleware.
func getUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return "system"
}

func getUserName(c *fiber.Ctx) string {
	if name, ok := c.Locals("user_name").(string); ok {
		return name
	}
	return "Unknown"
}

func getUserEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals("user_email").(string); ok {
		return email
	}
	return ""
}

func actor(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: getUserID(c), Name: getUserName(c), Email: getUserEmail(c)}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInsufficientStock):
		return fiber.StatusConflict
	case errors.Is(err, ledger.ErrPrescriptionRequired):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrProductNotFound),
		errors.Is(err, ledger.ErrBatchNotFound),
		errors.Is(err, ledger.ErrDoctorNotFound),
		errors.Is(err, ledger.ErrClientNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrProductExists),
		errors.Is(err, service.ErrBatchRemoved),
		errors.Is(err, service.ErrDuplicateBatch),
		errors.Is(err, service.ErrEmailExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrPersistenceUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, ledger.ErrEmptyCart),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidPayment),
		errors.Is(err, service.ErrDeleteSelf),
		errors.Is(err, service.ErrUnknownPrivilege),
		errors.Is(err, assistant.ErrEmptyQuestion):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
