package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/service"
)

type RegisterHandler struct {
	register service.RegisterService
	store    service.StoreService
}

func NewRegisterHandler(r service.RegisterService, s service.StoreService) *RegisterHandler {
	return &RegisterHandler{register: r, store: s}
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta"`
}

// cartResponse answers 200 when the operation applied, 409 when the cart
// was left unchanged because of stock, and 404 when the line does not exist.
func cartResponse(c *fiber.Ctx, cart service.CartView, res ledger.CartResult) error {
	status := fiber.StatusOK
	switch res {
	case ledger.CartOutOfStock, ledger.CartCapped, ledger.CartDropped:
		status = fiber.StatusConflict
	case ledger.CartNotInCart:
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"result": res.String(), "cart": cart})
}

// GET /api/v1/cart
func (h *RegisterHandler) GetCart(c *fiber.Ctx) error {
	return c.JSON(h.register.GetCart(getUserID(c)))
}

// POST /api/v1/cart/items
func (h *RegisterHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.ProductID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "product_id is required"})
	}

	cart, res, err := h.register.AddItem(getUserID(c), req.ProductID)
	if err != nil {
		return errorResponse(c, err)
	}
	return cartResponse(c, cart, res)
}

// PATCH /api/v1/cart/items/:productId
func (h *RegisterHandler) UpdateQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Delta == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "delta must not be zero"})
	}

	cart, res, err := h.register.UpdateQuantity(getUserID(c), c.Params("productId"), req.Delta)
	if err != nil {
		return errorResponse(c, err)
	}
	return cartResponse(c, cart, res)
}

// DELETE /api/v1/cart/items/:productId
func (h *RegisterHandler) RemoveItem(c *fiber.Ctx) error {
	cart, res := h.register.RemoveItem(getUserID(c), c.Params("productId"))
	return cartResponse(c, cart, res)
}

// DELETE /api/v1/cart
func (h *RegisterHandler) ClearCart(c *fiber.Ctx) error {
	return c.JSON(h.register.Clear(getUserID(c)))
}

// Checkout commits the cart as a sale.
// POST /api/v1/cart/checkout
func (h *RegisterHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	sale, err := h.register.Checkout(c.UserContext(), actor(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// GetSales returns the history, most recent first.
// GET /api/v1/sales?limit=50
func (h *RegisterHandler) GetSales(c *fiber.Ctx) error {
	sales := h.store.Snapshot().Sales
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(sales) {
		sales = sales[:limit]
	}
	return c.JSON(sales)
}

// GET /api/v1/sales/:id
func (h *RegisterHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.store.GetSale(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(sale)
}
