package handler

import (
	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/model"
	"pharmaclic/internal/service"
)

type CatalogHandler struct {
	store service.StoreService
}

func NewCatalogHandler(s service.StoreService) *CatalogHandler {
	return &CatalogHandler{store: s}
}

type productResponse struct {
	model.Product
	Stock    int  `json:"stock"`
	LowStock bool `json:"low_stock"`
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{Product: p, Stock: ledger.AvailableStock(p), LowStock: ledger.IsLowStock(p)}
}

// GetProducts returns the catalog with computed stock.
// GET /api/v1/products
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	products := h.store.Snapshot().Products
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return c.JSON(out)
}

// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.store.GetProduct(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toProductResponse(p))
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	created, err := h.store.CreateProduct(c.UserContext(), actor(c), product)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": toProductResponse(created)})
}

// ReplaceProduct swaps the whole product; there is no partial update.
// PUT /api/v1/products/:id
func (h *CatalogHandler) ReplaceProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.store.ReplaceProduct(c.UserContext(), actor(c), c.Params("id"), product)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": toProductResponse(updated)})
}

// GET /api/v1/clients
func (h *CatalogHandler) GetClients(c *fiber.Ctx) error {
	return c.JSON(h.store.Snapshot().Clients)
}

// POST /api/v1/clients
func (h *CatalogHandler) CreateClient(c *fiber.Ctx) error {
	var client model.Client
	if err := c.BodyParser(&client); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	created, err := h.store.CreateClient(c.UserContext(), actor(c), client)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Client created", "data": created})
}

// GET /api/v1/doctors
func (h *CatalogHandler) GetDoctors(c *fiber.Ctx) error {
	return c.JSON(h.store.Snapshot().Doctors)
}

// POST /api/v1/doctors
func (h *CatalogHandler) CreateDoctor(c *fiber.Ctx) error {
	var doctor model.Doctor
	if err := c.BodyParser(&doctor); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	created, err := h.store.CreateDoctor(c.UserContext(), actor(c), doctor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Doctor created", "data": created})
}
