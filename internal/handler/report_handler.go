package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/service"
)

type ReportHandler struct {
	service service.ReportService
	now     func() time.Time
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s, now: time.Now}
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	return c.JSON(h.service.DashboardStats(h.now()))
}

// GetSalesByDay returns daily totals for charts
// Query params: days (default 7)
func (h *ReportHandler) GetSalesByDay(c *fiber.Ctx) error {
	days := queryInt(c, "days", 7)
	return c.JSON(fiber.Map{
		"period": days,
		"data":   h.service.SalesByDay(days),
	})
}

// Query params: limit (default 5)
func (h *ReportHandler) GetTopProducts(c *fiber.Ctx) error {
	return c.JSON(h.service.TopProducts(queryInt(c, "limit", 5)))
}

// Query params: limit (default 10)
func (h *ReportHandler) GetRecentSales(c *fiber.Ctx) error {
	return c.JSON(h.service.RecentSales(queryInt(c, "limit", 10)))
}

func (h *ReportHandler) GetLowStock(c *fiber.Ctx) error {
	return c.JSON(h.service.LowStock())
}

// Query params: days (default from EXPIRY_HORIZON_DAYS)
func (h *ReportHandler) GetExpiring(c *fiber.Ctx) error {
	return c.JSON(h.service.Expiring(queryInt(c, "days", 0), h.now()))
}

func (h *ReportHandler) GetExpired(c *fiber.Ctx) error {
	return c.JSON(h.service.Expired(h.now()))
}
