package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/model"
)

type DashboardStats struct {
	Date            string          `json:"date"`
	SalesTodayTotal decimal.Decimal `json:"sales_today_total"`
	SalesTodayCount int             `json:"sales_today_count"`
	TotalProducts   int             `json:"total_products"`
	LowStockCount   int             `json:"low_stock_count"`
	ExpiringCount   int             `json:"expiring_count"`
	ExpiredCount    int             `json:"expired_count"`
	CashRegister    decimal.Decimal `json:"cash_register"`
}

type DailySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type LowStockItem struct {
	ProductID string `json:"product_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

// ReportService answers read-only questions over a snapshot of the store.
type ReportService interface {
	DashboardStats(now time.Time) DashboardStats
	SalesByDay(days int) []DailySales
	TopProducts(limit int) []ProductSales
	RecentSales(limit int) []model.Sale
	LowStock() []LowStockItem
	Expiring(horizonDays int, now time.Time) []ledger.BatchExpiry
	Expired(now time.Time) []ledger.BatchExpiry
}

type reportService struct {
	store         StoreService
	expiryHorizon int
}

func NewReportService(store StoreService, expiryHorizonDays int) ReportService {
	return &reportService{store: store, expiryHorizon: expiryHorizonDays}
}

func saleDay(s model.Sale) string {
	return s.Date.UTC().Format(model.DateLayout)
}

func (s *reportService) DashboardStats(now time.Time) DashboardStats {
	data := s.store.Snapshot()
	today := now.UTC().Format(model.DateLayout)

	stats := DashboardStats{
		Date:            today,
		SalesTodayTotal: decimal.Zero,
		TotalProducts:   len(data.Products),
		CashRegister:    data.CashRegister,
	}
	for _, sale := range data.Sales {
		if saleDay(sale) == today {
			stats.SalesTodayTotal = stats.SalesTodayTotal.Add(sale.Total)
			stats.SalesTodayCount++
		}
	}
	stats.LowStockCount = len(ledger.LowStockProducts(data.Products))
	stats.ExpiringCount = len(ledger.ExpiringBatches(data.Products, s.expiryHorizon, now))
	stats.ExpiredCount = len(ledger.ExpiredBatches(data.Products, now))
	return stats
}

// SalesByDay returns the most recent days that had sales, oldest first.
func (s *reportService) SalesByDay(days int) []DailySales {
	data := s.store.Snapshot()
	byDay := make(map[string]*DailySales)
	for _, sale := range data.Sales {
		key := saleDay(sale)
		d, ok := byDay[key]
		if !ok {
			d = &DailySales{Date: key, Total: decimal.Zero}
			byDay[key] = d
		}
		d.Total = d.Total.Add(sale.Total)
		d.Count++
	}

	out := make([]DailySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if days > 0 && len(out) > days {
		out = out[len(out)-days:]
	}
	return out
}

// TopProducts ranks catalog products by units sold across all sales.
func (s *reportService) TopProducts(limit int) []ProductSales {
	data := s.store.Snapshot()
	sold := make(map[string]*ProductSales)
	for _, sale := range data.Sales {
		for _, item := range sale.Items {
			ps, ok := sold[item.ID]
			if !ok {
				ps = &ProductSales{Revenue: decimal.Zero}
				sold[item.ID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal())
		}
	}

	out := make([]ProductSales, 0, len(data.Products))
	for _, p := range data.Products {
		row := ProductSales{ProductID: p.ID, Name: p.Name, Revenue: decimal.Zero}
		if ps, ok := sold[p.ID]; ok {
			row.Quantity = ps.Quantity
			row.Revenue = ps.Revenue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *reportService) RecentSales(limit int) []model.Sale {
	sales := s.store.Snapshot().Sales
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

func (s *reportService) LowStock() []LowStockItem {
	data := s.store.Snapshot()
	out := []LowStockItem{}
	for _, p := range ledger.LowStockProducts(data.Products) {
		out = append(out, LowStockItem{
			ProductID: p.ID,
			Code:      p.Code,
			Name:      p.Name,
			Stock:     ledger.AvailableStock(p),
			MinStock:  p.MinStock,
		})
	}
	return out
}

// Expiring lists batches inside the horizon, soonest first. A non-positive
// horizon uses the configured default.
func (s *reportService) Expiring(horizonDays int, now time.Time) []ledger.BatchExpiry {
	if horizonDays <= 0 {
		horizonDays = s.expiryHorizon
	}
	out := ledger.ExpiringBatches(s.store.Snapshot().Products, horizonDays, now)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntilExpiry < out[j].DaysUntilExpiry })
	return out
}

func (s *reportService) Expired(now time.Time) []ledger.BatchExpiry {
	return ledger.ExpiredBatches(s.store.Snapshot().Products, now)
}
