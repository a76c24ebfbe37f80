// Package ledger holds the stock accounting rules of the pharmacy: how much of a
// product can be sold, which batches are about to expire, how a cart is built
// and how a sale is deducted from batches. Every function here is pure; the
// owning store serializes calls and persists their results.
package ledger

import (
	"time"

	"pharmaclic/internal/model"
)

const day = 24 * time.Hour

// AvailableStock is the sum of the quantities of all batches of the product.
func AvailableStock(p model.Product) int {
	total := 0
	for _, b := range p.Batches {
		total += b.Quantity
	}
	return total
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func IsLowStock(p model.Product) bool {
	return AvailableStock(p) <= p.MinStock
}

// LowStockProducts keeps, in catalog order, the products IsLowStock reports.
func LowStockProducts(products []model.Product) []model.Product {
	var out []model.Product
	for _, p := range products {
		if IsLowStock(p) {
			out = append(out, p)
		}
	}
	return out
}

// BatchExpiry pairs a batch with its product and the whole days left until it expires.
type BatchExpiry struct {
	Product         model.Product `json:"product"`
	Batch           model.Batch   `json:"batch"`
	DaysUntilExpiry int           `json:"days_until_expiry"`
}

// DaysUntilExpiry counts calendar days from asOf's date, in asOf's location, to
// the expiry date. The time of day is ignored, so any moment of the day before
// expiry gives 1. The second result is false when the batch carries an
// unparseable date.
func DaysUntilExpiry(b model.Batch, asOf time.Time) (int, bool) {
	expiry, err := b.ExpiresAt()
	if err != nil {
		return 0, false
	}
	return int(expiry.Sub(calendarDay(asOf)) / day), true
}

// calendarDay maps t to midnight UTC of its local date, the same instant a
// parsed expiry date for that day has.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpiringBatches lists, in catalog order, every batch with
// 0 < daysUntilExpiry <= horizonDays. Expired batches are not included.
func ExpiringBatches(products []model.Product, horizonDays int, asOf time.Time) []BatchExpiry {
	var out []BatchExpiry
	for _, p := range products {
		for _, b := range p.Batches {
			days, ok := DaysUntilExpiry(b, asOf)
			if !ok {
				continue
			}
			if days > 0 && days <= horizonDays {
				out = append(out, BatchExpiry{Product: p, Batch: b, DaysUntilExpiry: days})
			}
		}
	}
	return out
}

// ExpiredBatches lists batches whose expiry date has passed and that still hold stock.
func ExpiredBatches(products []model.Product, asOf time.Time) []BatchExpiry {
	var out []BatchExpiry
	for _, p := range products {
		for _, b := range p.Batches {
			days, ok := DaysUntilExpiry(b, asOf)
			if !ok || days > 0 || b.Quantity <= 0 {
				continue
			}
			out = append(out, BatchExpiry{Product: p, Batch: b, DaysUntilExpiry: days})
		}
	}
	return out
}

// FirstAvailableBatch returns the id of the first batch, in catalog order, with stock.
func FirstAvailableBatch(p model.Product) (string, bool) {
	for _, b := range p.Batches {
		if b.Quantity > 0 {
			return b.ID, true
		}
	}
	return "", false
}
