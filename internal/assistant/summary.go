// Package assistant answers free-text questions from pharmacy staff with a
// hosted language model, passing a compact inventory summary as context.
package assistant

import (
	"fmt"
	"time"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/model"
)

// Summary is the inventory context sent with every question.
type Summary struct {
	TotalProducts int      `json:"totalProducts"`
	LowStock      []string `json:"lowStock"`
	Antibiotics   []string `json:"antibiotics"`
	ExpiringSoon  []string `json:"expiringSoon"`
}

// BuildSummary lists low-stock products, antibiotics and every batch whose
// expiry date falls before asOf plus three months, already expired ones included.
func BuildSummary(products []model.Product, asOf time.Time) Summary {
	s := Summary{
		TotalProducts: len(products),
		LowStock:      []string{},
		Antibiotics:   []string{},
		ExpiringSoon:  []string{},
	}
	cutoff := asOf.AddDate(0, 3, 0)
	for _, p := range products {
		if ledger.IsLowStock(p) {
			s.LowStock = append(s.LowStock, p.Name)
		}
		if p.Type == model.ProductAntibiotic {
			s.Antibiotics = append(s.Antibiotics, p.Name)
		}
		for _, b := range p.Batches {
			expiry, err := b.ExpiresAt()
			if err != nil {
				continue
			}
			if expiry.Before(cutoff) {
				s.ExpiringSoon = append(s.ExpiringSoon, fmt.Sprintf("%s (Batch: %s)", p.Name, b.BatchNumber))
			}
		}
	}
	return s
}
