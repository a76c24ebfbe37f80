package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for batch expiry dates.
const DateLayout = "2006-01-02"

// ProductType determines the regulatory handling of a product at the register.
type ProductType string

const (
	ProductGeneral    ProductType = "General"
	ProductAntibiotic ProductType = "Antibiotic"
	ProductControlled ProductType = "Controlled"
	ProductMaterial   ProductType = "Material"
)

var ProductTypes = []ProductType{ProductGeneral, ProductAntibiotic, ProductControlled, ProductMaterial}

// Regulated reports whether selling the product requires a prescribing doctor.
func (t ProductType) Regulated() bool {
	return t == ProductAntibiotic || t == ProductControlled
}

func (t ProductType) Valid() bool {
	for _, pt := range ProductTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// Batch is a dated lot of a product. Quantity never goes below zero and
// batches with zero quantity stay in the list.
type Batch struct {
	ID          string          `json:"id"`
	BatchNumber string          `json:"batch_number" validate:"required"`
	ExpiryDate  string          `json:"expiry_date" validate:"required,iso_date"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
}

// ExpiresAt parses ExpiryDate as midnight UTC.
func (b Batch) ExpiresAt() (time.Time, error) {
	return time.Parse(DateLayout, b.ExpiryDate)
}

type Product struct {
	ID               string          `json:"id"`
	Code             string          `json:"code" validate:"required"` // barcode
	Name             string          `json:"name" validate:"required"`
	Description      string          `json:"description"`
	ActiveIngredient string          `json:"active_ingredient,omitempty"`
	Price            decimal.Decimal `json:"price" validate:"gte=0"`
	Type             ProductType     `json:"type" validate:"required,product_type"`
	MinStock         int             `json:"min_stock" validate:"gte=0"`
	Batches          []Batch         `json:"batches" validate:"dive"`
}

// Clone returns a copy that shares no batch storage with p.
func (p Product) Clone() Product {
	out := p
	if p.Batches != nil {
		out.Batches = make([]Batch, len(p.Batches))
		copy(out.Batches, p.Batches)
	}
	return out
}

// BatchIndex returns the position of the batch with the given id.
func (p Product) BatchIndex(batchID string) int {
	if batchID == "" {
		return -1
	}
	for i, b := range p.Batches {
		if b.ID == batchID {
			return i
		}
	}
	return -1
}
