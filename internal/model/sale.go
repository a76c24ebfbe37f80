package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "CASH"
	PaymentCard  PaymentMethod = "CARD"
	PaymentOther PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// CartItem is a product snapshot taken when the line was added, plus the units
// selected for sale and the batch drawn from first.
type CartItem struct {
	Product
	Quantity        int               `json:"quantity"`
	SelectedBatchID string            `json:"selected_batch_id,omitempty"`
	Allocations     []BatchAllocation `json:"allocations,omitempty"` // set on committed sales
}

// BatchAllocation records how many units of a sale line came out of one batch.
type BatchAllocation struct {
	BatchID     string `json:"batch_id"`
	BatchNumber string `json:"batch_number"`
	Quantity    int    `json:"quantity"`
}

// LineTotal is the snapshot price times the quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is written once at commit and never changed afterwards.
type Sale struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Total         decimal.Decimal `json:"total"`
	Items         []CartItem      `json:"items"`
	ClientID      string          `json:"client_id,omitempty"`
	DoctorID      string          `json:"doctor_id,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CashierID     string          `json:"cashier_id,omitempty"`
}
