package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrPrescriptionRequired = errors.New("prescription required: select the prescribing doctor")
	ErrProductNotFound      = errors.New("product not found")
	ErrBatchNotFound        = errors.New("batch not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrInvalidPayment       = errors.New("invalid payment method")
)

// StockError reports a line the product's batches cannot cover. Available is
// the product's total stock at commit time.
// It matches ErrInsufficientStock with errors.Is.
type StockError struct {
	ProductID string
	BatchID   string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock: product=%s batch=%s requested=%d available=%d",
		e.ProductID, e.BatchID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
