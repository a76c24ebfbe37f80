package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pharmaclic/internal/model"
)

// SaleRequest carries the checkout details collected next to the cart.
type SaleRequest struct {
	ClientID      string
	DoctorID      string
	PaymentMethod model.PaymentMethod
	CashierID     string
}

// CommitSale validates the cart against data and, when every line can be
// fulfilled, returns a new aggregate with the batches decremented, the sale
// prepended to the history and the cash register increased by the total.
//
// Availability is checked again here, line by line, against the current
// batch quantities. A line is taken from its selected batch first and the rest
// from the other batches in catalog order, so any quantity the cart accepted
// can be committed. If any line fails the whole sale is rejected and data is
// returned untouched.
func CommitSale(data model.StoreData, cart Cart, req SaleRequest, now time.Time) (model.StoreData, model.Sale, error) {
	if len(cart) == 0 {
		return data, model.Sale{}, ErrEmptyCart
	}

	payment := req.PaymentMethod
	if payment == "" {
		payment = model.PaymentCash
	}
	if !payment.Valid() {
		return data, model.Sale{}, fmt.Errorf("%w: %s", ErrInvalidPayment, payment)
	}

	doctorID := strings.TrimSpace(req.DoctorID)
	if cart.RequiresPrescription() {
		if doctorID == "" {
			return data, model.Sale{}, ErrPrescriptionRequired
		}
		if _, ok := data.FindDoctor(doctorID); !ok {
			return data, model.Sale{}, fmt.Errorf("%w: %s", ErrDoctorNotFound, doctorID)
		}
	} else {
		doctorID = ""
	}

	if req.ClientID != "" {
		if _, ok := data.FindClient(req.ClientID); !ok {
			return data, model.Sale{}, fmt.Errorf("%w: %s", ErrClientNotFound, req.ClientID)
		}
	}

	next := data.Clone()
	items := make([]model.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.Quantity <= 0 {
			return data, model.Sale{}, fmt.Errorf("%w: product=%s", ErrInvalidQuantity, item.ID)
		}
		pi := next.ProductIndex(item.ID)
		if pi < 0 {
			return data, model.Sale{}, fmt.Errorf("%w: %s", ErrProductNotFound, item.ID)
		}
		product := &next.Products[pi]
		if len(product.Batches) == 0 {
			return data, model.Sale{}, fmt.Errorf("%w: product %s has no batches", ErrBatchNotFound, item.ID)
		}

		allocations, err := allocate(product, item)
		if err != nil {
			return data, model.Sale{}, err
		}
		for _, a := range allocations {
			product.Batches[product.BatchIndex(a.BatchID)].Quantity -= a.Quantity
		}

		line := item
		line.Product = item.Product.Clone()
		line.Batches = nil
		line.SelectedBatchID = allocations[0].BatchID
		line.Allocations = allocations
		items = append(items, line)
	}

	sale := model.Sale{
		ID:            uuid.NewString(),
		Date:          now.UTC(),
		Total:         cart.Total(),
		Items:         items,
		ClientID:      req.ClientID,
		DoctorID:      doctorID,
		PaymentMethod: payment,
		CashierID:     req.CashierID,
	}

	next.Sales = append([]model.Sale{sale}, next.Sales...)
	next.CashRegister = next.CashRegister.Add(sale.Total)
	return next, sale, nil
}

// allocate splits the line over the product's batches: the selected batch (or
// the first one when it is gone) first, then the others in catalog order.
func allocate(product *model.Product, item model.CartItem) ([]model.BatchAllocation, error) {
	first := product.BatchIndex(item.SelectedBatchID)
	if first < 0 {
		first = 0
	}
	order := make([]int, 0, len(product.Batches))
	order = append(order, first)
	for i := range product.Batches {
		if i != first {
			order = append(order, i)
		}
	}

	var out []model.BatchAllocation
	remaining := item.Quantity
	for _, i := range order {
		if remaining == 0 {
			break
		}
		b := product.Batches[i]
		if b.Quantity <= 0 {
			continue
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		out = append(out, model.BatchAllocation{BatchID: b.ID, BatchNumber: b.BatchNumber, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, &StockError{
			ProductID: item.ID,
			BatchID:   product.Batches[first].ID,
			Requested: item.Quantity,
			Available: AvailableStock(*product),
		}
	}
	return out, nil
}
