package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/model"
)

// CartView is what a register sees after every cart operation.
type CartView struct {
	Items                ledger.Cart     `json:"items"`
	Total                decimal.Decimal `json:"total"`
	Units                int             `json:"units"`
	RequiresPrescription bool            `json:"requires_prescription"`
}

type CheckoutRequest struct {
	ClientID      string              `json:"client_id"`
	DoctorID      string              `json:"doctor_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

// RegisterService keeps one cart per signed-in user. Carts live in memory
// only and are lost on restart.
type RegisterService interface {
	GetCart(userID string) CartView
	AddItem(userID, productID string) (CartView, ledger.CartResult, error)
	UpdateQuantity(userID, productID string, delta int) (CartView, ledger.CartResult, error)
	RemoveItem(userID, productID string) (CartView, ledger.CartResult)
	Clear(userID string) CartView
	Checkout(ctx context.Context, actor Actor, req CheckoutRequest) (model.Sale, error)
}

type registerSession struct {
	mu   sync.Mutex
	cart ledger.Cart
}

type registerService struct {
	store    StoreService
	mu       sync.Mutex
	sessions map[string]*registerSession
}

func NewRegisterService(store StoreService) RegisterService {
	return &registerService{
		store:    store,
		sessions: make(map[string]*registerSession),
	}
}

func (s *registerService) session(userID string) *registerSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &registerSession{}
		s.sessions[userID] = sess
	}
	return sess
}

func view(cart ledger.Cart) CartView {
	items := cart
	if items == nil {
		items = ledger.Cart{}
	}
	units := 0
	for _, item := range cart {
		units += item.Quantity
	}
	return CartView{
		Items:                items,
		Total:                cart.Total(),
		Units:                units,
		RequiresPrescription: cart.RequiresPrescription(),
	}
}

func (s *registerService) GetCart(userID string) CartView {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return view(sess.cart)
}

func (s *registerService) AddItem(userID, productID string) (CartView, ledger.CartResult, error) {
	product, err := s.store.GetProduct(productID)
	if err != nil {
		return s.GetCart(userID), ledger.CartNotInCart, err
	}
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var res ledger.CartResult
	sess.cart, res = ledger.AddToCart(sess.cart, product)
	return view(sess.cart), res, nil
}

func (s *registerService) UpdateQuantity(userID, productID string, delta int) (CartView, ledger.CartResult, error) {
	product, err := s.store.GetProduct(productID)
	if err != nil {
		return s.GetCart(userID), ledger.CartNotInCart, err
	}
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var res ledger.CartResult
	sess.cart, res = ledger.UpdateCartQuantity(sess.cart, product, delta)
	return view(sess.cart), res, nil
}

func (s *registerService) RemoveItem(userID, productID string) (CartView, ledger.CartResult) {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var res ledger.CartResult
	sess.cart, res = ledger.RemoveFromCart(sess.cart, productID)
	return view(sess.cart), res
}

func (s *registerService) Clear(userID string) CartView {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.cart = nil
	return view(nil)
}

// Checkout commits the user's cart. The cart is emptied only when the sale
// is recorded; a missing prescription keeps it so the doctor can be chosen
// and the checkout retried.
func (s *registerService) Checkout(ctx context.Context, actor Actor, req CheckoutRequest) (model.Sale, error) {
	sess := s.session(actor.ID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.cart) == 0 {
		return model.Sale{}, ledger.ErrEmptyCart
	}

	sale, err := s.store.CommitSale(ctx, actor, sess.cart, ledger.SaleRequest{
		ClientID:      req.ClientID,
		DoctorID:      req.DoctorID,
		PaymentMethod: req.PaymentMethod,
		CashierID:     actor.ID,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientStock) {
			s.refresh(sess)
		}
		return model.Sale{}, err
	}
	sess.cart = nil
	return sale, nil
}

// refresh updates the batches of each line so the register shows the stock
// that made the commit fail. Quantities and the snapshot price are kept: a
// line is never repriced after it was added.
func (s *registerService) refresh(sess *registerSession) {
	next := make(ledger.Cart, 0, len(sess.cart))
	for _, item := range sess.cart {
		product, err := s.store.GetProduct(item.ID)
		if err != nil {
			continue
		}
		line := item
		line.Product = item.Product.Clone()
		line.Batches = product.Clone().Batches
		if bi := product.BatchIndex(item.SelectedBatchID); bi < 0 || product.Batches[bi].Quantity == 0 {
			if id, ok := ledger.FirstAvailableBatch(product); ok {
				line.SelectedBatchID = id
			}
		}
		next = append(next, line)
	}
	sess.cart = next
}
