package ledger

import (
	"github.com/shopspring/decimal"

	"pharmaclic/internal/model"
)

// Cart is the in-progress, uncommitted list of sale lines. Operations never
// modify the cart they receive; they return a new one.
type Cart []model.CartItem

// CartResult tells the caller what a cart operation did, so rejections are
// explicit instead of inferred from an unchanged cart.
type CartResult int

const (
	CartApplied    CartResult = iota
	CartOutOfStock            // product has no available stock, nothing added
	CartCapped                // one more unit would exceed available stock
	CartDropped               // adjusted quantity would fall outside 1..available
	CartNotInCart             // no line for the product
)

func (r CartResult) String() string {
	switch r {
	case CartApplied:
		return "applied"
	case CartOutOfStock:
		return "out_of_stock"
	case CartCapped:
		return "capped"
	case CartDropped:
		return "dropped"
	case CartNotInCart:
		return "not_in_cart"
	}
	return "unknown"
}

func (c Cart) clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Line returns the position of the product's line in the cart, or -1.
func (c Cart) Line(productID string) int {
	for i, item := range c {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

// Total is the sum of price * quantity over the lines, using snapshot prices.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}

// RequiresPrescription reports whether any line is an antibiotic or controlled product.
func (c Cart) RequiresPrescription() bool {
	for _, item := range c {
		if item.Type.Regulated() {
			return true
		}
	}
	return false
}

// AddToCart adds one unit of product. A new line takes a snapshot of the
// product and selects the first batch that still has stock.
func AddToCart(cart Cart, product model.Product) (Cart, CartResult) {
	available := AvailableStock(product)
	if available <= 0 {
		return cart, CartOutOfStock
	}

	if i := cart.Line(product.ID); i >= 0 {
		if cart[i].Quantity+1 > available {
			return cart, CartCapped
		}
		next := cart.clone()
		next[i].Quantity++
		return next, CartApplied
	}

	item := model.CartItem{Product: product.Clone(), Quantity: 1}
	if batchID, ok := FirstAvailableBatch(product); ok {
		item.SelectedBatchID = batchID
	}
	return append(cart.clone(), item), CartApplied
}

// UpdateCartQuantity moves a line's quantity by delta when the result stays
// within 1..AvailableStock(product); otherwise the cart is returned unchanged.
func UpdateCartQuantity(cart Cart, product model.Product, delta int) (Cart, CartResult) {
	i := cart.Line(product.ID)
	if i < 0 {
		return cart, CartNotInCart
	}
	qty := cart[i].Quantity + delta
	if qty <= 0 || qty > AvailableStock(product) {
		return cart, CartDropped
	}
	next := cart.clone()
	next[i].Quantity = qty
	return next, CartApplied
}

// RemoveFromCart drops the product's line. CartNotInCart is returned, with the
// cart unchanged, when there is no such line.
func RemoveFromCart(cart Cart, productID string) (Cart, CartResult) {
	i := cart.Line(productID)
	if i < 0 {
		return cart, CartNotInCart
	}
	next := make(Cart, 0, len(cart)-1)
	next = append(next, cart[:i]...)
	next = append(next, cart[i+1:]...)
	return next, CartApplied
}
