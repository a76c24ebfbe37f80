package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pharmaclic/internal/model"
)

var saleTime = time.Date(2025, 11, 1, 15, 4, 5, 0, time.UTC)

func batchQty(t *testing.T, data model.StoreData, productID, batchID string) int {
	t.Helper()
	pi := data.ProductIndex(productID)
	require.GreaterOrEqual(t, pi, 0)
	bi := data.Products[pi].BatchIndex(batchID)
	require.GreaterOrEqual(t, bi, 0)
	return data.Products[pi].Batches[bi].Quantity
}

func TestCommitSaleRequiresDoctorForControlled(t *testing.T) {
	data := model.SeedStoreData()
	clonazepam := seedProduct(t, "3")
	cart, _ := AddToCart(nil, clonazepam)
	cart, _ = UpdateCartQuantity(cart, clonazepam, 2)

	same, _, err := CommitSale(data, cart, SaleRequest{ClientID: "c1"}, saleTime)
	require.ErrorIs(t, err, ErrPrescriptionRequired)
	require.Equal(t, 15, batchQty(t, same, "3", "b4"))
	require.Empty(t, same.Sales)

	next, sale, err := CommitSale(data, cart, SaleRequest{ClientID: "c1", DoctorID: "d1"}, saleTime)
	require.NoError(t, err)
	require.Equal(t, 12, batchQty(t, next, "3", "b4"))
	require.Equal(t, "d1", sale.DoctorID)
	require.True(t, decimal.RequireFromString("1050").Equal(sale.Total))
	require.True(t, decimal.RequireFromString("2550").Equal(next.CashRegister))
	require.Equal(t, model.PaymentCash, sale.PaymentMethod)
	require.Equal(t, saleTime, sale.Date)
	require.NotEmpty(t, sale.ID)

	// the input aggregate is untouched
	require.Equal(t, 15, batchQty(t, data, "3", "b4"))
	require.True(t, decimal.RequireFromString("1500").Equal(data.CashRegister))
}

func TestCommitSaleUnknownDoctor(t *testing.T) {
	data := model.SeedStoreData()
	cart, _ := AddToCart(nil, seedProduct(t, "1"))

	_, _, err := CommitSale(data, cart, SaleRequest{DoctorID: "nobody"}, saleTime)
	require.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestCommitSaleDropsDoctorForGeneralSale(t *testing.T) {
	data := model.SeedStoreData()
	cart, _ := AddToCart(nil, seedProduct(t, "2"))

	_, sale, err := CommitSale(data, cart, SaleRequest{DoctorID: "d1"}, saleTime)
	require.NoError(t, err)
	require.Empty(t, sale.DoctorID)
}

func TestCommitSaleEmptyCart(t *testing.T) {
	_, _, err := CommitSale(model.SeedStoreData(), nil, SaleRequest{}, saleTime)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCommitSaleKeepsAvailableStockConsistent(t *testing.T) {
	data := model.SeedStoreData()
	para := seedProduct(t, "2")
	vendas := seedProduct(t, "4")

	cart, _ := AddToCart(nil, para)
	cart, _ = UpdateCartQuantity(cart, para, 9)
	cart, _ = AddToCart(cart, vendas)

	next, sale, err := CommitSale(data, cart, SaleRequest{PaymentMethod: model.PaymentCard}, saleTime)
	require.NoError(t, err)

	for _, p := range next.Products {
		sum := 0
		for _, b := range p.Batches {
			require.GreaterOrEqual(t, b.Quantity, 0)
			sum += b.Quantity
		}
		require.Equal(t, sum, AvailableStock(p))
	}
	require.Equal(t, 90, AvailableStock(next.Products[next.ProductIndex("2")]))
	require.Equal(t, 39, AvailableStock(next.Products[next.ProductIndex("4")]))
	require.Equal(t, model.PaymentCard, sale.PaymentMethod)
	require.Len(t, sale.Items, 2)
	require.Nil(t, sale.Items[0].Batches)
	require.Equal(t, "b3", sale.Items[0].SelectedBatchID)
}

func TestCommitSaleTotalUsesCartPrices(t *testing.T) {
	data := model.SeedStoreData()
	para := seedProduct(t, "2")
	cart, _ := AddToCart(nil, para)
	cart, _ = UpdateCartQuantity(cart, para, 3)

	// price changes after the cart was built
	data.Products[data.ProductIndex("2")].Price = decimal.RequireFromString("99.00")

	_, sale, err := CommitSale(data, cart, SaleRequest{}, saleTime)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("100").Equal(sale.Total), sale.Total.String())

	sum := decimal.Zero
	for _, item := range sale.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	require.True(t, sum.Equal(sale.Total))
}

func TestCommitSalePrependsHistory(t *testing.T) {
	data := model.SeedStoreData()
	cart, _ := AddToCart(nil, seedProduct(t, "2"))

	data, first, err := CommitSale(data, cart, SaleRequest{}, saleTime)
	require.NoError(t, err)
	data, second, err := CommitSale(data, cart, SaleRequest{}, saleTime.Add(time.Minute))
	require.NoError(t, err)

	require.Len(t, data.Sales, 2)
	require.Equal(t, second.ID, data.Sales[0].ID)
	require.Equal(t, first.ID, data.Sales[1].ID)
}

func TestCommitSaleRevalidatesStock(t *testing.T) {
	data := model.SeedStoreData()
	clonazepam := seedProduct(t, "3")
	cart, _ := AddToCart(nil, clonazepam)
	cart, _ = UpdateCartQuantity(cart, clonazepam, 9) // 10 units from C300

	// another register sold 8 units in the meantime
	data.Products[data.ProductIndex("3")].Batches[0].Quantity = 7

	same, _, err := CommitSale(data, cart, SaleRequest{DoctorID: "d1"}, saleTime)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, "b4", stockErr.BatchID)
	require.Equal(t, 10, stockErr.Requested)
	require.Equal(t, 7, stockErr.Available)
	require.Equal(t, 7, batchQty(t, same, "3", "b4"))
	require.Empty(t, same.Sales)
}

func TestCommitSaleRejectsWholeSaleWhenOneLineFails(t *testing.T) {
	data := model.SeedStoreData()
	para := seedProduct(t, "2")
	vendas := seedProduct(t, "4")
	cart, _ := AddToCart(nil, para)
	cart, _ = AddToCart(cart, vendas)

	data.Products[data.ProductIndex("4")].Batches[0].Quantity = 0

	same, _, err := CommitSale(data, cart, SaleRequest{}, saleTime)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 100, batchQty(t, same, "2", "b3"))
	require.True(t, decimal.RequireFromString("1500").Equal(same.CashRegister))
}

func TestCommitSaleSpillsAcrossBatches(t *testing.T) {
	data := model.SeedStoreData()
	amox := seedProduct(t, "1")
	cart, _ := AddToCart(nil, amox)
	cart, res := UpdateCartQuantity(cart, amox, 54) // 55 units, selected batch A100 holds 50
	require.Equal(t, CartApplied, res)

	next, sale, err := CommitSale(data, cart, SaleRequest{DoctorID: "d2"}, saleTime)
	require.NoError(t, err)
	require.Equal(t, 0, batchQty(t, next, "1", "b1"))
	require.Equal(t, 5, batchQty(t, next, "1", "b2"))
	require.Equal(t, 5, AvailableStock(next.Products[next.ProductIndex("1")]))
	require.True(t, decimal.RequireFromString("4675").Equal(sale.Total))

	require.Equal(t, "b1", sale.Items[0].SelectedBatchID)
	require.Equal(t, []model.BatchAllocation{
		{BatchID: "b1", BatchNumber: "A100", Quantity: 50},
		{BatchID: "b2", BatchNumber: "A102", Quantity: 5},
	}, sale.Items[0].Allocations)
}

func TestCommitSaleAcceptsEveryQuantityTheCartAllows(t *testing.T) {
	amox := seedProduct(t, "1")
	cart, _ := AddToCart(nil, amox)
	for {
		var res CartResult
		cart, res = AddToCart(cart, amox)
		if res != CartApplied {
			require.Equal(t, CartCapped, res)
			break
		}
	}
	require.Equal(t, 60, cart[0].Quantity)

	next, _, err := CommitSale(model.SeedStoreData(), cart, SaleRequest{DoctorID: "d1"}, saleTime)
	require.NoError(t, err)
	require.Equal(t, 0, AvailableStock(next.Products[next.ProductIndex("1")]))
}

func TestCommitSaleSpillStartsAtSelectedBatch(t *testing.T) {
	data := model.SeedStoreData()
	amox := seedProduct(t, "1")
	cart, _ := AddToCart(nil, amox)
	cart, _ = UpdateCartQuantity(cart, amox, 11) // 12 units
	cart[0].SelectedBatchID = "b2"

	next, sale, err := CommitSale(data, cart, SaleRequest{DoctorID: "d1"}, saleTime)
	require.NoError(t, err)
	require.Equal(t, 0, batchQty(t, next, "1", "b2"))
	require.Equal(t, 48, batchQty(t, next, "1", "b1"))
	require.Equal(t, "b2", sale.Items[0].SelectedBatchID)
	require.Len(t, sale.Items[0].Allocations, 2)
}

func TestCommitSaleRejectsWhenAllBatchesFallShort(t *testing.T) {
	data := model.SeedStoreData()
	amox := seedProduct(t, "1")
	cart, _ := AddToCart(nil, amox)
	cart, _ = UpdateCartQuantity(cart, amox, 54) // 55 units

	// stock sold elsewhere after the cart was built
	data.Products[data.ProductIndex("1")].Batches[1].Quantity = 2

	same, _, err := CommitSale(data, cart, SaleRequest{DoctorID: "d1"}, saleTime)
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 55, stockErr.Requested)
	require.Equal(t, 52, stockErr.Available)
	require.Equal(t, 50, batchQty(t, same, "1", "b1"))
	require.Equal(t, 2, batchQty(t, same, "1", "b2"))
}

func TestCommitSaleFallsBackToFirstBatch(t *testing.T) {
	data := model.SeedStoreData()
	cart, _ := AddToCart(nil, seedProduct(t, "2"))
	cart[0].SelectedBatchID = "gone"

	next, sale, err := CommitSale(data, cart, SaleRequest{}, saleTime)
	require.NoError(t, err)
	require.Equal(t, 99, batchQty(t, next, "2", "b3"))
	require.Equal(t, "b3", sale.Items[0].SelectedBatchID)
}

func TestCommitSaleMissingProductOrBatches(t *testing.T) {
	data := model.SeedStoreData()
	ghost := model.Product{ID: "ghost", Type: model.ProductGeneral, Batches: []model.Batch{{ID: "g", Quantity: 5}}}
	cart, _ := AddToCart(nil, ghost)

	_, _, err := CommitSale(data, cart, SaleRequest{}, saleTime)
	require.ErrorIs(t, err, ErrProductNotFound)

	data.Products = append(data.Products, model.Product{ID: "ghost", Type: model.ProductGeneral})
	_, _, err = CommitSale(data, cart, SaleRequest{}, saleTime)
	require.ErrorIs(t, err, ErrBatchNotFound)
}

func TestCommitSaleValidatesPaymentAndClient(t *testing.T) {
	data := model.SeedStoreData()
	cart, _ := AddToCart(nil, seedProduct(t, "2"))

	_, _, err := CommitSale(data, cart, SaleRequest{PaymentMethod: "BITCOIN"}, saleTime)
	require.ErrorIs(t, err, ErrInvalidPayment)

	_, _, err = CommitSale(data, cart, SaleRequest{ClientID: "c99"}, saleTime)
	require.ErrorIs(t, err, ErrClientNotFound)
}
