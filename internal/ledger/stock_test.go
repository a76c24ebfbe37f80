package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmaclic/internal/model"
)

func seedProduct(t *testing.T, id string) model.Product {
	t.Helper()
	data := model.SeedStoreData()
	i := data.ProductIndex(id)
	require.GreaterOrEqual(t, i, 0, "seed product %s", id)
	return data.Products[i]
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestAvailableStock(t *testing.T) {
	amox := seedProduct(t, "1")
	require.Equal(t, 60, AvailableStock(amox))

	require.Equal(t, 0, AvailableStock(model.Product{}))

	withEmpty := amox.Clone()
	withEmpty.Batches[0].Quantity = 0
	withEmpty.Batches[1].Quantity = 0
	require.Equal(t, 0, AvailableStock(withEmpty))
	require.Len(t, withEmpty.Batches, 2, "zero-quantity batches are kept")
}

func TestIsLowStock(t *testing.T) {
	p := model.Product{MinStock: 10, Batches: []model.Batch{{ID: "x", Quantity: 10}}}
	require.True(t, IsLowStock(p), "threshold is inclusive")

	p.Batches[0].Quantity = 11
	require.False(t, IsLowStock(p))

	data := model.SeedStoreData()
	require.Empty(t, LowStockProducts(data.Products))
}

func TestExpiringBatches(t *testing.T) {
	data := model.SeedStoreData()
	asOf := date(t, "2025-11-01")

	got := ExpiringBatches(data.Products, 90, asOf)

	var numbers []string
	for _, e := range got {
		numbers = append(numbers, e.Batch.BatchNumber)
	}
	require.Equal(t, []string{"A100", "P200"}, numbers)
	require.Equal(t, 30, got[0].DaysUntilExpiry)
	require.Equal(t, "Amoxicilina 500mg", got[0].Product.Name)
	require.Equal(t, 75, got[1].DaysUntilExpiry)
}

func TestExpiringBatchesBoundaries(t *testing.T) {
	products := []model.Product{{
		ID: "p",
		Batches: []model.Batch{
			{ID: "today", ExpiryDate: "2025-11-01", Quantity: 1},
			{ID: "tomorrow", ExpiryDate: "2025-11-02", Quantity: 1},
			{ID: "horizon", ExpiryDate: "2025-11-11", Quantity: 1},
			{ID: "beyond", ExpiryDate: "2025-11-12", Quantity: 1},
			{ID: "garbage", ExpiryDate: "soon", Quantity: 1},
		},
	}}

	got := ExpiringBatches(products, 10, date(t, "2025-11-01"))
	require.Len(t, got, 2)
	require.Equal(t, "tomorrow", got[0].Batch.ID)
	require.Equal(t, "horizon", got[1].Batch.ID)

	// Part of a day left rounds up.
	noon := date(t, "2025-11-01").Add(12 * time.Hour)
	days, ok := DaysUntilExpiry(products[0].Batches[1], noon)
	require.True(t, ok)
	require.Equal(t, 1, days)
}

func TestDaysUntilExpiryUsesLocalCalendarDate(t *testing.T) {
	tomorrow := model.Batch{ID: "tomorrow", ExpiryDate: "2025-11-02", Quantity: 1}
	mexico := time.FixedZone("CST", -6*60*60)

	// 20:00 on Nov 1st in Mexico City is already Nov 2nd in UTC.
	evening := time.Date(2025, 11, 1, 20, 0, 0, 0, mexico)
	days, ok := DaysUntilExpiry(tomorrow, evening)
	require.True(t, ok)
	require.Equal(t, 1, days)

	for _, hour := range []int{0, 9, 23} {
		asOf := time.Date(2025, 11, 1, hour, 59, 0, 0, time.UTC)
		days, _ := DaysUntilExpiry(tomorrow, asOf)
		require.Equal(t, 1, days, "hour %d", hour)
	}

	got := ExpiringBatches([]model.Product{{ID: "p", Batches: []model.Batch{tomorrow}}}, 10, evening)
	require.Len(t, got, 1)
}

func TestExpiredBatches(t *testing.T) {
	data := model.SeedStoreData()
	got := ExpiredBatches(data.Products, date(t, "2025-11-01"))

	var numbers []string
	for _, e := range got {
		numbers = append(numbers, e.Batch.BatchNumber)
	}
	require.Equal(t, []string{"A102", "C300"}, numbers)
	require.Less(t, got[0].DaysUntilExpiry, 0)
}

func TestStockQueriesArePure(t *testing.T) {
	data := model.SeedStoreData()
	asOf := date(t, "2025-11-01")

	first := ExpiringBatches(data.Products, 90, asOf)
	second := ExpiringBatches(data.Products, 90, asOf)
	require.Equal(t, first, second)
	require.Equal(t, AvailableStock(data.Products[0]), AvailableStock(data.Products[0]))
	require.Equal(t, model.SeedStoreData().Products, data.Products)
}
