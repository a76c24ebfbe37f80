package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pharmaclic/internal/ledger"
)

func TestDashboardStats(t *testing.T) {
	store, _ := newTestStore(t)
	reports := NewReportService(store, 90)
	ctx := context.Background()

	_, err := store.CommitSale(ctx, cashier, cartOf(t, store, "2", 2), ledger.SaleRequest{})
	require.NoError(t, err)
	_, err = store.CommitSale(ctx, cashier, cartOf(t, store, "4", 1), ledger.SaleRequest{})
	require.NoError(t, err)

	stats := reports.DashboardStats(testNow)
	require.Equal(t, "2025-06-01", stats.Date)
	require.Equal(t, 2, stats.SalesTodayCount)
	require.True(t, stats.SalesTodayTotal.Equal(decimal.RequireFromString("65")))
	require.Equal(t, 4, stats.TotalProducts)
	require.Equal(t, 0, stats.LowStockCount)
	// On 2025-06-01: C300 expires in 80 days; A102 expired a year earlier.
	require.Equal(t, 1, stats.ExpiringCount)
	require.Equal(t, 1, stats.ExpiredCount)
	require.True(t, stats.CashRegister.Equal(decimal.RequireFromString("1565")))

	tomorrow := reports.DashboardStats(testNow.Add(24 * time.Hour))
	require.Equal(t, 0, tomorrow.SalesTodayCount)
	require.True(t, tomorrow.SalesTodayTotal.IsZero())
}

func TestSalesByDayAndTopProducts(t *testing.T) {
	repo := &memSnapshotRepo{}
	clock := testNow
	store := newStoreService(repo, nil, func() time.Time { return clock })
	require.NoError(t, store.Load(context.Background()))
	reports := NewReportService(store, 90)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		clock = testNow.AddDate(0, 0, i)
		_, err := store.CommitSale(ctx, cashier, cartOf(t, store, "2", i+1), ledger.SaleRequest{})
		require.NoError(t, err)
	}
	_, err := store.CommitSale(ctx, cashier, cartOf(t, store, "4", 10), ledger.SaleRequest{})
	require.NoError(t, err)

	days := reports.SalesByDay(2)
	require.Len(t, days, 2)
	require.Equal(t, "2025-06-02", days[0].Date)
	require.Equal(t, "2025-06-03", days[1].Date)
	require.Equal(t, 2, days[1].Count)
	require.True(t, days[1].Total.Equal(decimal.RequireFromString("225")))

	top := reports.TopProducts(2)
	require.Len(t, top, 2)
	require.Equal(t, "4", top[0].ProductID)
	require.Equal(t, 10, top[0].Quantity)
	require.Equal(t, "2", top[1].ProductID)
	require.Equal(t, 6, top[1].Quantity)
	require.True(t, top[1].Revenue.Equal(decimal.RequireFromString("150")))

	recent := reports.RecentSales(1)
	require.Len(t, recent, 1)
	require.Equal(t, "4", recent[0].Items[0].ID)
}

func TestLowStockAndExpiry(t *testing.T) {
	store, _ := newTestStore(t)
	reports := NewReportService(store, 90)
	ctx := context.Background()

	_, err := store.CommitSale(ctx, cashier, cartOf(t, store, "3", 10), ledger.SaleRequest{DoctorID: "d1"})
	require.NoError(t, err)

	low := reports.LowStock()
	require.Len(t, low, 1)
	require.Equal(t, "3", low[0].ProductID)
	require.Equal(t, 5, low[0].Stock)

	asOf := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	exp := reports.Expiring(0, asOf)
	require.Len(t, exp, 1)
	require.Equal(t, "b1", exp[0].Batch.ID)
	require.Equal(t, 61, exp[0].DaysUntilExpiry)

	exp = reports.Expiring(200, asOf)
	require.Len(t, exp, 2)
	require.Equal(t, "b1", exp[0].Batch.ID)
	require.Equal(t, "b3", exp[1].Batch.ID)

	expired := reports.Expired(asOf)
	require.Len(t, expired, 2)
	require.Equal(t, "b2", expired[0].Batch.ID)
	require.Equal(t, "b4", expired[1].Batch.ID)
}
