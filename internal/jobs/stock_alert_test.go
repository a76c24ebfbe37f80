package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"pharmaclic/internal/model"
)

type staticStore struct {
	data model.StoreData
}

func (s staticStore) Snapshot() model.StoreData { return s.data.Clone() }

type recorder struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *recorder) Publish(payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload)
}

func TestScanSeedData(t *testing.T) {
	job := NewStockAlertJob(staticStore{model.SeedStoreData()}, nil, 90)
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	alert := job.Scan(0, asOf)
	require.Equal(t, "2025-06-01", alert.AsOf)
	require.Empty(t, alert.LowStock)
	require.Len(t, alert.Expiring, 1)
	require.Equal(t, "C300", alert.Expiring[0].BatchNumber)
	require.Equal(t, 80, alert.Expiring[0].DaysLeft)
	require.Len(t, alert.Expired, 1)
	require.Equal(t, "A102", alert.Expired[0].BatchNumber)

	wide := job.Scan(365, asOf)
	require.Len(t, wide.Expiring, 3)
}

func TestScanSkipsEmptyBatches(t *testing.T) {
	data := model.SeedStoreData()
	data.Products[2].Batches[0].Quantity = 0 // C300
	job := NewStockAlertJob(staticStore{data}, nil, 90)

	alert := job.Scan(0, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Empty(t, alert.Expiring)
	require.Len(t, alert.LowStock, 1)
	require.Equal(t, "3", alert.LowStock[0].ProductID)
	require.Equal(t, 0, alert.LowStock[0].Stock)
}

func TestHandlePublishesAlert(t *testing.T) {
	rec := &recorder{}
	job := NewStockAlertJob(staticStore{model.SeedStoreData()}, rec, 90)
	job.clock = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	task, err := NewStockAlertTask(StockAlertPayload{})
	require.NoError(t, err)
	require.Equal(t, TaskStockAlertScan, task.Type())
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, rec.events, 1)
	event := rec.events[0].(map[string]interface{})
	require.Equal(t, "stock_alert", event["type"])
}

func TestHandleQuietWhenNothingToReport(t *testing.T) {
	rec := &recorder{}
	data := model.SeedStoreData()
	data.Products = data.Products[1:2] // paracetamol only, expires 2026-01-15
	job := NewStockAlertJob(staticStore{data}, rec, 30)
	job.clock = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskStockAlertScan, nil)))
	require.Empty(t, rec.events)
}

func TestHandleRejectsBadPayload(t *testing.T) {
	job := NewStockAlertJob(staticStore{model.SeedStoreData()}, nil, 90)
	err := job.Handle(context.Background(), asynq.NewTask(TaskStockAlertScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
