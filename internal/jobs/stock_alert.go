package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/model"
	"pharmaclic/internal/ws"
)

// Snapshotter is the read side of the store.
type Snapshotter interface {
	Snapshot() model.StoreData
}

// Publisher receives alert events; *ws.Hub satisfies it.
type Publisher interface {
	Publish(payload interface{})
}

type LowStockAlert struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

type BatchAlert struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	BatchID     string `json:"batch_id"`
	BatchNumber string `json:"batch_number"`
	ExpiryDate  string `json:"expiry_date"`
	Quantity    int    `json:"quantity"`
	DaysLeft    int    `json:"days_left"`
}

type StockAlert struct {
	AsOf     string          `json:"as_of"`
	LowStock []LowStockAlert `json:"low_stock"`
	Expiring []BatchAlert    `json:"expiring"`
	Expired  []BatchAlert    `json:"expired"`
}

func (a StockAlert) Empty() bool {
	return len(a.LowStock) == 0 && len(a.Expiring) == 0 && len(a.Expired) == 0
}

// StockAlertJob scans the store and broadcasts what needs the pharmacist's attention.
type StockAlertJob struct {
	Store       Snapshotter
	Publisher   Publisher
	HorizonDays int
	clock       func() time.Time
}

func NewStockAlertJob(store Snapshotter, publisher Publisher, horizonDays int) *StockAlertJob {
	return &StockAlertJob{
		Store:       store,
		Publisher:   publisher,
		HorizonDays: horizonDays,
		clock:       time.Now,
	}
}

func batchAlerts(in []ledger.BatchExpiry) []BatchAlert {
	out := make([]BatchAlert, 0, len(in))
	for _, e := range in {
		out = append(out, BatchAlert{
			ProductID:   e.Product.ID,
			Name:        e.Product.Name,
			BatchID:     e.Batch.ID,
			BatchNumber: e.Batch.BatchNumber,
			ExpiryDate:  e.Batch.ExpiryDate,
			Quantity:    e.Batch.Quantity,
			DaysLeft:    e.DaysUntilExpiry,
		})
	}
	return out
}

// Scan builds the alert for the given horizon. Expiring batches with no
// units left are skipped.
func (j *StockAlertJob) Scan(horizonDays int, asOf time.Time) StockAlert {
	if horizonDays <= 0 {
		horizonDays = j.HorizonDays
	}
	products := j.Store.Snapshot().Products

	alert := StockAlert{AsOf: asOf.UTC().Format(model.DateLayout), LowStock: []LowStockAlert{}}
	for _, p := range ledger.LowStockProducts(products) {
		alert.LowStock = append(alert.LowStock, LowStockAlert{
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     ledger.AvailableStock(p),
			MinStock:  p.MinStock,
		})
	}

	var expiring []ledger.BatchExpiry
	for _, e := range ledger.ExpiringBatches(products, horizonDays, asOf) {
		if e.Batch.Quantity > 0 {
			expiring = append(expiring, e)
		}
	}
	alert.Expiring = batchAlerts(expiring)
	alert.Expired = batchAlerts(ledger.ExpiredBatches(products, asOf))
	return alert
}

// Handle processes TaskStockAlertScan tasks.
func (j *StockAlertJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StockAlertPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode stock alert payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	alert := j.Scan(payload.HorizonDays, j.clock())
	log.Printf("[jobs] stock alert scan: %d low stock, %d expiring, %d expired",
		len(alert.LowStock), len(alert.Expiring), len(alert.Expired))
	if alert.Empty() || j.Publisher == nil {
		return nil
	}
	j.Publisher.Publish(map[string]interface{}{
		"type":  ws.EventStockAlert,
		"alert": alert,
	})
	return nil
}

// TaskHandler registers the job with a Worker.
func (j *StockAlertJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskStockAlertScan, Handler: j.Handle}
}
