package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every pharmacy job runs on.
	QueueDefault = "default"
	// TaskStockAlertScan looks for low stock, expiring and expired batches.
	TaskStockAlertScan = "stock:alert_scan"
)

// StockAlertPayload overrides the expiry horizon of a single scan. Zero uses the job default.
type StockAlertPayload struct {
	HorizonDays int `json:"horizon_days,omitempty"`
}

func NewStockAlertTask(payload StockAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockAlertScan, data, asynq.MaxRetry(1)), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

func (c *Client) EnqueueStockAlertScan(ctx context.Context, payload StockAlertPayload) (*asynq.TaskInfo, error) {
	task, err := NewStockAlertTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

func (c *Client) Close() error {
	return c.client.Close()
}
