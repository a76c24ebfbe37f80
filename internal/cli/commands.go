// Package cli provides the Cobra-based admin CLI for the pharmacy backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"pharmaclic/internal/config"
	"pharmaclic/internal/jobs"
	"pharmaclic/internal/ledger"
	"pharmaclic/internal/repository"
	"pharmaclic/internal/service"
	"pharmaclic/pkg/database"
)

// Enqueuer submits a stock alert scan to the worker queue.
type Enqueuer interface {
	EnqueueStockAlertScan(ctx context.Context, payload jobs.StockAlertPayload) (*asynq.TaskInfo, error)
}

// Deps are opened lazily from configuration unless set beforehand, which is how tests inject them.
type Deps struct {
	Config   *config.Config
	Store    service.StoreService
	Users    repository.UserRepository
	Enqueuer Enqueuer
	Now      func() time.Time
}

func (d *Deps) config() (config.Config, error) {
	if d.Config != nil {
		return *d.Config, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	d.Config = &cfg
	return cfg, nil
}

func (d *Deps) store(ctx context.Context) (service.StoreService, error) {
	if d.Store != nil {
		return d.Store, nil
	}
	cfg, err := d.config()
	if err != nil {
		return nil, err
	}
	var repo repository.SnapshotRepository
	switch cfg.StoreBackend {
	case config.BackendRedis:
		repo = repository.NewRedisSnapshotRepo(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.StoreKey)
	default:
		db, err := database.ConnectDB(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&repository.StoreSnapshot{}); err != nil {
			return nil, err
		}
		repo = repository.NewSnapshotRepo(db, cfg.StoreKey)
	}
	store := service.NewStoreService(repo, nil)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	d.Store = store
	return store, nil
}

func (d *Deps) users() (repository.UserRepository, error) {
	if d.Users != nil {
		return d.Users, nil
	}
	cfg, err := d.config()
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectDB(cfg.DSN())
	if err != nil {
		return nil, err
	}
	d.Users = repository.NewUserRepo(db)
	return d.Users, nil
}

func (d *Deps) enqueuer() (Enqueuer, error) {
	if d.Enqueuer != nil {
		return d.Enqueuer, nil
	}
	cfg, err := d.config()
	if err != nil {
		return nil, err
	}
	d.Enqueuer = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	return d.Enqueuer, nil
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// NewRootCmd builds the pharmaclic-admin command tree.
func NewRootCmd(deps *Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "pharmaclic-admin",
		Short:         "Maintenance commands for the PHARMACLIC backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newResetStoreCmd(deps),
		newResetPasswordCmd(deps),
		newStockCmd(deps),
		newScanAlertsCmd(deps),
	)
	return root
}

func newResetStoreCmd(deps *Deps) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-store",
		Short: "Replace all products, clients, doctors and sales with the seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			store, err := deps.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Reset(cmd.Context(), service.SystemActor); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Store reset to seed data")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newResetPasswordCmd(deps *Deps) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for a staff account and end its session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			users, err := deps.users()
			if err != nil {
				return err
			}
			if err := service.SetUserPassword(users, email, password); err != nil {
				return fmt.Errorf("❌ %s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Password for %s has been reset\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

func newStockCmd(deps *Deps) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Print stock per product and the batches expiring soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.store(cmd.Context())
			if err != nil {
				return err
			}
			writeStockReport(cmd.OutOrStdout(), store, days, deps.now())
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "expiry horizon in days")
	return cmd
}

func writeStockReport(out io.Writer, store service.StoreService, days int, now time.Time) {
	data := store.Snapshot()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tTYPE\tSTOCK\tMIN\tSTATUS")
	for _, p := range data.Products {
		status := "ok"
		if ledger.IsLowStock(p) {
			status = "LOW"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID, p.Code, p.Name, p.Type, ledger.AvailableStock(p), p.MinStock, status)
	}
	w.Flush()

	fmt.Fprintf(out, "\nExpiring within %d days:\n", days)
	for _, e := range ledger.ExpiringBatches(data.Products, days, now) {
		fmt.Fprintf(out, "  %s lot %s: %d units, %s (%d days)\n",
			e.Product.Name, e.Batch.BatchNumber, e.Batch.Quantity, e.Batch.ExpiryDate, e.DaysUntilExpiry)
	}
	fmt.Fprintln(out, "Expired with stock:")
	for _, e := range ledger.ExpiredBatches(data.Products, now) {
		fmt.Fprintf(out, "  %s lot %s: %d units, %s\n",
			e.Product.Name, e.Batch.BatchNumber, e.Batch.Quantity, e.Batch.ExpiryDate)
	}
	fmt.Fprintf(out, "\nCash register: %s\n", data.CashRegister.StringFixed(2))
}

func newScanAlertsCmd(deps *Deps) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "scan-alerts",
		Short: "Queue an immediate stock alert scan on the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := deps.enqueuer()
			if err != nil {
				return err
			}
			info, err := q.EnqueueStockAlertScan(cmd.Context(), jobs.StockAlertPayload{HorizonDays: days})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Queued %s (%s)\n", info.ID, info.Queue)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "expiry horizon in days (0 uses the worker default)")
	return cmd
}
