package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pharmaclic/internal/ledger"
	"pharmaclic/internal/model"
	"pharmaclic/internal/repository"
	"pharmaclic/internal/ws"
	"pharmaclic/pkg/validator"
)

var (
	ErrPersistenceUnavailable = errors.New("store persistence unavailable")
	ErrProductExists          = errors.New("product id or code already exists")
	ErrBatchRemoved           = errors.New("existing batches cannot be removed")
	ErrDuplicateBatch         = errors.New("duplicate batch id")
	ErrSaleNotFound           = errors.New("sale not found")
	ErrValidation             = errors.New("validation failed")
)

// Actor identifies the staff member behind a mutation, for audit events.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}

// SystemActor is used by the CLI and background jobs.
var SystemActor = Actor{ID: "system", Name: "System"}

type StoreService interface {
	Load(ctx context.Context) error
	Snapshot() model.StoreData
	GetProduct(id string) (model.Product, error)
	GetSale(id string) (model.Sale, error)
	CreateProduct(ctx context.Context, actor Actor, p model.Product) (model.Product, error)
	ReplaceProduct(ctx context.Context, actor Actor, id string, p model.Product) (model.Product, error)
	CreateClient(ctx context.Context, actor Actor, c model.Client) (model.Client, error)
	CreateDoctor(ctx context.Context, actor Actor, d model.Doctor) (model.Doctor, error)
	CommitSale(ctx context.Context, actor Actor, cart ledger.Cart, req ledger.SaleRequest) (model.Sale, error)
	Reset(ctx context.Context, actor Actor) error
}

type storeService struct {
	mu      sync.RWMutex
	data    model.StoreData
	version int64 // slot version data was read from or last written as
	repo    repository.SnapshotRepository
	wsHub *ws.Hub
	now   func() time.Time
}

func NewStoreService(repo repository.SnapshotRepository, hub *ws.Hub) StoreService {
	return newStoreService(repo, hub, time.Now)
}

func newStoreService(repo repository.SnapshotRepository, hub *ws.Hub, now func() time.Time) *storeService {
	return &storeService{
		data:  model.SeedStoreData(),
		repo:  repo,
		wsHub: hub,
		now:   now,
	}
}

// Load reads the persisted document. A missing, unreadable or malformed
// document leaves the seed data in place and writes it back to the slot.
func (s *storeService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, version, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.version = version
		var data model.StoreData
		jerr := json.Unmarshal(raw, &data)
		if jerr == nil {
			s.data = normalize(data)
			log.Printf("Store loaded: %d products, %d sales", len(s.data.Products), len(s.data.Sales))
			return nil
		}
		log.Printf("Warning: stored document is malformed, starting from seed data: %v", jerr)
	case errors.Is(err, repository.ErrSnapshotNotFound):
		log.Println("No stored document found, starting from seed data")
	default:
		log.Printf("Warning: failed to read stored document, starting from seed data: %v", err)
	}

	s.data = model.SeedStoreData()
	if err := s.persist(ctx, s.data); err != nil {
		log.Printf("Warning: failed to write seed data: %v", err)
	}
	return nil
}

func normalize(d model.StoreData) model.StoreData {
	if d.Products == nil {
		d.Products = []model.Product{}
	}
	if d.Clients == nil {
		d.Clients = []model.Client{}
	}
	if d.Doctors == nil {
		d.Doctors = []model.Doctor{}
	}
	if d.Sales == nil {
		d.Sales = []model.Sale{}
	}
	return d
}

// persist writes data over the version held in memory and records the new one.
func (s *storeService) persist(ctx context.Context, data model.StoreData) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	version, err := s.repo.Save(ctx, doc, s.version)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	s.version = version
	return nil
}

// reload replaces the in-memory data with whatever the slot holds now.
func (s *storeService) reload(ctx context.Context) error {
	raw, version, err := s.repo.Load(ctx)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		s.data, s.version = model.SeedStoreData(), 0
		return nil
	}
	if err != nil {
		return err
	}
	var data model.StoreData
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	s.data, s.version = normalize(data), version
	return nil
}

// mutate applies fn to a copy of the current data and swaps it in only
// after the copy has been persisted. When another process wrote the slot
// since it was read, the slot is reloaded and fn runs once more against it.
func (s *storeService) mutate(ctx context.Context, fn func(next *model.StoreData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	err := s.persist(ctx, next)
	if errors.Is(err, repository.ErrSnapshotConflict) {
		log.Println("Warning: store document changed outside this process, reloading")
		if rerr := s.reload(ctx); rerr != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, rerr)
		}
		next = s.data.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		err = s.persist(ctx, next)
	}
	if err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *storeService) Snapshot() model.StoreData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *storeService) GetProduct(id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.data.ProductIndex(id)
	if i < 0 {
		return model.Product{}, ledger.ErrProductNotFound
	}
	return s.data.Products[i].Clone(), nil
}

func (s *storeService) GetSale(id string) (model.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sale := range s.data.Sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return model.Sale{}, ErrSaleNotFound
}

func validate(v interface{}) error {
	if err := validator.FirstError(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}

func checkBatchIDs(batches []model.Batch) error {
	seen := make(map[string]bool, len(batches))
	for i := range batches {
		if batches[i].ID == "" {
			batches[i].ID = uuid.NewString()
		}
		if seen[batches[i].ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateBatch, batches[i].ID)
		}
		seen[batches[i].ID] = true
	}
	return nil
}

func (s *storeService) CreateProduct(ctx context.Context, actor Actor, p model.Product) (model.Product, error) {
	p = p.Clone()
	p.Code = strings.TrimSpace(p.Code)
	if p.Batches == nil {
		p.Batches = []model.Batch{}
	}
	if err := validate(&p); err != nil {
		return model.Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := checkBatchIDs(p.Batches); err != nil {
		return model.Product{}, err
	}

	err := s.mutate(ctx, func(next *model.StoreData) error {
		for _, existing := range next.Products {
			if existing.ID == p.ID || existing.Code == p.Code {
				return fmt.Errorf("%w: %s", ErrProductExists, p.Code)
			}
		}
		next.Products = append(next.Products, p)
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	s.wsHub.Publish(map[string]interface{}{
		"type":    ws.EventStockUpdate,
		"action":  "product_created",
		"product": productEvent(p),
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, p.Name),
	})
	return p.Clone(), nil
}

// ReplaceProduct swaps the product for p. The id comes from the caller and
// every batch the product already had must still be present.
func (s *storeService) ReplaceProduct(ctx context.Context, actor Actor, id string, p model.Product) (model.Product, error) {
	p = p.Clone()
	p.ID = id
	p.Code = strings.TrimSpace(p.Code)
	if p.Batches == nil {
		p.Batches = []model.Batch{}
	}
	if err := validate(&p); err != nil {
		return model.Product{}, err
	}
	if err := checkBatchIDs(p.Batches); err != nil {
		return model.Product{}, err
	}

	var oldStock int
	err := s.mutate(ctx, func(next *model.StoreData) error {
		i := next.ProductIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ledger.ErrProductNotFound, id)
		}
		for j, other := range next.Products {
			if j != i && other.Code == p.Code {
				return fmt.Errorf("%w: %s", ErrProductExists, p.Code)
			}
		}
		for _, b := range next.Products[i].Batches {
			if p.BatchIndex(b.ID) < 0 {
				return fmt.Errorf("%w: %s", ErrBatchRemoved, b.ID)
			}
		}
		oldStock = ledger.AvailableStock(next.Products[i])
		next.Products[i] = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	event := productEvent(p)
	event["old_stock"] = oldStock
	s.wsHub.Publish(map[string]interface{}{
		"type":    ws.EventStockUpdate,
		"action":  "product_updated",
		"product": event,
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, p.Name),
	})
	return p.Clone(), nil
}

func (s *storeService) CreateClient(ctx context.Context, actor Actor, c model.Client) (model.Client, error) {
	if err := validate(&c); err != nil {
		return model.Client{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.mutate(ctx, func(next *model.StoreData) error {
		if _, ok := next.FindClient(c.ID); ok {
			return fmt.Errorf("%w: client %s already exists", ErrValidation, c.ID)
		}
		next.Clients = append(next.Clients, c)
		return nil
	})
	if err != nil {
		return model.Client{}, err
	}
	log.Printf("Client %s created by %s", c.ID, actor.Name)
	return c, nil
}

func (s *storeService) CreateDoctor(ctx context.Context, actor Actor, d model.Doctor) (model.Doctor, error) {
	if err := validate(&d); err != nil {
		return model.Doctor{}, err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	err := s.mutate(ctx, func(next *model.StoreData) error {
		if _, ok := next.FindDoctor(d.ID); ok {
			return fmt.Errorf("%w: doctor %s already exists", ErrValidation, d.ID)
		}
		next.Doctors = append(next.Doctors, d)
		return nil
	})
	if err != nil {
		return model.Doctor{}, err
	}
	log.Printf("Doctor %s created by %s", d.ID, actor.Name)
	return d, nil
}

// CommitSale runs the ledger commit under the writer lock, so the stock
// check and the decrement see the same batch quantities.
func (s *storeService) CommitSale(ctx context.Context, actor Actor, cart ledger.Cart, req ledger.SaleRequest) (model.Sale, error) {
	if req.CashierID == "" {
		req.CashierID = actor.ID
	}

	var sale model.Sale
	var remaining []model.Product
	err := s.mutate(ctx, func(next *model.StoreData) error {
		committed, sl, err := ledger.CommitSale(*next, cart, req, s.now())
		if err != nil {
			return err
		}
		*next = committed
		sale = sl
		remaining = remaining[:0]
		for _, item := range sl.Items {
			if i := committed.ProductIndex(item.ID); i >= 0 {
				remaining = append(remaining, committed.Products[i])
			}
		}
		return nil
	})
	if err != nil {
		return model.Sale{}, err
	}

	stock := make([]map[string]interface{}, 0, len(remaining))
	for _, p := range remaining {
		stock = append(stock, productEvent(p))
	}
	s.wsHub.Publish(map[string]interface{}{
		"type":     ws.EventSaleCommitted,
		"sale_id":  sale.ID,
		"total":    sale.Total,
		"items":    len(sale.Items),
		"products": stock,
		"user":     actor.payload(),
		"message":  fmt.Sprintf("%s committed sale %s for %s", actor.Name, sale.ID, sale.Total.StringFixed(2)),
	})
	return sale, nil
}

// Reset replaces the whole store with the seed data.
func (s *storeService) Reset(ctx context.Context, actor Actor) error {
	err := s.mutate(ctx, func(next *model.StoreData) error {
		*next = model.SeedStoreData()
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Store reset to seed data by %s", actor.Name)
	s.wsHub.Publish(map[string]interface{}{
		"type":    ws.EventStoreReset,
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s reset the store", actor.Name),
	})
	return nil
}

func productEvent(p model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":        p.ID,
		"code":      p.Code,
		"name":      p.Name,
		"stock":     ledger.AvailableStock(p),
		"min_stock": p.MinStock,
		"low_stock": ledger.IsLowStock(p),
		"price":     p.Price,
	}
}
