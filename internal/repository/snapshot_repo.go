package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStoreKey is the fixed name of the slot holding the store document.
const DefaultStoreKey = "PHARMACLIC_DB_V1"

var (
	ErrSnapshotNotFound = errors.New("store snapshot not found")
	ErrSnapshotConflict = errors.New("store snapshot was changed by another writer")
)

// SnapshotRepository is the durable key-value slot the whole store document
// is written to on every mutation and read from once at startup.
//
// Every write bumps a version number. Save only succeeds when the caller
// passes the version it last read or wrote; otherwise it returns
// ErrSnapshotConflict and leaves the slot alone. An empty slot is version 0.
type SnapshotRepository interface {
	Load(ctx context.Context) (document []byte, version int64, err error)
	Save(ctx context.Context, document []byte, expected int64) (version int64, err error)
	Delete(ctx context.Context) error
}

// StoreSnapshot is one row per slot key.
type StoreSnapshot struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Document  string    `gorm:"type:text;not null"`
	Version   int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (StoreSnapshot) TableName() string {
	return "store_snapshots"
}

type snapshotRepo struct {
	db  *gorm.DB
	key string
}

func NewSnapshotRepo(db *gorm.DB, key string) SnapshotRepository {
	if key == "" {
		key = DefaultStoreKey
	}
	return &snapshotRepo{db: db, key: key}
}

func (r *snapshotRepo) Load(ctx context.Context) ([]byte, int64, error) {
	var snap StoreSnapshot
	err := r.db.WithContext(ctx).First(&snap, "key = ?", r.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return []byte(snap.Document), snap.Version, nil
}

// Save replaces the document as a whole when the stored version still equals
// expected. The first write of a slot inserts the row.
func (r *snapshotRepo) Save(ctx context.Context, document []byte, expected int64) (int64, error) {
	db := r.db.WithContext(ctx)
	next := expected + 1
	now := time.Now()

	res := db.Model(&StoreSnapshot{}).
		Where("key = ? AND version = ?", r.key, expected).
		Updates(map[string]interface{}{"document": string(document), "version": next, "updated_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 1 {
		return next, nil
	}
	if expected != 0 {
		return 0, ErrSnapshotConflict
	}

	snap := StoreSnapshot{Key: r.key, Document: string(document), Version: next, UpdatedAt: now}
	res = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&snap)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrSnapshotConflict
	}
	return next, nil
}

func (r *snapshotRepo) Delete(ctx context.Context) error {
	return r.db.WithContext(ctx).Delete(&StoreSnapshot{}, "key = ?", r.key).Error
}
