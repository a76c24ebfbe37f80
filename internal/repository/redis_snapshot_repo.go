package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisSnapshotRepo struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotRepo keeps the store document under a single Redis key with
// no expiry, and its version under "<key>:version".
func NewRedisSnapshotRepo(client *redis.Client, key string) SnapshotRepository {
	if key == "" {
		key = DefaultStoreKey
	}
	return &redisSnapshotRepo{client: client, key: key}
}

func (r *redisSnapshotRepo) versionKey() string {
	return r.key + ":version"
}

func (r *redisSnapshotRepo) Load(ctx context.Context) ([]byte, int64, error) {
	var doc, ver *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		doc = pipe.Get(ctx, r.key)
		ver = pipe.Get(ctx, r.versionKey())
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	b, err := doc.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	version, err := ver.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}
	return b, version, nil
}

// Save writes the document and the next version in one MULTI, watching the
// version key so a concurrent writer aborts the transaction.
func (r *redisSnapshotRepo) Save(ctx context.Context, document []byte, expected int64) (int64, error) {
	next := expected + 1
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, r.versionKey()).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return ErrSnapshotConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, document, 0)
			pipe.Set(ctx, r.versionKey(), next, 0)
			return nil
		})
		return err
	}, r.versionKey())
	if errors.Is(err, redis.TxFailedErr) {
		return 0, ErrSnapshotConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *redisSnapshotRepo) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key, r.versionKey()).Err()
}
