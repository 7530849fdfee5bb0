package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory/internal/core/domain"
)

const stockKeyPrefix = "stock:"

// RedisAdapter mirrors saved quantities as stock:<id> keys.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Mirror(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			pipe.Set(ctx, stockKeyPrefix+rec.ID, int(rec.Quantity), 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mirror stock to redis: %w", err)
	}
	return nil
}

func (r *RedisAdapter) GetStock(ctx context.Context, itemID string) (int, error) {
	return r.client.Get(ctx, stockKeyPrefix+itemID).Int()
}
