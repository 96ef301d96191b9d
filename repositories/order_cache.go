package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"saif-gifts/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const currentOrderTTL = 30 * 24 * time.Hour

// CurrentOrderStore holds the most recent order snapshot per owner, the one
// the confirmation page and the invoice are rendered from.
type CurrentOrderStore interface {
	Put(ctx context.Context, owner string, snapshot *models.OrderSnapshot) error
	Get(ctx context.Context, owner string) (*models.OrderSnapshot, error)
}

type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisOrderCache(client *redis.Client, log *zap.Logger) *RedisOrderCache {
	return &RedisOrderCache{client: client, ttl: currentOrderTTL, log: log}
}

func (r *RedisOrderCache) Put(ctx context.Context, owner string, snapshot *models.OrderSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}
	if err := r.client.Set(ctx, currentOrderKey(owner), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Get returns a NotFoundError when the owner has no readable current order.
func (r *RedisOrderCache) Get(ctx context.Context, owner string) (*models.OrderSnapshot, error) {
	data, err := r.client.Get(ctx, currentOrderKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.NewNotFoundError("order", "")
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshot models.OrderSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil || snapshot.OrderID == "" {
		r.log.Warn("discarding unreadable current order",
			zap.String("owner", owner),
			zap.Error(fmt.Errorf("%w: %v", models.ErrStorageCorruption, err)))
		return nil, models.NewNotFoundError("order", "")
	}
	return &snapshot, nil
}

func currentOrderKey(owner string) string {
	return "current_order_" + owner
}
