package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"saif-gifts/cart"
	"saif-gifts/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrStaleCartWrite = errors.New("cart write is older than the stored version")

// StoredCart is what a cart slot holds: the line items plus the version stamp
// of the write that produced them.
type StoredCart struct {
	Items   []cart.LineItem `json:"items"`
	Version int64           `json:"version"`
}

// CartRepository is the durable per-owner cart slot. Load never fails: a
// missing or unreadable slot is an empty cart at version 0.
type CartRepository interface {
	Load(ctx context.Context, owner string) StoredCart
	Save(ctx context.Context, owner string, items []cart.LineItem, version int64) error
}

const cartTTL = 90 * 24 * time.Hour

// saveCartScript only writes when ARGV[1] is newer than the stored version.
var saveCartScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
local incoming = tonumber(ARGV[1])
if incoming <= current then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[1], 'EX', ARGV[3])
return 1
`)

type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCartRepository(client *redis.Client, log *zap.Logger) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: cartTTL, log: log}
}

func (r *RedisCartRepository) Load(ctx context.Context, owner string) StoredCart {
	values, err := r.client.MGet(ctx, cartKey(owner), cartVersionKey(owner)).Result()
	if err != nil {
		r.log.Warn("cart load failed, starting empty", zap.String("owner", owner), zap.Error(err))
		return StoredCart{}
	}

	raw, _ := values[0].(string)
	if raw == "" {
		return StoredCart{}
	}

	stored, err := decodeStoredCart([]byte(raw))
	if err != nil {
		r.log.Warn("discarding unreadable cart",
			zap.String("owner", owner),
			zap.Error(fmt.Errorf("%w: %v", models.ErrStorageCorruption, err)))
		stored = StoredCart{}
	}

	if v, ok := values[1].(string); ok {
		var version int64
		if _, err := fmt.Sscan(v, &version); err == nil && version > stored.Version {
			stored.Version = version
		}
	}
	return stored
}

func (r *RedisCartRepository) Save(ctx context.Context, owner string, items []cart.LineItem, version int64) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	payload, err := json.Marshal(StoredCart{Items: items, Version: version})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	written, err := saveCartScript.Run(ctx, r.client,
		[]string{cartKey(owner), cartVersionKey(owner)},
		version, string(payload), int64(r.ttl/time.Second),
	).Int()
	if err != nil {
		return fmt.Errorf("redis cart save failed: %w", err)
	}
	if written == 0 {
		return ErrStaleCartWrite
	}
	return nil
}

func cartKey(owner string) string {
	return "cart_" + owner
}

func cartVersionKey(owner string) string {
	return cartKey(owner) + ":version"
}
