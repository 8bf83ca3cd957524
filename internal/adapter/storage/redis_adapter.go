package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

const (
	productKeyPrefix  = "product:"
	statisticsKey     = "product:stats"
	idempotencyKeyTTL = 24 * time.Hour
	DefaultCacheTTL   = 5 * time.Minute
)

// cachedProduct is the JSON form of a product snapshot.
type cachedProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	StockQuantity int             `json:"stock_quantity"`
	Status        string          `json:"status"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.CacheRepository = (*RedisAdapter)(nil)

// NewRedisAdapter caches entries for ttl; a non-positive ttl means DefaultCacheTTL.
func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func productKey(id domain.ProductID) string {
	return productKeyPrefix + id.String()
}

func (r *RedisAdapter) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	raw, err := r.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c cachedProduct
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cached product: %w", err)
	}

	pid, err := domain.ParseProductID(c.ID)
	if err != nil {
		return nil, err
	}
	price, err := domain.NewMoney(c.Price, c.Currency)
	if err != nil {
		return nil, err
	}
	return domain.ReconstituteProduct(domain.ProductSnapshot{
		ID:            pid,
		Name:          c.Name,
		Description:   c.Description,
		Price:         price,
		StockQuantity: c.StockQuantity,
		Status:        domain.ProductStatus(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	})
}

func (r *RedisAdapter) SetProduct(ctx context.Context, product *domain.Product) error {
	s := product.Snapshot()
	raw, err := json.Marshal(cachedProduct{
		ID:            s.ID.String(),
		Name:          s.Name,
		Description:   s.Description,
		Price:         s.Price.Amount(),
		Currency:      s.Price.Currency(),
		StockQuantity: s.StockQuantity,
		Status:        string(s.Status),
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	return r.client.Set(ctx, productKey(s.ID), raw, r.ttl).Err()
}

func (r *RedisAdapter) GetStatistics(ctx context.Context) (*domain.InventoryStatistics, error) {
	raw, err := r.client.Get(ctx, statisticsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats domain.InventoryStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("decode cached statistics: %w", err)
	}
	return &stats, nil
}

func (r *RedisAdapter) SetStatistics(ctx context.Context, stats domain.InventoryStatistics) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode statistics: %w", err)
	}
	return r.client.Set(ctx, statisticsKey, raw, r.ttl).Err()
}

// Invalidate drops the product entry and the statistics in one transaction.
func (r *RedisAdapter) Invalidate(ctx context.Context, id domain.ProductID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, productKey(id))
		pipe.Del(ctx, statisticsKey)
		return nil
	})
	return err
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
