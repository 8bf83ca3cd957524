package port

import (
	"context"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
)

type CacheRepository interface {
	// GetProduct returns nil, nil on a cache miss
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)

	SetProduct(ctx context.Context, product *domain.Product) error

	// GetStatistics returns nil, nil on a cache miss
	GetStatistics(ctx context.Context) (*domain.InventoryStatistics, error)

	SetStatistics(ctx context.Context, stats domain.InventoryStatistics) error

	// Invalidate drops the cached product and the cached statistics
	Invalidate(ctx context.Context, id domain.ProductID) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
