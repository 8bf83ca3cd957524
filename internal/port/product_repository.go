package port

import (
	"context"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
)

type ProductRepository interface {
	// Save inserts or updates a product with optimistic locking on its
	// version and returns the stored copy.
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// FindByID returns nil, nil when no product has the id
	FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)

	FindAll(ctx context.Context) ([]*domain.Product, error)

	// FindByNameContaining matches name case-insensitively anywhere in the product name
	FindByNameContaining(ctx context.Context, name string) ([]*domain.Product, error)

	FindActive(ctx context.Context) ([]*domain.Product, error)

	ExistsByID(ctx context.Context, id domain.ProductID) (bool, error)

	DeleteByID(ctx context.Context, id domain.ProductID) error

	Count(ctx context.Context) (int64, error)
}
