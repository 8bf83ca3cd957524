package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
)

type CreateProductCommand struct {
	// RequestID makes the call idempotent when set
	RequestID     string
	Name          string
	Description   string
	Price         decimal.Decimal
	Currency      string
	StockQuantity int
}

type UpdateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
}

// ProductCommandUseCase is the write side offered to inbound adapters.
type ProductCommandUseCase interface {
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, cmd UpdateProductCommand) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddStock(ctx context.Context, id string, quantity int) (*domain.Product, error)
	RemoveStock(ctx context.Context, id string, quantity int) (*domain.Product, error)
	ActivateProduct(ctx context.Context, id string) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id string) (*domain.Product, error)
}

// ProductQueryUseCase is the read side offered to inbound adapters.
type ProductQueryUseCase interface {
	FindProductByID(ctx context.Context, id string) (*domain.Product, error)
	FindAllProducts(ctx context.Context) ([]*domain.Product, error)
	FindProductsByName(ctx context.Context, name string) ([]*domain.Product, error)
	FindActiveProducts(ctx context.Context) ([]*domain.Product, error)
	GetInventoryStatistics(ctx context.Context) (domain.InventoryStatistics, error)
	CountProducts(ctx context.Context) (int64, error)
}
