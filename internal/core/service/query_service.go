package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

// ProductQueryService serves the read use cases. Single products and the
// inventory statistics are read through the cache; cache failures are
// logged and never fail the query.
type ProductQueryService struct {
	repo   port.ProductRepository
	cache  port.CacheRepository
	rules  *domain.DomainService
	logger *zap.Logger
	tracer trace.Tracer
}

var _ port.ProductQueryUseCase = (*ProductQueryService)(nil)

func NewProductQueryService(
	repo port.ProductRepository,
	cache port.CacheRepository,
	rules *domain.DomainService,
	logger *zap.Logger,
) (*ProductQueryService, error) {
	if repo == nil {
		return nil, fmt.Errorf("%w: product repository is required", domain.ErrNilReference)
	}
	if cache == nil {
		return nil, fmt.Errorf("%w: cache repository is required", domain.ErrNilReference)
	}
	if rules == nil {
		return nil, fmt.Errorf("%w: domain service is required", domain.ErrNilReference)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductQueryService{repo: repo, cache: cache, rules: rules, logger: logger, tracer: newTracer()}, nil
}

func (s *ProductQueryService) FindProductByID(ctx context.Context, rawID string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductQueryService.FindProductByID")
	defer span.End()

	id, err := domain.ParseProductID(rawID)
	if err != nil {
		return nil, spanError(span, err)
	}

	cached, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("find product %s: %w", id, err))
	}
	if product == nil {
		return nil, spanError(span, notFound(id))
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("cache write failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	return product, nil
}

func (s *ProductQueryService) FindAllProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductQueryService.FindAllProducts")
	defer span.End()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("find products: %w", err))
	}
	return products, nil
}

func (s *ProductQueryService) FindProductsByName(ctx context.Context, name string) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductQueryService.FindProductsByName")
	defer span.End()

	term := strings.TrimSpace(name)
	if term == "" {
		return nil, spanError(span, fmt.Errorf("%w: search term cannot be empty", domain.ErrInvalidArgument))
	}
	products, err := s.repo.FindByNameContaining(ctx, term)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("search products: %w", err))
	}
	return products, nil
}

func (s *ProductQueryService) FindActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductQueryService.FindActiveProducts")
	defer span.End()

	products, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("find active products: %w", err))
	}
	return products, nil
}

func (s *ProductQueryService) GetInventoryStatistics(ctx context.Context) (domain.InventoryStatistics, error) {
	ctx, span := s.tracer.Start(ctx, "ProductQueryService.GetInventoryStatistics")
	defer span.End()

	cached, err := s.cache.GetStatistics(ctx)
	if err != nil {
		s.logger.Warn("statistics cache read failed", zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return domain.InventoryStatistics{}, spanError(span, fmt.Errorf("find products: %w", err))
	}
	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return domain.InventoryStatistics{}, spanError(span, fmt.Errorf("find active products: %w", err))
	}

	stats := s.rules.ComputeStatistics(all, active)
	if err := s.cache.SetStatistics(ctx, stats); err != nil {
		s.logger.Warn("statistics cache write failed", zap.Error(err))
	}
	return stats, nil
}

func (s *ProductQueryService) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
