package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

var ErrDuplicateRequest = fmt.Errorf("%w: duplicate request", domain.ErrConflict)

const createIdempotencyPrefix = "product:create:"

// ProductCommandService runs the write use cases: it loads aggregates, lets
// them and the domain service enforce the rules, saves the result and queues
// a ProductEvent for the publishing workers.
type ProductCommandService struct {
	repo       port.ProductRepository
	cache      port.CacheRepository
	rules      *domain.DomainService
	logger     *zap.Logger
	tracer     trace.Tracer
	eventQueue chan domain.ProductEvent

	mu     sync.RWMutex // guards closed against sends on eventQueue
	closed bool
}

var _ port.ProductCommandUseCase = (*ProductCommandService)(nil)

func NewProductCommandService(
	repo port.ProductRepository,
	cache port.CacheRepository,
	rules *domain.DomainService,
	queueSize int,
	logger *zap.Logger,
) (*ProductCommandService, error) {
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
	return &ProductCommandService{
		repo:       repo,
		cache:      cache,
		rules:      rules,
		logger:     logger,
		tracer:     newTracer(),
		eventQueue: make(chan domain.ProductEvent, queueSize),
	}, nil
}

func (s *ProductCommandService) CreateProduct(ctx context.Context, cmd port.CreateProductCommand) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductCommandService.CreateProduct")
	defer span.End()

	if cmd.RequestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, createIdempotencyPrefix+cmd.RequestID)
		if err != nil {
			return nil, spanError(span, fmt.Errorf("idempotency check failed: %w", err))
		}
		if !ok {
			return nil, spanError(span, ErrDuplicateRequest)
		}
	}

	price, err := domain.NewMoney(cmd.Price, cmd.Currency)
	if err != nil {
		return nil, spanError(span, err)
	}
	product, err := domain.NewProduct(cmd.Name, cmd.Description, price, cmd.StockQuantity)
	if err != nil {
		return nil, spanError(span, err)
	}

	existing, err := s.repo.FindByNameContaining(ctx, product.Name())
	if err != nil {
		return nil, spanError(span, fmt.Errorf("load products named %q: %w", product.Name(), err))
	}
	if err := s.rules.ValidateForCreation(product, existing); err != nil {
		return nil, spanError(span, err)
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("save product: %w", err))
	}
	span.SetAttributes(attribute.String("product.id", saved.ID().String()))

	s.afterWrite(ctx, domain.NewProductEvent(domain.ProductCreated, saved), saved.ID())
	s.logger.Info("product created",
		zap.String("product_id", saved.ID().String()),
		zap.String("name", saved.Name()),
	)
	return saved, nil
}

func (s *ProductCommandService) UpdateProduct(ctx context.Context, id string, cmd port.UpdateProductCommand) (*domain.Product, error) {
	price, err := domain.NewMoney(cmd.Price, cmd.Currency)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, "UpdateProduct", id, domain.ProductUpdated, func(p *domain.Product) error {
		if err := p.UpdateName(cmd.Name); err != nil {
			return err
		}
		p.UpdateDescription(cmd.Description)
		if err := p.UpdatePrice(price); err != nil {
			return err
		}

		existing, err := s.repo.FindByNameContaining(ctx, p.Name())
		if err != nil {
			return fmt.Errorf("load products named %q: %w", p.Name(), err)
		}
		exists, err := s.repo.ExistsByID(ctx, p.ID())
		if err != nil {
			return fmt.Errorf("check product %s: %w", p.ID(), err)
		}
		return s.rules.ValidateForUpdate(p, existing, exists)
	})
}

func (s *ProductCommandService) AddStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return s.mutate(ctx, "AddStock", id, domain.ProductStockAdded, func(p *domain.Product) error {
		return p.AddStock(quantity)
	})
}

func (s *ProductCommandService) RemoveStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return s.mutate(ctx, "RemoveStock", id, domain.ProductStockRemoved, func(p *domain.Product) error {
		return p.RemoveStock(quantity)
	})
}

func (s *ProductCommandService) ActivateProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.mutate(ctx, "ActivateProduct", id, domain.ProductActivated, func(p *domain.Product) error {
		p.Activate()
		return nil
	})
}

func (s *ProductCommandService) DeactivateProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.mutate(ctx, "DeactivateProduct", id, domain.ProductDeactivated, func(p *domain.Product) error {
		p.Deactivate()
		return nil
	})
}

func (s *ProductCommandService) DeleteProduct(ctx context.Context, rawID string) error {
	ctx, span := s.tracer.Start(ctx, "ProductCommandService.DeleteProduct")
	defer span.End()

	id, err := domain.ParseProductID(rawID)
	if err != nil {
		return spanError(span, err)
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return spanError(span, fmt.Errorf("check product %s: %w", id, err))
	}
	if !s.rules.CanDelete(id, exists) {
		if !exists {
			return spanError(span, notFound(id))
		}
		return spanError(span, fmt.Errorf("%w: product %s cannot be deleted", domain.ErrInvalidState, id))
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return spanError(span, fmt.Errorf("delete product %s: %w", id, err))
	}

	s.afterWrite(ctx, domain.NewProductDeletedEvent(id), id)
	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// Events is drained by the publishing workers.
func (s *ProductCommandService) Events() <-chan domain.ProductEvent {
	return s.eventQueue
}

// Close stops accepting events and closes the queue so the workers drain it.
// Writes that complete afterwards still succeed but their events are dropped.
// It is safe to call more than once.
func (s *ProductCommandService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.eventQueue)
}

// mutate loads the product, applies fn and saves. fn must leave the product
// valid or return an error, in which case nothing is saved.
func (s *ProductCommandService) mutate(
	ctx context.Context,
	op string,
	rawID string,
	eventType domain.ProductEventType,
	fn func(p *domain.Product) error,
) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductCommandService."+op)
	defer span.End()

	product, err := s.load(ctx, rawID)
	if err != nil {
		return nil, spanError(span, err)
	}
	span.SetAttributes(attribute.String("product.id", product.ID().String()))

	if err := fn(product); err != nil {
		return nil, spanError(span, err)
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("save product %s: %w", product.ID(), err))
	}

	s.afterWrite(ctx, domain.NewProductEvent(eventType, saved), saved.ID())
	return saved, nil
}

func (s *ProductCommandService) load(ctx context.Context, rawID string) (*domain.Product, error) {
	id, err := domain.ParseProductID(rawID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	if product == nil {
		return nil, notFound(id)
	}
	return product, nil
}

func (s *ProductCommandService) afterWrite(ctx context.Context, event domain.ProductEvent, id domain.ProductID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped(event, errEventQueueClosed)
		return
	}

	select {
	case s.eventQueue <- event:
	case <-ctx.Done():
		s.dropped(event, ctx.Err())
	}
}

var errEventQueueClosed = errors.New("event queue closed")

func (s *ProductCommandService) dropped(event domain.ProductEvent, reason error) {
	s.logger.Warn("product event dropped",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Error(reason),
	)
}

func notFound(id domain.ProductID) error {
	return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
}
