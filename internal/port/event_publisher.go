package port

import (
	"context"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.ProductEvent) error
	Close() error
}
