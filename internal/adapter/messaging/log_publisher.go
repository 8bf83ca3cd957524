package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

// LogPublisher stands in for a broker: it only logs the events.
type LogPublisher struct {
	logger *zap.Logger
}

var _ port.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.ProductEvent) error {
	p.logger.Info("product event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("product_id", event.ProductID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
