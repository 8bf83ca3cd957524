package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProductEventType string

const (
	ProductCreated      ProductEventType = "product.created"
	ProductUpdated      ProductEventType = "product.updated"
	ProductStockAdded   ProductEventType = "product.stock_added"
	ProductStockRemoved ProductEventType = "product.stock_removed"
	ProductActivated    ProductEventType = "product.activated"
	ProductDeactivated  ProductEventType = "product.deactivated"
	ProductDeleted      ProductEventType = "product.deleted"
)

// ProductEvent announces a change that has already been persisted.
type ProductEvent struct {
	ID            string           `json:"id"`
	Type          ProductEventType `json:"type"`
	ProductID     string           `json:"product_id"`
	Name          string           `json:"name,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	Status        ProductStatus    `json:"status,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func NewProductEvent(t ProductEventType, p *Product) ProductEvent {
	return ProductEvent{
		ID:            uuid.NewString(),
		Type:          t,
		ProductID:     p.ID().String(),
		Name:          p.Name(),
		StockQuantity: p.StockQuantity(),
		Status:        p.Status(),
		OccurredAt:    now(),
	}
}

func NewProductDeletedEvent(id ProductID) ProductEvent {
	return ProductEvent{
		ID:         uuid.NewString(),
		Type:       ProductDeleted,
		ProductID:  id.String(),
		OccurredAt: now(),
	}
}
