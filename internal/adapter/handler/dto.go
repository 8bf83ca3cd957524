package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

type CreateProductRequest struct {
	RequestID     string          `json:"request_id,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	StockQuantity int             `json:"stock_quantity"`
}

func (r CreateProductRequest) validate() error {
	if err := validateProductFields(r.Name, r.Price, r.Currency); err != nil {
		return err
	}
	if r.StockQuantity < 0 {
		return fmt.Errorf("%w: stock_quantity cannot be negative", domain.ErrInvalidArgument)
	}
	if r.StockQuantity > domain.MaxStockQuantity {
		return fmt.Errorf("%w: stock_quantity cannot exceed %d", domain.ErrInvalidArgument, domain.MaxStockQuantity)
	}
	return nil
}

func (r CreateProductRequest) command() port.CreateProductCommand {
	return port.CreateProductCommand{
		RequestID:     r.RequestID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Currency:      r.Currency,
		StockQuantity: r.StockQuantity,
	}
}

type UpdateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

func (r UpdateProductRequest) validate() error {
	return validateProductFields(r.Name, r.Price, r.Currency)
}

func (r UpdateProductRequest) command() port.UpdateProductCommand {
	return port.UpdateProductCommand{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
	}
}

func validateProductFields(name string, price decimal.Decimal, currency string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	case strings.TrimSpace(currency) == "":
		return fmt.Errorf("%w: currency is required", domain.ErrInvalidArgument)
	}
	// same rounding and limits as the stored price
	_, err := domain.NewMoney(price, currency)
	return err
}

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	StockQuantity int             `json:"stock_quantity"`
	Status        string          `json:"status"`
	Available     bool            `json:"available"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID().String(),
		Name:          p.Name(),
		Description:   p.Description(),
		Price:         p.Price().Amount(),
		Currency:      p.Price().Currency(),
		StockQuantity: p.StockQuantity(),
		Status:        string(p.Status()),
		Available:     p.IsAvailable(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toProductResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
