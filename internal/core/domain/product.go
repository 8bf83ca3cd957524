package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxProductNameLength = 100
	// MaxStockQuantity matches the stock column's INT range.
	MaxStockQuantity = math.MaxInt32
)

var now = func() time.Time { return time.Now().UTC() }

// Product is the catalog aggregate root. All state changes go through its
// methods; a method that returns an error leaves the product untouched.
type Product struct {
	id            ProductID
	name          string
	description   string
	price         Money
	stockQuantity int
	status        ProductStatus
	createdAt     time.Time
	updatedAt     time.Time
	version       int64
}

// ProductSnapshot is the flat form of a Product used to reload it from
// storage and to hand it to adapters.
type ProductSnapshot struct {
	ID            ProductID
	Name          string
	Description   string
	Price         Money
	StockQuantity int
	Status        ProductStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64 // optimistic locking, 0 until first save
}

// NewProduct creates a brand new, active product with a generated id.
func NewProduct(name, description string, price Money, stockQuantity int) (*Product, error) {
	n, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(stockQuantity); err != nil {
		return nil, err
	}

	ts := now()
	return &Product{
		id:            NewProductID(),
		name:          n,
		description:   description,
		price:         price,
		stockQuantity: stockQuantity,
		status:        ProductStatusActive,
		createdAt:     ts,
		updatedAt:     ts,
	}, nil
}

// ReconstituteProduct rebuilds a persisted product. A zero UpdatedAt
// defaults to CreatedAt.
func ReconstituteProduct(s ProductSnapshot) (*Product, error) {
	if s.ID.IsZero() {
		return nil, fmt.Errorf("%w: product id is required", ErrNilReference)
	}
	n, err := validateName(s.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(s.Price); err != nil {
		return nil, err
	}
	if err := validateStock(s.StockQuantity); err != nil {
		return nil, err
	}
	if s.Status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrNilReference)
	}
	if !s.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown product status %q", ErrInvalidArgument, s.Status)
	}
	if s.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: created at is required", ErrNilReference)
	}

	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.CreatedAt
	}

	return &Product{
		id:            s.ID,
		name:          n,
		description:   s.Description,
		price:         s.Price,
		stockQuantity: s.StockQuantity,
		status:        s.Status,
		createdAt:     s.CreatedAt,
		updatedAt:     updatedAt,
		version:       s.Version,
	}, nil
}

func (p *Product) UpdateName(name string) error {
	n, err := validateName(name)
	if err != nil {
		return err
	}
	p.name = n
	p.touch()
	return nil
}

func (p *Product) UpdateDescription(description string) {
	p.description = description
	p.touch()
}

func (p *Product) UpdatePrice(price Money) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.price = price
	p.touch()
	return nil
}

func (p *Product) AddStock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: stock quantity to add must be positive", ErrInvalidArgument)
	}
	if quantity > MaxStockQuantity-p.stockQuantity {
		return fmt.Errorf("%w: stock quantity cannot exceed %d", ErrInvalidArgument, MaxStockQuantity)
	}
	p.stockQuantity += quantity
	p.touch()
	return nil
}

// RemoveStock takes quantity units out of stock. There is no partial
// removal and no backorder.
func (p *Product) RemoveStock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: stock quantity to remove must be positive", ErrInvalidArgument)
	}
	if quantity > p.stockQuantity {
		return fmt.Errorf("%w: insufficient stock: requested %d, available %d", ErrInvalidState, quantity, p.stockQuantity)
	}
	p.stockQuantity -= quantity
	p.touch()
	return nil
}

func (p *Product) Activate() {
	p.status = ProductStatusActive
	p.touch()
}

func (p *Product) Deactivate() {
	p.status = ProductStatusInactive
	p.touch()
}

func (p *Product) IsActive() bool {
	return p.status == ProductStatusActive
}

func (p *Product) IsInStock() bool {
	return p.stockQuantity > 0
}

func (p *Product) IsAvailable() bool {
	return p.IsActive() && p.IsInStock()
}

// Equal reports identity equality: two products are the same product when
// their ids match, whatever their other fields hold.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.id == other.id
}

func (p *Product) ID() ProductID         { return p.id }
func (p *Product) Name() string          { return p.name }
func (p *Product) Description() string   { return p.description }
func (p *Product) Price() Money          { return p.price }
func (p *Product) StockQuantity() int    { return p.stockQuantity }
func (p *Product) Status() ProductStatus { return p.status }
func (p *Product) CreatedAt() time.Time  { return p.createdAt }
func (p *Product) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Product) Version() int64        { return p.version }

func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:            p.id,
		Name:          p.name,
		Description:   p.description,
		Price:         p.price,
		StockQuantity: p.stockQuantity,
		Status:        p.status,
		CreatedAt:     p.createdAt,
		UpdatedAt:     p.updatedAt,
		Version:       p.version,
	}
}

func (p *Product) String() string {
	return fmt.Sprintf("Product{id=%s, name=%q, price=%s, stock=%d, status=%s}",
		p.id, p.name, p.price, p.stockQuantity, p.status)
}

// touch never moves updatedAt backwards, even if the wall clock does.
func (p *Product) touch() {
	ts := now()
	if ts.Before(p.updatedAt) {
		ts = p.updatedAt
	}
	p.updatedAt = ts
}

func validateName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", fmt.Errorf("%w: product name cannot be empty", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(n) > MaxProductNameLength {
		return "", fmt.Errorf("%w: product name cannot exceed %d characters", ErrInvalidArgument, MaxProductNameLength)
	}
	return n, nil
}

func validatePrice(price Money) error {
	if price.IsZero() {
		return fmt.Errorf("%w: price is required", ErrNilReference)
	}
	return nil
}

func validateStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidArgument)
	}
	if quantity > MaxStockQuantity {
		return fmt.Errorf("%w: stock quantity cannot exceed %d", ErrInvalidArgument, MaxStockQuantity)
	}
	return nil
}
