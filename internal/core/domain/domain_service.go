package domain

import (
	"fmt"
	"strings"
)

// DomainService holds the catalog rules that span several products. It is
// stateless and never loads data itself: callers pass in everything it
// needs.
type DomainService struct{}

func NewDomainService() *DomainService {
	return &DomainService{}
}

// IsNameUnique reports whether no candidate carries name (trimmed, case
// insensitive). A candidate whose id equals excludeID is ignored; pass the
// zero ProductID when checking a new product.
func (s *DomainService) IsNameUnique(name string, candidates []*Product, excludeID ProductID) bool {
	n := strings.TrimSpace(name)
	if n == "" {
		return false
	}
	for _, c := range candidates {
		if c == nil || !strings.EqualFold(strings.TrimSpace(c.Name()), n) {
			continue
		}
		if excludeID.IsZero() || c.ID() != excludeID {
			return false
		}
	}
	return true
}

func (s *DomainService) ValidateForCreation(product *Product, existing []*Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is required", ErrNilReference)
	}
	if !s.IsNameUnique(product.Name(), existing, ProductID{}) {
		return fmt.Errorf("%w: product name '%s' already exists", ErrInvalidArgument, product.Name())
	}
	if !product.IsActive() {
		return fmt.Errorf("%w: new products must be created as active", ErrInvalidArgument)
	}
	return nil
}

func (s *DomainService) ValidateForUpdate(product *Product, existing []*Product, productExists bool) error {
	if product == nil {
		return fmt.Errorf("%w: product is required", ErrNilReference)
	}
	if !productExists {
		return fmt.Errorf("%w: product with id %s does not exist", ErrInvalidArgument, product.ID())
	}
	if !s.IsNameUnique(product.Name(), existing, product.ID()) {
		return fmt.Errorf("%w: product name '%s' already exists", ErrInvalidArgument, product.Name())
	}
	return nil
}

// CanDelete is the deletion policy hook. Nothing outside the catalog
// references products yet, so existence is the only requirement.
func (s *DomainService) CanDelete(id ProductID, productExists bool) bool {
	return productExists
}

// ComputeStatistics summarizes all and its active subset.
func (s *DomainService) ComputeStatistics(all, active []*Product) InventoryStatistics {
	total := int64(len(all))
	activeCount := int64(len(active))

	var inStock int64
	for _, p := range active {
		if p != nil && p.IsInStock() {
			inStock++
		}
	}

	return InventoryStatistics{
		TotalProducts:      total,
		ActiveProducts:     activeCount,
		InactiveProducts:   total - activeCount,
		ProductsInStock:    inStock,
		ProductsOutOfStock: activeCount - inStock,
	}
}
