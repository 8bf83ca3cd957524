package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

// fakeCatalog serves both use case ports from a map. err, when set, is
// returned by every call.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	order    []string
	rules    *domain.DomainService
	err      error
	created  []port.CreateProductCommand
}

var (
	_ port.ProductCommandUseCase = (*fakeCatalog)(nil)
	_ port.ProductQueryUseCase   = (*fakeCatalog)(nil)
)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[string]*domain.Product), rules: domain.NewDomainService()}
}

func (f *fakeCatalog) seed(name string, stock int) *domain.Product {
	price, err := domain.ParseMoney("10.00", "USD")
	if err != nil {
		panic(err)
	}
	p, err := domain.NewProduct(name, "", price, stock)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store(p)
	return p
}

func (f *fakeCatalog) store(p *domain.Product) {
	if _, ok := f.products[p.ID().String()]; !ok {
		f.order = append(f.order, p.ID().String())
	}
	f.products[p.ID().String()] = p
}

func (f *fakeCatalog) list(keep func(*domain.Product) bool) []*domain.Product {
	var out []*domain.Product
	for _, id := range f.order {
		if p, ok := f.products[id]; ok && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) load(rawID string) (*domain.Product, error) {
	id, err := domain.ParseProductID(rawID)
	if err != nil {
		return nil, err
	}
	p, ok := f.products[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return p, nil
}

func (f *fakeCatalog) mutate(rawID string, fn func(*domain.Product) error) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, err := f.load(rawID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, cmd port.CreateProductCommand) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, cmd)

	price, err := domain.NewMoney(cmd.Price, cmd.Currency)
	if err != nil {
		return nil, err
	}
	p, err := domain.NewProduct(cmd.Name, cmd.Description, price, cmd.StockQuantity)
	if err != nil {
		return nil, err
	}
	all := f.list(func(*domain.Product) bool { return true })
	if err := f.rules.ValidateForCreation(p, all); err != nil {
		return nil, err
	}
	f.store(p)
	return p, nil
}

func (f *fakeCatalog) UpdateProduct(ctx context.Context, id string, cmd port.UpdateProductCommand) (*domain.Product, error) {
	return f.mutate(id, func(p *domain.Product) error {
		price, err := domain.NewMoney(cmd.Price, cmd.Currency)
		if err != nil {
			return err
		}
		if err := p.UpdateName(cmd.Name); err != nil {
			return err
		}
		p.UpdateDescription(cmd.Description)
		return p.UpdatePrice(price)
	})
}

func (f *fakeCatalog) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p, err := f.load(id)
	if err != nil {
		return err
	}
	delete(f.products, p.ID().String())
	return nil
}

func (f *fakeCatalog) AddStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return f.mutate(id, func(p *domain.Product) error { return p.AddStock(quantity) })
}

func (f *fakeCatalog) RemoveStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return f.mutate(id, func(p *domain.Product) error { return p.RemoveStock(quantity) })
}

func (f *fakeCatalog) ActivateProduct(ctx context.Context, id string) (*domain.Product, error) {
	return f.mutate(id, func(p *domain.Product) error { p.Activate(); return nil })
}

func (f *fakeCatalog) DeactivateProduct(ctx context.Context, id string) (*domain.Product, error) {
	return f.mutate(id, func(p *domain.Product) error { p.Deactivate(); return nil })
}

func (f *fakeCatalog) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.load(id)
}

func (f *fakeCatalog) FindAllProducts(ctx context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(*domain.Product) bool { return true }), nil
}

func (f *fakeCatalog) FindProductsByName(ctx context.Context, name string) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	term := strings.ToLower(strings.TrimSpace(name))
	return f.list(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name()), term)
	}), nil
}

func (f *fakeCatalog) FindActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.list((*domain.Product).IsActive), nil
}

func (f *fakeCatalog) GetInventoryStatistics(ctx context.Context) (domain.InventoryStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.InventoryStatistics{}, f.err
	}
	all := f.list(func(*domain.Product) bool { return true })
	return f.rules.ComputeStatistics(all, f.list((*domain.Product).IsActive)), nil
}

func (f *fakeCatalog) CountProducts(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.products)), f.err
}
