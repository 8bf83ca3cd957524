package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
)

var errMockBackend = errors.New("backend unavailable")

// Mock ProductRepository. Stores snapshots so callers never share a
// pointer with the "database", like a real store.
type mockProductRepo struct {
	mu       sync.Mutex
	rows     map[domain.ProductID]domain.ProductSnapshot
	order    []domain.ProductID
	findByID int
	failSave bool
}

func newMockProductRepo(products ...*domain.Product) *mockProductRepo {
	m := &mockProductRepo{rows: make(map[domain.ProductID]domain.ProductSnapshot)}
	for _, p := range products {
		s := p.Snapshot()
		s.Version = 1
		m.rows[s.ID] = s
		m.order = append(m.order, s.ID)
	}
	return m
}

func (m *mockProductRepo) load(s domain.ProductSnapshot) *domain.Product {
	p, err := domain.ReconstituteProduct(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (m *mockProductRepo) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSave {
		return nil, errMockBackend
	}

	s := product.Snapshot()
	current, exists := m.rows[s.ID]
	switch {
	case s.Version == 0 && exists:
		return nil, domain.ErrConflict
	case s.Version != 0 && (!exists || current.Version != s.Version):
		return nil, domain.ErrConflict
	}
	if !exists {
		m.order = append(m.order, s.ID)
	}
	s.Version++
	m.rows[s.ID] = s
	return m.load(s), nil
}

func (m *mockProductRepo) FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.findByID++
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return m.load(s), nil
}

func (m *mockProductRepo) filter(keep func(domain.ProductSnapshot) bool) []*domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Product
	for _, id := range m.order {
		s, ok := m.rows[id]
		if ok && keep(s) {
			out = append(out, m.load(s))
		}
	}
	return out
}

func (m *mockProductRepo) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return m.filter(func(domain.ProductSnapshot) bool { return true }), nil
}

func (m *mockProductRepo) FindByNameContaining(ctx context.Context, name string) ([]*domain.Product, error) {
	term := strings.ToLower(name)
	return m.filter(func(s domain.ProductSnapshot) bool {
		return strings.Contains(strings.ToLower(s.Name), term)
	}), nil
}

func (m *mockProductRepo) FindActive(ctx context.Context) ([]*domain.Product, error) {
	return m.filter(func(s domain.ProductSnapshot) bool {
		return s.Status == domain.ProductStatusActive
	}), nil
}

func (m *mockProductRepo) ExistsByID(ctx context.Context, id domain.ProductID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *mockProductRepo) DeleteByID(ctx context.Context, id domain.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *mockProductRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *mockProductRepo) stock(id domain.ProductID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].StockQuantity
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	products       map[domain.ProductID]domain.ProductSnapshot
	stats          *domain.InventoryStatistics
	idempotencySet map[string]bool
	invalidated    []domain.ProductID
	failReads      bool
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		products:       make(map[domain.ProductID]domain.ProductSnapshot),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failReads {
		return nil, errMockBackend
	}
	s, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return domain.ReconstituteProduct(s)
}

func (m *mockCacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID()] = product.Snapshot()
	return nil
}

func (m *mockCacheRepo) GetStatistics(ctx context.Context) (*domain.InventoryStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failReads {
		return nil, errMockBackend
	}
	return m.stats, nil
}

func (m *mockCacheRepo) SetStatistics(ctx context.Context, stats domain.InventoryStatistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = &stats
	return nil
}

func (m *mockCacheRepo) Invalidate(ctx context.Context, id domain.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.products, id)
	m.stats = nil
	m.invalidated = append(m.invalidated, id)
	return nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}
