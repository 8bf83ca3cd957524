package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productNamed(t *testing.T, name string, stock int) *Product {
	t.Helper()
	p, err := NewProduct(name, "", mustMoney(t, 1, "USD"), stock)
	require.NoError(t, err)
	return p
}

func TestIsNameUnique(t *testing.T) {
	svc := NewDomainService()
	widget := productNamed(t, "widget", 0)
	candidates := []*Product{widget}

	assert.False(t, svc.IsNameUnique("Widget", candidates, ProductID{}))
	assert.False(t, svc.IsNameUnique("  WIDGET ", candidates, ProductID{}))
	assert.True(t, svc.IsNameUnique("Widget", candidates, widget.ID()))
	assert.True(t, svc.IsNameUnique("Gizmo", candidates, ProductID{}))
	assert.False(t, svc.IsNameUnique("   ", nil, ProductID{}))
	assert.True(t, svc.IsNameUnique("Widget", nil, ProductID{}))
}

func TestValidateForCreation(t *testing.T) {
	svc := NewDomainService()
	existing := []*Product{productNamed(t, "Gadget", 1)}

	err := svc.ValidateForCreation(productNamed(t, "Gadget", 0), existing)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.NoError(t, svc.ValidateForCreation(productNamed(t, "Gizmo", 0), existing))

	inactive := productNamed(t, "Gizmo", 0)
	inactive.Deactivate()
	assert.ErrorIs(t, svc.ValidateForCreation(inactive, existing), ErrInvalidArgument)

	assert.ErrorIs(t, svc.ValidateForCreation(nil, existing), ErrNilReference)
}

func TestValidateForUpdate(t *testing.T) {
	svc := NewDomainService()
	p := productNamed(t, "Gadget", 1)
	other := productNamed(t, "Gizmo", 1)

	assert.NoError(t, svc.ValidateForUpdate(p, []*Product{p}, true))
	assert.ErrorIs(t, svc.ValidateForUpdate(p, []*Product{p}, false), ErrInvalidArgument)

	require.NoError(t, p.UpdateName("gizmo"))
	assert.ErrorIs(t, svc.ValidateForUpdate(p, []*Product{p, other}, true), ErrInvalidArgument)
}

func TestCanDelete(t *testing.T) {
	svc := NewDomainService()
	id := NewProductID()

	assert.True(t, svc.CanDelete(id, true))
	assert.False(t, svc.CanDelete(id, false))
}

func TestComputeStatistics(t *testing.T) {
	svc := NewDomainService()
	p1 := productNamed(t, "p1", 3)
	p2 := productNamed(t, "p2", 0)
	p3 := productNamed(t, "p3", 4)
	p3.Deactivate()

	stats := svc.ComputeStatistics([]*Product{p1, p2, p3}, []*Product{p1, p2})

	assert.Equal(t, InventoryStatistics{
		TotalProducts:      3,
		ActiveProducts:     2,
		InactiveProducts:   1,
		ProductsInStock:    1,
		ProductsOutOfStock: 1,
	}, stats)

	assert.Equal(t, InventoryStatistics{}, svc.ComputeStatistics(nil, nil))
}
