package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-microservices/internal/auth"
	"github.com/Cheertaboi/shop-microservices/internal/logging"
	"github.com/Cheertaboi/shop-microservices/internal/models"
	"github.com/Cheertaboi/shop-microservices/internal/repository"
)

var (
	shopper = auth.Principal{ID: "u1", Role: models.RoleUser}
	admin   = auth.Principal{ID: "a1", Role: models.RoleAdmin}
)

func newProductService() *ProductService {
	return NewProductService(repository.NewMemoryProductRepo(), logging.Discard())
}

func TestProductCRUD(t *testing.T) {
	svc := newProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, models.Product{Name: "Lamp", Description: "Desk lamp", Price: 10, Category: "home", Stock: 5})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = svc.Create(ctx, models.Product{Name: "Mug", Description: "Tea mug", Price: 5, Category: "kitchen"})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	home, err := svc.ListByCategory(ctx, "home")
	require.NoError(t, err)
	require.Len(t, home, 1)
	assert.Equal(t, "Lamp", home[0].Name)

	price := 12.5
	updated, err := svc.Update(ctx, p.ID, models.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, "Lamp", updated.Name)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrProductNotFound)
}

func TestProductValidation(t *testing.T) {
	svc := newProductService()
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Product{Price: -1, Stock: -2})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, f := range []string{"name", "category", "price", "stock"} {
		assert.Contains(t, verr.Fields, f)
	}

	p, err := svc.Create(ctx, models.Product{Name: "Lamp", Price: 1, Category: "home"})
	require.NoError(t, err)

	blank := " "
	_, err = svc.Update(ctx, p.ID, models.ProductPatch{Name: &blank})
	require.ErrorAs(t, err, &verr)

	name := "Other"
	_, err = svc.Update(ctx, "ghost", models.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStock_NoFloor(t *testing.T) {
	svc := newProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, models.Product{Name: "Lamp", Price: 1, Category: "home", Stock: 1})
	require.NoError(t, err)

	p, err = svc.AdjustStock(ctx, shopper, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, -2, p.Stock)

	p, err = svc.AdjustStock(ctx, admin, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	_, err = svc.AdjustStock(ctx, admin, "ghost", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStock_OnlyAdminsRestock(t *testing.T) {
	svc := newProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, models.Product{Name: "Lamp", Price: 1, Category: "home", Stock: 1})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, shopper, p.ID, 1000)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}
