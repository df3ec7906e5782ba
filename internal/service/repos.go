package service

import (
	"context"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// Repositories required by the services (interfaces to allow mocking). A nil
// record with a nil error means "not found".

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, name *string, addr *models.Address) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	ByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, category string) ([]models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
}

type CartRepo interface {
	ByUser(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	ByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}
