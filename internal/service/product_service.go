package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/auth"
	"github.com/Cheertaboi/shop-microservices/internal/models"
)

type ProductService struct {
	products ProductRepo
	log      *slog.Logger
	now      func() time.Time
}

func NewProductService(products ProductRepo, log *slog.Logger) *ProductService {
	return &ProductService{products: products, log: log, now: time.Now}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	ps, err := s.products.List(ctx, "")
	if err != nil {
		return nil, persistence("list products", err)
	}
	return ps, nil
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	ps, err := s.products.List(ctx, category)
	if err != nil {
		return nil, persistence("list products", err)
	}
	return ps, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.ByID(ctx, id)
	if err != nil {
		return nil, persistence("get product", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p.ID = ""
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, persistence("create product", err)
	}
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	verr := NewValidationError()
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		verr.Add("category", "Category is required")
	}
	if patch.Price != nil && *patch.Price < 0 {
		verr.Add("price", "Price must be non-negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		verr.Add("stock", "Stock must be non-negative")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	p, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, persistence("update product", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	ok, err := s.products.Delete(ctx, id)
	if err != nil {
		return persistence("delete product", err)
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

// AdjustStock applies delta as-is. Only admins may raise stock; any
// authenticated caller may decrement it. No floor is enforced; a negative
// result is only logged.
func (s *ProductService) AdjustStock(ctx context.Context, caller auth.Principal, id string, delta int) (*models.Product, error) {
	if delta > 0 && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	p, err := s.products.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, persistence("adjust stock", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.Stock < 0 {
		s.log.Warn("product stock below zero", "product_id", id, "stock", p.Stock, "delta", delta)
	}
	return p, nil
}

func validateProduct(p models.Product) error {
	verr := NewValidationError()
	if strings.TrimSpace(p.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		verr.Add("category", "Category is required")
	}
	if p.Price < 0 {
		verr.Add("price", "Price must be non-negative")
	}
	if p.Stock < 0 {
		verr.Add("stock", "Stock must be non-negative")
	}
	return verr.OrNil()
}
