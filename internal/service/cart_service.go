package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// ProductCatalog looks up the product snapshot copied into a cart line.
// A nil product with a nil error means the product does not exist.
type ProductCatalog interface {
	Product(ctx context.Context, id string) (*models.Product, error)
}

type CartService struct {
	carts   CartRepo
	catalog ProductCatalog
	log     *slog.Logger
	now     func() time.Time
}

func NewCartService(carts CartRepo, catalog ProductCatalog, log *slog.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, log: log, now: time.Now}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (models.CartView, error) {
	c, err := s.carts.ByUser(ctx, userID)
	if err != nil {
		return models.CartView{}, persistence("get cart", err)
	}
	if c == nil {
		c = &models.Cart{UserID: userID, Items: []models.CartItem{}, UpdatedAt: s.now().UTC()}
		if err := s.carts.Save(ctx, c); err != nil {
			return models.CartView{}, persistence("create cart", err)
		}
	}
	return c.View(), nil
}

// AddItem snapshots the product and merges quantities for repeated adds.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (models.CartView, error) {
	if err := checkQuantity(quantity); err != nil {
		return models.CartView{}, err
	}

	p, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return models.CartView{}, fmt.Errorf("fetch product %s: %w: %v", productID, ErrUpstreamUnavailable, err)
	}
	if p == nil {
		return models.CartView{}, ErrProductNotFound
	}

	c, err := s.carts.ByUser(ctx, userID)
	if err != nil {
		return models.CartView{}, persistence("get cart", err)
	}
	if c == nil {
		c = &models.Cart{UserID: userID}
	}

	if i := c.IndexOf(productID); i >= 0 {
		if quantity > models.MaxItemQuantity-c.Items[i].Quantity {
			return models.CartView{}, ErrQuantityTooLarge
		}
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, models.CartItem{
			ProductID: productID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  quantity,
			ImageURL:  p.ImageURL,
		})
	}
	return s.save(ctx, c)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (models.CartView, error) {
	if err := checkQuantity(quantity); err != nil {
		return models.CartView{}, err
	}
	c, err := s.existing(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	i := c.IndexOf(productID)
	if i < 0 {
		return models.CartView{}, ErrItemNotFound
	}
	c.Items[i].Quantity = quantity
	return s.save(ctx, c)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (models.CartView, error) {
	c, err := s.existing(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return s.save(ctx, c)
}

func (s *CartService) Clear(ctx context.Context, userID string) (models.CartView, error) {
	c, err := s.existing(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	c.Items = []models.CartItem{}
	return s.save(ctx, c)
}

func checkQuantity(q int) error {
	switch {
	case q < 1:
		return ErrInvalidQuantity
	case q > models.MaxItemQuantity:
		return ErrQuantityTooLarge
	}
	return nil
}

func (s *CartService) existing(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.carts.ByUser(ctx, userID)
	if err != nil {
		return nil, persistence("get cart", err)
	}
	if c == nil {
		return nil, ErrCartNotFound
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, c *models.Cart) (models.CartView, error) {
	c.UpdatedAt = s.now().UTC()
	if err := s.carts.Save(ctx, c); err != nil {
		return models.CartView{}, persistence("save cart", err)
	}
	return c.View(), nil
}
