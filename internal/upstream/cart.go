package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// CartClient talks to the cart service.
type CartClient struct {
	c client
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{c: newClient(baseURL, timeout)}
}

func (c *CartClient) Cart(ctx context.Context, credential string) (models.CartView, error) {
	var view models.CartView
	if _, err := c.c.do(ctx, http.MethodGet, "/api/cart", credential, nil, &view); err != nil {
		return models.CartView{}, err
	}
	return view, nil
}

func (c *CartClient) ClearCart(ctx context.Context, credential string) error {
	_, err := c.c.do(ctx, http.MethodDelete, "/api/cart", credential, nil, nil)
	return err
}
