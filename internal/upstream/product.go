package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// ProductClient talks to the product service.
type ProductClient struct {
	c client
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{c: newClient(baseURL, timeout)}
}

// Product fetches a product by id. A 404 yields (nil, nil).
func (p *ProductClient) Product(ctx context.Context, id string) (*models.Product, error) {
	var out models.Product
	_, err := p.c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// AdjustStock changes a product's stock by delta on behalf of the credential.
func (p *ProductClient) AdjustStock(ctx context.Context, credential, productID string, delta int) error {
	body := map[string]int{"delta": delta}
	_, err := p.c.do(ctx, http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/stock", credential, body, nil)
	return err
}
