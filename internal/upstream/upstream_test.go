package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

func TestProductClient_Product(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/p1":
			_ = json.NewEncoder(w).Encode(models.Product{ID: "p1", Name: "Lamp", Price: 12.5})
		case "/api/products/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL+"/", time.Second)

	p, err := c.Product(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, 12.5, p.Price)

	p, err = c.Product(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = c.Product(context.Background(), "broken")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestProductClient_AdjustStockForwardsCredential(t *testing.T) {
	var gotAuth string
	var gotBody map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products/p1/stock", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewProductClient(srv.URL, time.Second).AdjustStock(context.Background(), "tok", "p1", -3)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, map[string]int{"delta": -3}, gotBody)
}

func TestCartClient(t *testing.T) {
	cleared := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"items":[{"productId":"p1","name":"A","price":10,"quantity":2}],"total":20}`))
		case http.MethodDelete:
			cleared = true
			_, _ = w.Write([]byte(`{"items":[],"total":0}`))
		}
	}))
	defer srv.Close()

	c := NewCartClient(srv.URL, time.Second)

	view, err := c.Cart(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p1", view.Items[0].ProductID)
	assert.Equal(t, 20.0, view.Total)

	require.NoError(t, c.ClearCart(context.Background(), "tok"))
	assert.True(t, cleared)

	_, err = c.Cart(context.Background(), "bad")
	assert.Error(t, err)
}

func TestUserClient_Profile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"u1","name":"Ann","address":{"street":"1 Main","city":"X","state":"Y","zipCode":"1","country":"Z"}}`))
	}))
	defer srv.Close()

	u, err := NewUserClient(srv.URL, time.Second).Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, u.Address.Complete())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewCartClient(srv.URL, 20*time.Millisecond).Cart(context.Background(), "tok")
	assert.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewUserClient(addr, time.Second).Profile(context.Background(), "tok")
	assert.Error(t, err)
}
