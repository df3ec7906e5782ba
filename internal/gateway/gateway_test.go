package gateway

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-microservices/internal/config"
	"github.com/Cheertaboi/shop-microservices/internal/logging"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"path":  r.URL.Path,
			"query": r.URL.RawQuery,
			"auth":  r.Header.Get("x-auth-token"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, opts Options) http.Handler {
	t.Helper()
	if opts.ResponseTimeout == 0 {
		opts.ResponseTimeout = time.Second
	}
	h, err := New(opts, logging.Discard())
	require.NoError(t, err)
	return h
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("x-auth-token", "tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGateway_ForwardsAndRewrites(t *testing.T) {
	up := echoServer(t)
	h := newGateway(t, Options{Routes: DefaultRoutes(config.Config{
		ProductServiceURL: up.URL,
		UserServiceURL:    up.URL,
	})})

	rec := do(h, http.MethodGet, "/api/products/42?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "/api/products/42", got["path"])
	assert.Equal(t, "limit=5", got["query"])
	assert.Equal(t, "tok", got["auth"])

	rec = do(h, http.MethodPost, "/api/auth/login")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "/api/users/login", got["path"])
}

func TestGateway_UnconfiguredPrefixIs404(t *testing.T) {
	up := echoServer(t)
	h := newGateway(t, Options{Routes: DefaultRoutes(config.Config{ProductServiceURL: up.URL})})

	rec := do(h, http.MethodGet, "/api/payments/1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGateway_UnreachableIs502(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	h := newGateway(t, Options{Routes: []Route{{Name: "cart", Prefix: "/api/cart", Target: url}}})

	rec := do(h, http.MethodGet, "/api/cart")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"message":"service unreachable"}`, rec.Body.String())
}

func TestGateway_SlowUpstreamIs504(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	h := newGateway(t, Options{
		Routes:          []Route{{Name: "orders", Prefix: "/api/orders", Target: slow.URL}},
		ResponseTimeout: 50 * time.Millisecond,
	})

	rec := do(h, http.MethodGet, "/api/orders")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"message":"upstream timeout"}`, rec.Body.String())
}

func TestGateway_IdleUpstreamIs504(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	h := newGateway(t, Options{
		Routes:          []Route{{Name: "orders", Prefix: "/api/orders", Target: slow.URL}},
		ResponseTimeout: 5 * time.Second,
		IdleTimeout:     50 * time.Millisecond,
	})

	rec := do(h, http.MethodGet, "/api/orders")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestGateway_IdleTimerDoesNotSpanPooledConnections(t *testing.T) {
	var conns atomic.Int32
	up := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	up.Config.ConnState = func(_ net.Conn, s http.ConnState) {
		if s == http.StateNew {
			conns.Add(1)
		}
	}
	up.Start()
	defer up.Close()

	h := newGateway(t, Options{
		Routes:          []Route{{Name: "orders", Prefix: "/api/orders", Target: up.URL}},
		ResponseTimeout: 5 * time.Second,
		IdleTimeout:     400 * time.Millisecond,
	})

	assert.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/api/orders").Code)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/api/orders").Code)
	assert.Equal(t, int32(1), conns.Load())
}

func TestIdleTransport_StalledBodyFails(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("first"))
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("second"))
	}))
	defer up.Close()

	client := &http.Client{Transport: newTransport(5*time.Second, 50*time.Millisecond)}
	resp, err := client.Get(up.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = io.ReadAll(resp.Body)
	require.Error(t, err)
	assert.True(t, isTimeout(err))
}

func TestGateway_RateLimit(t *testing.T) {
	h := newGateway(t, Options{RateRPS: 1, RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health").Code)
	rec := do(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGateway_RateLimitIgnoresForwardedForByDefault(t *testing.T) {
	h := newGateway(t, Options{RateRPS: 1, RateBurst: 1})

	hit := func(h http.Handler, xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2"))

	trusted := newGateway(t, Options{RateRPS: 1, RateBurst: 1, TrustProxyHeaders: true})
	assert.Equal(t, http.StatusOK, hit(trusted, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit(trusted, "10.0.0.2"))
}

func TestGateway_Health(t *testing.T) {
	h := newGateway(t, Options{})
	rec := do(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"api-gateway"}`, rec.Body.String())
}

func TestGateway_UpstreamHealth(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer up.Close()
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	h := newGateway(t, Options{
		Routes: []Route{
			{Name: "products", Prefix: "/api/products", Target: up.URL},
			{Name: "cart", Prefix: "/api/cart", Target: deadURL},
		},
		ProbeTimeout: 500 * time.Millisecond,
	})

	rec := do(h, http.MethodGet, "/health/upstreams")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"products":"up","cart":"down"}`, rec.Body.String())
}

func TestDefaultRoutes_SkipsEmptyTargets(t *testing.T) {
	routes := DefaultRoutes(config.Config{
		ProductServiceURL: "http://p",
		UserServiceURL:    "http://u",
	})

	var names []string
	for _, rt := range routes {
		names = append(names, rt.Name)
	}
	assert.Equal(t, []string{"products", "users", "auth"}, names)
}

func TestLoadRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	src := `routes:
  - prefix: /api/products
    target: http://product-service:3001
  - name: login
    prefix: /api/auth
    target: http://user-service:3002
    rewrite: /api/users
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	routes, err := ResolveRoutes(config.Config{GatewayRoutesFile: path})
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "products", routes[0].Name)
	assert.Equal(t, "/api/users/login", routes[1].upstreamPath("/api/auth/login"))
}

func TestResolveRoutes_RejectsBadTarget(t *testing.T) {
	_, err := ResolveRoutes(config.Config{ProductServiceURL: "product-service:3001"})
	assert.Error(t, err)
}
