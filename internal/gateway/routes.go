package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/shop-microservices/internal/config"
)

// Route forwards every request under Prefix to Target, replacing Prefix with
// Rewrite in the upstream path. An empty Rewrite keeps the prefix.
type Route struct {
	Name    string `yaml:"name"`
	Prefix  string `yaml:"prefix"`
	Target  string `yaml:"target"`
	Rewrite string `yaml:"rewrite,omitempty"`
}

func (rt Route) upstreamPath(in string) string {
	rewrite := rt.Rewrite
	if rewrite == "" {
		rewrite = rt.Prefix
	}
	return rewrite + strings.TrimPrefix(in, rt.Prefix)
}

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// DefaultRoutes builds the route table from service URLs. Routes whose URL
// is empty are left out, so their prefixes fall through to the 404 handler.
func DefaultRoutes(cfg config.Config) []Route {
	all := []Route{
		{Name: "products", Prefix: "/api/products", Target: cfg.ProductServiceURL},
		{Name: "users", Prefix: "/api/users", Target: cfg.UserServiceURL},
		{Name: "auth", Prefix: "/api/auth", Target: cfg.UserServiceURL, Rewrite: "/api/users"},
		{Name: "cart", Prefix: "/api/cart", Target: cfg.CartServiceURL},
		{Name: "orders", Prefix: "/api/orders", Target: cfg.OrderServiceURL},
		{Name: "payments", Prefix: "/api/payments", Target: cfg.PaymentServiceURL},
		{Name: "inventory", Prefix: "/api/inventory", Target: cfg.InventoryServiceURL},
	}
	out := all[:0]
	for _, rt := range all {
		if strings.TrimSpace(rt.Target) != "" {
			out = append(out, rt)
		}
	}
	return out
}

// LoadRoutes reads a YAML route table:
//
//	routes:
//	  - name: products
//	    prefix: /api/products
//	    target: http://product-service:3001
func LoadRoutes(path string) ([]Route, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	var f routesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	if len(f.Routes) == 0 {
		return nil, errors.New("routes file defines no routes")
	}
	for i, rt := range f.Routes {
		if rt.Name == "" {
			f.Routes[i].Name = strings.TrimPrefix(rt.Prefix, "/api/")
		}
	}
	return f.Routes, nil
}

// ResolveRoutes picks the YAML table when a file is configured and the
// environment-derived table otherwise.
func ResolveRoutes(cfg config.Config) ([]Route, error) {
	routes := DefaultRoutes(cfg)
	if cfg.GatewayRoutesFile != "" {
		var err error
		if routes, err = LoadRoutes(cfg.GatewayRoutesFile); err != nil {
			return nil, err
		}
	}
	for _, rt := range routes {
		if err := validateRoute(rt); err != nil {
			return nil, err
		}
	}
	return routes, nil
}

func validateRoute(rt Route) error {
	if !strings.HasPrefix(rt.Prefix, "/") {
		return fmt.Errorf("route %q: prefix must start with /", rt.Name)
	}
	u, err := url.Parse(rt.Target)
	if err != nil {
		return fmt.Errorf("route %q: %w", rt.Name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("route %q: target %q needs scheme and host", rt.Name, rt.Target)
	}
	return nil
}
