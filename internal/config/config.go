package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cheertaboi/shop-microservices/pkg/db"
)

const (
	ServiceGateway = "api-gateway"
	ServiceProduct = "product-service"
	ServiceUser    = "user-service"
	ServiceOrder   = "order-service"
	ServiceCart    = "cart-service"
)

var defaultPorts = map[string]string{
	ServiceGateway: "3000",
	ServiceProduct: "3001",
	ServiceUser:    "3002",
	ServiceOrder:   "3003",
	ServiceCart:    "3004",
}

// Config is built once at process start and passed to every component that
// needs it. Nothing reads the environment after Load returns.
type Config struct {
	Service string
	Port    string

	ProductServiceURL   string
	UserServiceURL      string
	CartServiceURL      string
	OrderServiceURL     string
	PaymentServiceURL   string
	InventoryServiceURL string

	JWTSecret      string
	JWTTTL         time.Duration
	PasswordHasher string

	Store db.StoreConfig

	LogLevel  string
	LogFormat string

	UpstreamTimeout        time.Duration
	GatewayResponseTimeout time.Duration
	GatewayIdleTimeout     time.Duration
	GatewayRoutesFile      string
	TrustProxyHeaders      bool
	RateRPS                int
	RateBurst              int
}

func (c Config) Addr() string { return ":" + c.Port }

// Load reads .env (if present) and the process environment for the named
// service.
func Load(service string) (Config, error) {
	_ = godotenv.Load()
	return load(service)
}

func load(service string) (Config, error) {
	var errs []error
	p := parser{errs: &errs}

	store, err := db.LoadStoreConfig()
	if err != nil {
		errs = append(errs, err)
	}

	cfg := Config{
		Service: service,
		Port:    get("PORT", defaultPorts[service]),

		ProductServiceURL:   get("PRODUCT_SERVICE_URL", "http://localhost:3001"),
		UserServiceURL:      get("USER_SERVICE_URL", "http://localhost:3002"),
		OrderServiceURL:     get("ORDER_SERVICE_URL", "http://localhost:3003"),
		CartServiceURL:      get("CART_SERVICE_URL", "http://localhost:3004"),
		PaymentServiceURL:   get("PAYMENT_SERVICE_URL", ""),
		InventoryServiceURL: get("INVENTORY_SERVICE_URL", ""),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         p.duration("JWT_TTL", 24*time.Hour),
		PasswordHasher: get("PASSWORD_HASHER", "argon2id"),

		Store: store,

		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "text"),

		UpstreamTimeout:        p.duration("UPSTREAM_TIMEOUT", 10*time.Second),
		GatewayResponseTimeout: p.duration("GATEWAY_RESPONSE_TIMEOUT", 30*time.Second),
		GatewayIdleTimeout:     p.duration("GATEWAY_IDLE_TIMEOUT", 60*time.Second),
		GatewayRoutesFile:      get("GATEWAY_ROUTES_FILE", ""),
		TrustProxyHeaders:      p.bool("GATEWAY_TRUST_PROXY", false),
		RateRPS:                p.int("RATE_RPS", 0),
		RateBurst:              p.int("RATE_BURST", 20),
	}

	if cfg.Port == "" {
		errs = append(errs, fmt.Errorf("PORT must be set for %q", service))
	}
	if service != ServiceGateway && cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	switch cfg.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER: unknown hasher %q", cfg.PasswordHasher))
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL: unknown level %q", cfg.LogLevel))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parser collects conversion errors instead of falling back silently.
type parser struct {
	errs *[]error
}

func (p parser) int(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func (p parser) bool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}

func (p parser) duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}
