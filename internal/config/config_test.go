package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-microservices/pkg/db"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := load(ServiceOrder)
	require.NoError(t, err)

	assert.Equal(t, "3003", cfg.Port)
	assert.Equal(t, ":3003", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, db.DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "http://localhost:3004", cfg.CartServiceURL)
	assert.Equal(t, "argon2id", cfg.PasswordHasher)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.Empty(t, cfg.PaymentServiceURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("CART_SERVICE_URL", "http://cart:4000")
	t.Setenv("UPSTREAM_TIMEOUT", "250ms")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop?sslmode=disable")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("GATEWAY_TRUST_PROXY", "true")

	cfg, err := load(ServiceCart)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://cart:4000", cfg.CartServiceURL)
	assert.Equal(t, 250*time.Millisecond, cfg.UpstreamTimeout)
	assert.Equal(t, db.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=disable", cfg.Store.Postgres.DSN())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoadGatewayDoesNotNeedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := load(ServiceGateway)
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	t.Setenv("RATE_RPS", "many")
	t.Setenv("STORE_DRIVER", "cassandra")
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("GATEWAY_TRUST_PROXY", "maybe")

	_, err := load(ServiceUser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set")
	assert.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
	assert.Contains(t, err.Error(), "RATE_RPS")
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "GATEWAY_TRUST_PROXY")
}

func TestPostgresDSNFromParts(t *testing.T) {
	cfg := db.PostgresConfig{
		Host: "db", Port: 5433, User: "shop", Password: "p@ss", DBName: "orders", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://shop:p%40ss@db:5433/orders?sslmode=disable", cfg.DSN())
}
