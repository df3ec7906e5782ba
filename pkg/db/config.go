package db

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// URL, when set, takes precedence over the individual fields.
	URL string
}

// DSN renders the connection string handed to lib/pq.
func (c PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type MongoConfig struct {
	URI      string
	Database string
}

type StoreConfig struct {
	Driver   string
	Mongo    MongoConfig
	Postgres PostgresConfig
}

func LoadPostgresConfig() (PostgresConfig, error) {
	port := 5432
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("DB_PORT: %w", err)
		}
		port = p
	}

	return PostgresConfig{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     port,
		User:     getenv("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getenv("DB_NAME", "shop"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
		URL:      os.Getenv("DATABASE_URL"),
	}, nil
}

func LoadMongoConfig() MongoConfig {
	return MongoConfig{
		URI:      getenv("MONGODB_URI", "mongodb://localhost:27017"),
		Database: getenv("MONGODB_DATABASE", "shop"),
	}
}

func LoadStoreConfig() (StoreConfig, error) {
	pg, err := LoadPostgresConfig()
	if err != nil {
		return StoreConfig{}, err
	}
	driver := getenv("STORE_DRIVER", DriverMongo)
	switch driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return StoreConfig{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", driver)
	}
	return StoreConfig{
		Driver:   driver,
		Mongo:    LoadMongoConfig(),
		Postgres: pg,
	}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
