package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Conn is the opened storage handle for one service process. Exactly one of
// Mongo or SQL is set, or neither for the memory driver.
type Conn struct {
	Driver string
	Mongo  *mongo.Database
	SQL    *sql.DB

	mongoClient *mongo.Client
}

func Open(ctx context.Context, cfg StoreConfig) (*Conn, error) {
	c := &Conn{Driver: cfg.Driver}
	switch cfg.Driver {
	case DriverMongo:
		client, database, err := NewMongoConnection(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		c.mongoClient, c.Mongo = client, database
	case DriverPostgres:
		sqlDB, err := NewPostgresConnection(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		c.SQL = sqlDB
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	return c, nil
}

func (c *Conn) Close(ctx context.Context) error {
	switch {
	case c.mongoClient != nil:
		return c.mongoClient.Disconnect(ctx)
	case c.SQL != nil:
		return c.SQL.Close()
	}
	return nil
}
