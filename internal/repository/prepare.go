package repository

import (
	"context"

	"github.com/Cheertaboi/shop-microservices/pkg/db"
)

// Prepare readies the store behind conn: it applies the SQL schema or
// creates the Mongo indexes. The memory store needs nothing.
func Prepare(ctx context.Context, conn *db.Conn) error {
	switch {
	case conn.SQL != nil:
		return MigratePostgres(ctx, conn.SQL)
	case conn.Mongo != nil:
		return EnsureMongoIndexes(ctx, conn.Mongo)
	}
	return nil
}
