package db

import (
	"context"
	"database/sql"
)

// Database owns a single *sql.DB for the lifetime of the process.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
	Ping(ctx context.Context) error
}
