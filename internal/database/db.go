package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/printhub/realtime-api/internal/config"
	"github.com/printhub/realtime-api/pkg/logger"
	"github.com/printhub/realtime-api/pkg/retry"
)

// Database represents a database connection
type Database struct {
	DB     *sqlx.DB
	logger logger.Logger
}

// New creates a new database connection, retrying with backoff while the
// database is still coming up.
func New(ctx context.Context, cfg *config.Config, logger logger.Logger) (*Database, error) {
	var db *sqlx.DB

	connect := func() error {
		var err error
		db, err = sqlx.Connect("postgres", cfg.GetDBConnString())
		return err
	}

	err := retry.Retry(ctx, connect, &retry.RetryConfig{
		MaxAttempts:     5,
		BackoffStrategy: retry.NewDefaultExponentialBackoff(),
		Logger:          logger,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("Connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	return &Database{
		DB:     db,
		logger: logger,
	}, nil
}

// Ping checks the database connection
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.DB.Close()
}

// RunMigrations creates the schema if it does not exist yet
func (d *Database) RunMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(50) PRIMARY KEY,
		shop_id VARCHAR(50) NOT NULL,
		customer_name VARCHAR(100) NOT NULL,
		customer_phone VARCHAR(30) NOT NULL,
		order_type VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		is_urgent BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_orders_shop_id ON orders(shop_id);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

	CREATE TABLE IF NOT EXISTS order_files (
		id VARCHAR(50) PRIMARY KEY,
		order_id VARCHAR(50) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		original_name TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		size BIGINT NOT NULL,
		mime_type VARCHAR(100) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_order_files_order_id ON order_files(order_id);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id VARCHAR(50) PRIMARY KEY,
		order_id VARCHAR(50) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		sender_type VARCHAR(10) NOT NULL,
		sender_id VARCHAR(50) NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_order ON chat_messages(order_id, created_at);
	`

	_, err := d.DB.Exec(schema)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}
