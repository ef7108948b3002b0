package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/printhub/realtime-api/internal/database"
	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/pkg/logger"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrDatabase = errors.New("database error")
)

// OrderRepository is the store adapter for orders. It owns the transactions:
// an order and its file rows are committed together or not at all, and every
// mutation re-reads the row under a lock before writing.
type OrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *database.Database, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithFiles inserts an order row and all of its file rows in a single
// transaction. On any failure the whole transaction is rolled back and no
// partial order is ever visible.
func (r *OrderRepository) CreateWithFiles(ctx context.Context, order *models.Order, files []*models.OrderFile) (err error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)

	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	query := `
		INSERT INTO orders (id, shop_id, customer_name, customer_phone, order_type, status, is_urgent, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID,
		order.ShopID,
		order.CustomerName,
		order.CustomerPhone,
		order.OrderType,
		order.Status,
		order.IsUrgent,
		order.Description,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	for _, file := range files {
		if err = insertFileInTx(ctx, tx, file); err != nil {
			r.logger.Error("Failed to create order file", "error", err, "orderID", order.ID)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// MutateLocked re-reads the order under a row lock, applies the pure mutate
// function and persists the result, all inside one transaction. Concurrent
// writers on the same order are serialized by the lock; a mutate error rolls
// back and propagates unchanged with nothing written.
func (r *OrderRepository) MutateLocked(
	ctx context.Context,
	orderID string,
	mutate func(*models.Order) (*models.Order, error),
) (result *models.Order, err error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)

	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	order, err := r.getForUpdate(ctx, tx, orderID)

	if err != nil {
		return nil, err
	}

	updated, err := mutate(order)

	if err != nil {
		return nil, err
	}

	query := `
		UPDATE orders
		SET status = $1, is_urgent = $2, updated_at = $3
		WHERE id = $4
	`

	_, err = tx.ExecContext(ctx, query, updated.Status, updated.IsUrgent, updated.UpdatedAt, updated.ID)

	if err != nil {
		r.logger.Error("Failed to update order", "error", err, "orderID", orderID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err, "orderID", orderID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return updated, nil
}

// AddFiles attaches file rows to an existing order. The prepare function
// inspects the locked order and returns the rows to insert; the inserts and
// the updated_at refresh commit atomically.
func (r *OrderRepository) AddFiles(
	ctx context.Context,
	orderID string,
	prepare func(*models.Order) ([]*models.OrderFile, error),
) (result *models.Order, files []*models.OrderFile, err error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)

	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	order, err := r.getForUpdate(ctx, tx, orderID)

	if err != nil {
		return nil, nil, err
	}

	files, err = prepare(order)

	if err != nil {
		return nil, nil, err
	}

	for _, file := range files {
		if err = insertFileInTx(ctx, tx, file); err != nil {
			r.logger.Error("Failed to create order file", "error", err, "orderID", orderID)
			return nil, nil, err
		}
	}

	order.UpdatedAt = models.GetCurrentTime()

	query := `UPDATE orders SET updated_at = $1 WHERE id = $2`

	_, err = tx.ExecContext(ctx, query, order.UpdatedAt, order.ID)

	if err != nil {
		r.logger.Error("Failed to touch order", "error", err, "orderID", orderID)
		return nil, nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err, "orderID", orderID)
		return nil, nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return order, files, nil
}

// GetByID retrieves an order by its ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, shop_id, customer_name, customer_phone, order_type, status, is_urgent, description, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order by ID", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &order, nil
}

// GetByShopID retrieves orders for a shop, newest first
func (r *OrderRepository) GetByShopID(ctx context.Context, shopID string, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, shop_id, customer_name, customer_phone, order_type, status, is_urgent, description, created_at, updated_at
		FROM orders
		WHERE shop_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var orders []*models.Order
	err := r.db.DB.SelectContext(ctx, &orders, query, shopID, limit, offset)

	if err != nil {
		r.logger.Error("Failed to get orders by shop ID", "error", err, "shopID", shopID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, nil
}

// Exists reports whether an order with the given ID exists
func (r *OrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`

	err := r.db.DB.GetContext(ctx, &exists, query, id)

	if err != nil {
		r.logger.Error("Failed to check order existence", "error", err, "orderID", id)
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return exists, nil
}

// getForUpdate re-reads an order inside a transaction with a row lock
func (r *OrderRepository) getForUpdate(ctx context.Context, tx *sql.Tx, id string) (*models.Order, error) {
	query := `
		SELECT id, shop_id, customer_name, customer_phone, order_type, status, is_urgent, description, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var order models.Order
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.ShopID,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.OrderType,
		&order.Status,
		&order.IsUrgent,
		&order.Description,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to lock order row", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &order, nil
}
