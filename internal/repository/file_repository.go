package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/printhub/realtime-api/internal/database"
	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/pkg/logger"
)

// FileRepository handles database operations for order files
type FileRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *database.Database, logger logger.Logger) *FileRepository {
	return &FileRepository{
		db:     db,
		logger: logger,
	}
}

// insertFileInTx inserts a file row within a transaction. File rows are only
// ever written in the same transaction as their order mutation.
func insertFileInTx(ctx context.Context, tx *sql.Tx, file *models.OrderFile) error {
	query := `
		INSERT INTO order_files (id, order_id, original_name, storage_path, size, mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		file.ID,
		file.OrderID,
		file.OriginalName,
		file.StoragePath,
		file.Size,
		file.MimeType,
		file.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByOrderID retrieves all files attached to an order, oldest first
func (r *FileRepository) GetByOrderID(ctx context.Context, orderID string) ([]*models.OrderFile, error) {
	query := `
		SELECT id, order_id, original_name, storage_path, size, mime_type, created_at
		FROM order_files
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	var files []*models.OrderFile
	err := r.db.DB.SelectContext(ctx, &files, query, orderID)

	if err != nil {
		r.logger.Error("Failed to get files by order ID", "error", err, "orderID", orderID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return files, nil
}
