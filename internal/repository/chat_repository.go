package repository

import (
	"context"
	"fmt"

	"github.com/printhub/realtime-api/internal/database"
	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/pkg/logger"
)

// ChatRepository handles database operations for chat messages
type ChatRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *database.Database, logger logger.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new chat message
func (r *ChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, order_id, sender_type, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(
		ctx,
		query,
		message.ID,
		message.OrderID,
		message.SenderType,
		message.SenderID,
		message.Body,
		message.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create chat message", "error", err, "orderID", message.OrderID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByOrderID retrieves an order's chat history, oldest first
func (r *ChatRepository) GetByOrderID(ctx context.Context, orderID string) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, order_id, sender_type, sender_id, body, created_at
		FROM chat_messages
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	var messages []*models.ChatMessage
	err := r.db.DB.SelectContext(ctx, &messages, query, orderID)

	if err != nil {
		r.logger.Error("Failed to get chat history", "error", err, "orderID", orderID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return messages, nil
}
