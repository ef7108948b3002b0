package service

import (
	"context"
	"errors"
	"strings"

	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/internal/repository"
	apperrors "github.com/printhub/realtime-api/pkg/errors"
	"github.com/printhub/realtime-api/pkg/logger"
)

// ChatStore persists and reads chat messages
type ChatStore interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByOrderID(ctx context.Context, orderID string) ([]*models.ChatMessage, error)
}

// OrderChecker reports whether an order exists
type OrderChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ChatService coordinates order chat: it persists a message row, then
// broadcasts it to the order's room. Messages are append-only.
type ChatService struct {
	messages  ChatStore
	orders    OrderChecker
	publisher Publisher
	mirror    EventMirror
	logger    logger.Logger
}

// NewChatService creates a new ChatService. mirror may be nil.
func NewChatService(
	messages ChatStore,
	orders OrderChecker,
	publisher Publisher,
	mirror EventMirror,
	logger logger.Logger,
) *ChatService {
	return &ChatService{
		messages:  messages,
		orders:    orders,
		publisher: publisher,
		mirror:    mirror,
		logger:    logger,
	}
}

// SendMessage validates and persists a message, then publishes new-message to
// the order's room. Nothing is persisted or broadcast for invalid input.
func (s *ChatService) SendMessage(
	ctx context.Context,
	orderID string,
	senderType models.SenderType,
	senderID string,
	body string,
) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)

	if body == "" {
		return nil, apperrors.NewEmptyMessageError("message body is required")
	}

	if !senderType.IsValid() {
		return nil, apperrors.NewValidationError("unknown sender type: " + string(senderType))
	}

	if strings.TrimSpace(senderID) == "" {
		return nil, apperrors.NewValidationError("sender id is required")
	}

	exists, err := s.orders.Exists(ctx, orderID)

	if err != nil {
		return nil, apperrors.NewPersistenceError("order lookup failed: " + err.Error())
	}

	if !exists {
		return nil, apperrors.NewNotFoundError("order not found")
	}

	message := models.NewChatMessage(orderID, senderType, senderID, body)

	if err := s.messages.Create(ctx, message); err != nil {
		s.logger.Error("Failed to persist chat message", "error", err, "orderID", orderID)
		return nil, apperrors.NewPersistenceError("chat store operation failed: " + err.Error())
	}

	s.logger.Info("Chat message sent", "orderID", orderID, "messageID", message.ID, "sender", senderType)

	event := models.NewMessageEvent(message)
	s.publisher.Publish(models.OrderRoom(orderID), event)

	if s.mirror != nil {
		s.mirror.Mirror(event)
	}

	return message, nil
}

// GetHistory retrieves an order's chat history, oldest first
func (s *ChatService) GetHistory(ctx context.Context, orderID string) ([]*models.ChatMessage, error) {
	messages, err := s.messages.GetByOrderID(ctx, orderID)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, apperrors.NewPersistenceError("chat store operation failed: " + err.Error())
	}

	return messages, nil
}
