package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/internal/service"
	apperrors "github.com/printhub/realtime-api/pkg/errors"
	"github.com/printhub/realtime-api/pkg/logger"
)

// mockChatStore uses function fields so each test can stub exactly the
// calls it expects.
type mockChatStore struct {
	createFunc       func(ctx context.Context, message *models.ChatMessage) error
	getByOrderIDFunc func(ctx context.Context, orderID string) ([]*models.ChatMessage, error)
}

func (m *mockChatStore) Create(ctx context.Context, message *models.ChatMessage) error {
	return m.createFunc(ctx, message)
}

func (m *mockChatStore) GetByOrderID(ctx context.Context, orderID string) ([]*models.ChatMessage, error) {
	return m.getByOrderIDFunc(ctx, orderID)
}

type mockOrderChecker struct {
	existsFunc func(ctx context.Context, id string) (bool, error)
}

func (m *mockOrderChecker) Exists(ctx context.Context, id string) (bool, error) {
	return m.existsFunc(ctx, id)
}

func newChatService(store *mockChatStore, checker *mockOrderChecker, publisher *recordingPublisher) *service.ChatService {
	return service.NewChatService(store, checker, publisher, nil, logger.NewLogger("error"))
}

func orderExists(t *testing.T) *mockOrderChecker {
	return &mockOrderChecker{
		existsFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
}

func TestSendMessage_EmptyBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "whitespace_only", body: "   \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockChatStore{
				createFunc: func(ctx context.Context, message *models.ChatMessage) error {
					t.Fatal("Create must not be called for an empty body")
					return nil
				},
			}
			publisher := &recordingPublisher{}
			svc := newChatService(store, orderExists(t), publisher)

			message, err := svc.SendMessage(context.Background(), "wi-1a2b3c4d", models.SenderCustomer, "cust-7", tt.body)

			assert.Nil(t, message)
			assert.True(t, errors.Is(err, apperrors.ErrEmptyMessage))
			assert.Empty(t, publisher.all())
		})
	}
}

func TestSendMessage_UnknownSenderType(t *testing.T) {
	store := &mockChatStore{}
	publisher := &recordingPublisher{}
	svc := newChatService(store, orderExists(t), publisher)

	message, err := svc.SendMessage(context.Background(), "wi-1a2b3c4d", "courier", "cust-7", "hello")

	assert.Nil(t, message)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, publisher.all())
}

func TestSendMessage_UnknownOrder(t *testing.T) {
	store := &mockChatStore{
		createFunc: func(ctx context.Context, message *models.ChatMessage) error {
			t.Fatal("Create must not be called for an unknown order")
			return nil
		},
	}
	checker := &mockOrderChecker{
		existsFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newChatService(store, checker, publisher)

	message, err := svc.SendMessage(context.Background(), "wi-missing", models.SenderShop, "shop-9", "ready soon")

	assert.Nil(t, message)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, publisher.all())
}

func TestSendMessage_PersistFailure(t *testing.T) {
	store := &mockChatStore{
		createFunc: func(ctx context.Context, message *models.ChatMessage) error {
			return errors.New("connection reset")
		},
	}
	publisher := &recordingPublisher{}
	svc := newChatService(store, orderExists(t), publisher)

	message, err := svc.SendMessage(context.Background(), "wi-1a2b3c4d", models.SenderShop, "shop-9", "ready soon")

	assert.Nil(t, message)
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
	assert.Empty(t, publisher.all(), "a failed write must not be broadcast")
}

func TestSendMessage_Success(t *testing.T) {
	var persisted *models.ChatMessage
	store := &mockChatStore{
		createFunc: func(ctx context.Context, message *models.ChatMessage) error {
			persisted = message
			return nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newChatService(store, orderExists(t), publisher)

	message, err := svc.SendMessage(context.Background(), "wi-1a2b3c4d", models.SenderCustomer, "cust-7", "  is it ready?  ")

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "is it ready?", message.Body, "body is trimmed before persisting")
	assert.Equal(t, "wi-1a2b3c4d", message.OrderID)
	assert.Equal(t, models.SenderCustomer, message.SenderType)
	assert.NotEmpty(t, message.ID)
	assert.WithinDuration(t, time.Now().UTC(), message.CreatedAt, 5*time.Second)

	events := publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, "order-wi-1a2b3c4d", events[0].Room)
	assert.Equal(t, models.EventNewMessage, events[0].Event.Type)
	require.NotNil(t, events[0].Event.Message)
	assert.Equal(t, message.ID, events[0].Event.Message.ID)
}

func TestGetHistory(t *testing.T) {
	now := time.Now().UTC()
	history := []*models.ChatMessage{
		{ID: "msg-1", OrderID: "wi-1a2b3c4d", SenderType: models.SenderCustomer, Body: "first", CreatedAt: now.Add(-time.Minute)},
		{ID: "msg-2", OrderID: "wi-1a2b3c4d", SenderType: models.SenderShop, Body: "second", CreatedAt: now},
	}
	store := &mockChatStore{
		getByOrderIDFunc: func(ctx context.Context, orderID string) ([]*models.ChatMessage, error) {
			return history, nil
		},
	}
	svc := newChatService(store, orderExists(t), &recordingPublisher{})

	messages, err := svc.GetHistory(context.Background(), "wi-1a2b3c4d")

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
}

func TestGetHistory_StoreFailure(t *testing.T) {
	store := &mockChatStore{
		getByOrderIDFunc: func(ctx context.Context, orderID string) ([]*models.ChatMessage, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newChatService(store, orderExists(t), &recordingPublisher{})

	messages, err := svc.GetHistory(context.Background(), "wi-1a2b3c4d")

	assert.Nil(t, messages)
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
}
