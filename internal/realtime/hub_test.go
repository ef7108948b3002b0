package realtime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/internal/realtime"
	"github.com/printhub/realtime-api/pkg/logger"
)

func newHub() (*realtime.Hub, *realtime.RoomRegistry) {
	registry := realtime.NewRoomRegistry(logger.NewLogger("error"))
	return realtime.NewHub(registry, logger.NewLogger("error")), registry
}

func drain(t *testing.T, session *realtime.Session) []models.Event {
	t.Helper()

	var events []models.Event

	for {
		select {
		case data := <-session.Outbound():
			var event models.Event
			require.NoError(t, json.Unmarshal(data, &event))
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestPublishReachesEveryMember(t *testing.T) {
	hub, registry := newHub()
	a := realtime.NewSession()
	b := realtime.NewSession()

	registry.Join("shop-1", a)
	registry.Join("shop-1", b)

	order := models.NewOrder("1", "Dana", "555-0101", models.OrderTypeWalkIn, "")
	hub.Publish("shop-1", models.NewOrderEvent(order))

	for _, session := range []*realtime.Session{a, b} {
		events := drain(t, session)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventNewOrder, events[0].Type)
		assert.Equal(t, order.ID, events[0].Order.ID)
	}
}

func TestPublishDeliversExactlyOncePerMember(t *testing.T) {
	hub, registry := newHub()
	session := realtime.NewSession()

	// double-join must not double-deliver
	registry.Join("shop-1", session)
	registry.Join("shop-1", session)

	order := models.NewOrder("1", "Dana", "555-0101", models.OrderTypeUploadedFiles, "")
	order.Files = []*models.OrderFile{
		models.NewOrderFile(order.ID, models.FileInput{OriginalName: "poster.pdf", StoragePath: "a/poster.pdf", Size: 100, MimeType: "application/pdf"}),
		models.NewOrderFile(order.ID, models.FileInput{OriginalName: "flyer.pdf", StoragePath: "a/flyer.pdf", Size: 200, MimeType: "application/pdf"}),
	}

	hub.Publish("shop-1", models.NewOrderEvent(order))

	events := drain(t, session)
	require.Len(t, events, 1)
	assert.Len(t, events[0].Order.Files, 2)
}

func TestPublishRoomIsolation(t *testing.T) {
	hub, registry := newHub()
	a := realtime.NewSession()
	b := realtime.NewSession()

	registry.Join("order-A", a)
	registry.Join("order-B", b)

	message := models.NewChatMessage("A", models.SenderCustomer, "42", "hello")
	hub.Publish("order-A", models.NewMessageEvent(message))

	assert.Len(t, drain(t, a), 1)
	assert.Empty(t, drain(t, b))
}

func TestPublishDoesNotBlockOnSlowSession(t *testing.T) {
	hub, registry := newHub()
	slow := realtime.NewSession()
	healthy := realtime.NewSession()

	registry.Join("shop-1", slow)
	registry.Join("shop-1", healthy)

	order := models.NewOrder("1", "Dana", "555-0101", models.OrderTypeWalkIn, "")

	// nobody drains slow; publishing far past its buffer must not block
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.Publish("shop-1", models.OrderUpdatedEvent(order))
			drain(t, healthy)
		}
	}()

	select {
	case <-done:
	case <-timeout(t):
		t.Fatal("publish blocked on a slow session")
	}
}

func timeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(5 * time.Second)
}

func TestPublishToEmptyRoomIsNoOp(t *testing.T) {
	hub, _ := newHub()
	order := models.NewOrder("1", "Dana", "555-0101", models.OrderTypeWalkIn, "")

	// must not panic or block
	hub.Publish("shop-404", models.OrderUpdatedEvent(order))
}

func TestClosedSessionRejectsSends(t *testing.T) {
	session := realtime.NewSession()
	session.Close()
	session.Close() // idempotent

	assert.False(t, session.TrySend([]byte("{}")))
}
