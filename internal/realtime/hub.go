package realtime

import (
	"encoding/json"

	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/pkg/logger"
)

// Hub fans events out to every session registered in a room. Delivery is
// in-memory and fire-and-forget per recipient: a slow or dead session never
// delays delivery to others and never fails the originating write.
type Hub struct {
	registry *RoomRegistry
	logger   logger.Logger
}

// NewHub creates a hub over the given registry
func NewHub(registry *RoomRegistry, logger logger.Logger) *Hub {
	return &Hub{
		registry: registry,
		logger:   logger,
	}
}

// Registry returns the room registry backing this hub
func (h *Hub) Registry() *RoomRegistry {
	return h.registry
}

// Publish delivers an event to every current member of the room. The payload
// is marshalled once and shared across recipients.
func (h *Hub) Publish(roomID string, event models.Event) {
	data, err := json.Marshal(event)

	if err != nil {
		h.logger.Error("Failed to marshal event", "error", err, "type", event.Type, "room", roomID)
		return
	}

	members := h.registry.MembersOf(roomID)

	if len(members) == 0 {
		h.logger.Debug("No sessions in room", "room", roomID, "type", event.Type)
		return
	}

	delivered := 0
	for _, session := range members {
		if session.TrySend(data) {
			delivered++
		} else {
			h.logger.Warn("Dropped event for slow session",
				"sessionID", session.ID,
				"room", roomID,
				"type", event.Type)
		}
	}

	h.logger.Debug("Event published",
		"room", roomID,
		"type", event.Type,
		"members", len(members),
		"delivered", delivered)
}
