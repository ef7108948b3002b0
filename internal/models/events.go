package models

// EventType tags the closed set of broadcast event variants
type EventType string

const (
	EventNewOrder           EventType = "new-order"
	EventOrderUpdated       EventType = "order-updated"
	EventOrderFilesUploaded EventType = "order-files-uploaded"
	EventNewMessage         EventType = "new-message"
)

// Event is a tagged broadcast payload. Exactly the fields belonging to the
// variant's fixed shape are populated; everything else stays empty. Events are
// built through the constructors below, never assembled ad hoc.
type Event struct {
	Type    EventType    `json:"type"`
	Order   *Order       `json:"order,omitempty"`
	OrderID string       `json:"order_id,omitempty"`
	Files   []*OrderFile `json:"files,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}

// NewOrderEvent builds a new-order event carrying the full order, files included
func NewOrderEvent(order *Order) Event {
	return Event{Type: EventNewOrder, Order: order}
}

// OrderUpdatedEvent builds an order-updated event carrying the committed order
func OrderUpdatedEvent(order *Order) Event {
	return Event{Type: EventOrderUpdated, Order: order}
}

// OrderFilesUploadedEvent builds an order-files-uploaded event
func OrderFilesUploadedEvent(orderID string, files []*OrderFile) Event {
	return Event{Type: EventOrderFilesUploaded, OrderID: orderID, Files: files}
}

// NewMessageEvent builds a new-message event
func NewMessageEvent(message *ChatMessage) Event {
	return Event{Type: EventNewMessage, Message: message}
}
