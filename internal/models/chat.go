package models

import (
	"time"
)

// SenderType identifies which side of the conversation sent a message
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderShop     SenderType = "shop"
)

// IsValid reports whether the sender type is one of the known values
func (s SenderType) IsValid() bool {
	return s == SenderCustomer || s == SenderShop
}

// ChatMessage represents one message in an order's conversation.
// Messages are append-only; this core never mutates or deletes them.
type ChatMessage struct {
	ID         string     `db:"id" json:"id"`
	OrderID    string     `db:"order_id" json:"order_id"`
	SenderType SenderType `db:"sender_type" json:"sender_type"`
	SenderID   string     `db:"sender_id" json:"sender_id"`
	Body       string     `db:"body" json:"body"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// NewChatMessage creates a message for the given order
func NewChatMessage(orderID string, senderType SenderType, senderID, body string) *ChatMessage {
	return &ChatMessage{
		ID:         GenerateID("msg"),
		OrderID:    orderID,
		SenderType: senderType,
		SenderID:   senderID,
		Body:       body,
		CreatedAt:  GetCurrentTime(),
	}
}
