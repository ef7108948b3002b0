package models

import (
	"time"
)

// OrderType distinguishes walk-in orders from orders placed with uploaded files
type OrderType string

const (
	OrderTypeUploadedFiles OrderType = "uploaded-files"
	OrderTypeWalkIn        OrderType = "walk-in"
)

// IsValid reports whether the order type is one of the known values
func (t OrderType) IsValid() bool {
	return t == OrderTypeUploadedFiles || t == OrderTypeWalkIn
}

// idPrefix returns the id prefix used for orders of this type
func (t OrderType) idPrefix() string {
	if t == OrderTypeWalkIn {
		return "wi"
	}
	return "up"
}

// Order represents a print-shop order
type Order struct {
	ID            string       `db:"id" json:"id"`
	ShopID        string       `db:"shop_id" json:"shop_id"`
	CustomerName  string       `db:"customer_name" json:"customer_name"`
	CustomerPhone string       `db:"customer_phone" json:"customer_phone"`
	OrderType     OrderType    `db:"order_type" json:"order_type"`
	Status        OrderStatus  `db:"status" json:"status"`
	IsUrgent      bool         `db:"is_urgent" json:"is_urgent"`
	Description   string       `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
	Files         []*OrderFile `db:"-" json:"files,omitempty"`
}

// NewOrder creates a new order in the initial status
func NewOrder(shopID, customerName, customerPhone string, orderType OrderType, description string) *Order {
	now := GetCurrentTime()

	return &Order{
		ID:            GenerateID(orderType.idPrefix()),
		ShopID:        shopID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		OrderType:     orderType,
		Status:        StatusNew,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ShopRoom returns the broadcast room for the owning shop
func (o *Order) ShopRoom() string {
	return ShopRoom(o.ShopID)
}

// OrderRoom returns the broadcast room for this order
func (o *Order) OrderRoom() string {
	return OrderRoom(o.ID)
}

// ShopRoom builds the room id for a shop
func ShopRoom(shopID string) string {
	return "shop-" + shopID
}

// OrderRoom builds the room id for an order
func OrderRoom(orderID string) string {
	return "order-" + orderID
}
