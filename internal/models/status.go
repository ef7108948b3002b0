package models

import (
	apperrors "github.com/printhub/realtime-api/pkg/errors"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusReady      OrderStatus = "ready"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// nextStatus maps each status to its single forward successor.
// Terminal statuses have no entry.
var nextStatus = map[OrderStatus]OrderStatus{
	StatusNew:        StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusReady,
	StatusReady:      StatusCompleted,
}

// IsValid reports whether the status is one of the known values
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusConfirmed, StatusProcessing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether target is reachable from current in a single
// step: either the forward successor, or cancellation of a non-terminal order.
func CanTransition(current, target OrderStatus) bool {
	if target == StatusCancelled {
		return !current.IsTerminal() && current.IsValid()
	}

	return nextStatus[current] == target
}

// ApplyTransition returns a copy of the order with the target status applied
// and updated_at refreshed. It performs no I/O.
func ApplyTransition(order *Order, target OrderStatus) (*Order, error) {
	if !CanTransition(order.Status, target) {
		return nil, apperrors.NewInvalidTransitionError(
			"cannot transition order from " + string(order.Status) + " to " + string(target))
	}

	updated := *order
	updated.Status = target
	updated.UpdatedAt = GetCurrentTime()
	return &updated, nil
}

// ToggleUrgency returns a copy of the order with the urgency flag flipped.
// Urgency is orthogonal to status but frozen once the order is terminal.
func ToggleUrgency(order *Order) (*Order, error) {
	if order.Status.IsTerminal() {
		return nil, apperrors.NewOrderTerminalError(
			"cannot change urgency of " + string(order.Status) + " order " + order.ID)
	}

	updated := *order
	updated.IsUrgent = !order.IsUrgent
	updated.UpdatedAt = GetCurrentTime()
	return &updated, nil
}
