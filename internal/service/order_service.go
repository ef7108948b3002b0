package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/internal/repository"
	apperrors "github.com/printhub/realtime-api/pkg/errors"
	"github.com/printhub/realtime-api/pkg/logger"
)

// OrderStore is the order store adapter the coordinator writes through
type OrderStore interface {
	CreateWithFiles(ctx context.Context, order *models.Order, files []*models.OrderFile) error
	MutateLocked(ctx context.Context, orderID string, mutate func(*models.Order) (*models.Order, error)) (*models.Order, error)
	AddFiles(ctx context.Context, orderID string, prepare func(*models.Order) ([]*models.OrderFile, error)) (*models.Order, []*models.OrderFile, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByShopID(ctx context.Context, shopID string, limit, offset int) ([]*models.Order, error)
}

// FileStore reads file rows attached to orders
type FileStore interface {
	GetByOrderID(ctx context.Context, orderID string) ([]*models.OrderFile, error)
}

// Publisher pushes an event to every session in a room
type Publisher interface {
	Publish(roomID string, event models.Event)
}

// FileVerifier checks that an uploaded file's storage path refers to a real object
type FileVerifier interface {
	VerifyObject(ctx context.Context, storagePath string) error
}

// EventMirror forwards committed events to a downstream sink
type EventMirror interface {
	Mirror(event models.Event)
}

// CreateOrderInput carries everything needed to create an order
type CreateOrderInput struct {
	ShopID        string
	CustomerName  string
	CustomerPhone string
	OrderType     models.OrderType
	Description   string
	Files         []models.FileInput
}

// OrderService coordinates order writes: it validates input, commits through
// the store adapter, and only after a successful commit publishes the
// resulting event. Consumers never observe an event for a state the store
// does not yet reflect.
type OrderService struct {
	orders    OrderStore
	files     FileStore
	publisher Publisher
	verifier  FileVerifier
	mirror    EventMirror
	txTimeout time.Duration
	logger    logger.Logger
}

// NewOrderService creates a new OrderService. verifier and mirror may be nil.
func NewOrderService(
	orders OrderStore,
	files FileStore,
	publisher Publisher,
	verifier FileVerifier,
	mirror EventMirror,
	txTimeout time.Duration,
	logger logger.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		files:     files,
		publisher: publisher,
		verifier:  verifier,
		mirror:    mirror,
		txTimeout: txTimeout,
		logger:    logger,
	}
}

// CreateOrder validates the input, commits the order row and all file rows in
// one transaction, then publishes a new-order event to the shop's room.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	if s.verifier != nil {
		for _, file := range input.Files {
			if err := s.verifier.VerifyObject(ctx, file.StoragePath); err != nil {
				return nil, err
			}
		}
	}

	order := models.NewOrder(input.ShopID, input.CustomerName, input.CustomerPhone, input.OrderType, input.Description)

	files := make([]*models.OrderFile, 0, len(input.Files))
	for _, file := range input.Files {
		files = append(files, models.NewOrderFile(order.ID, file))
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	if err := s.orders.CreateWithFiles(txCtx, order, files); err != nil {
		s.logger.Error("Failed to persist order", "error", err, "orderID", order.ID)
		return nil, s.mapStoreError(err)
	}

	if len(files) > 0 {
		order.Files = files
	}

	s.logger.Info("Order created", "orderID", order.ID, "shopID", order.ShopID, "type", order.OrderType, "files", len(files))

	event := models.NewOrderEvent(order)
	s.publisher.Publish(order.ShopRoom(), event)
	s.mirrorEvent(event)

	return order, nil
}

// UpdateStatus applies a validated status transition through the state
// machine and publishes order-updated to the shop's room after commit.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, target models.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, apperrors.NewValidationError("unknown status: " + string(target))
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	order, err := s.orders.MutateLocked(txCtx, orderID, func(current *models.Order) (*models.Order, error) {
		return models.ApplyTransition(current, target)
	})

	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.attachFiles(ctx, order)

	s.logger.Info("Order status updated", "orderID", order.ID, "status", order.Status)

	event := models.OrderUpdatedEvent(order)
	s.publisher.Publish(order.ShopRoom(), event)
	s.mirrorEvent(event)

	return order, nil
}

// ToggleUrgency flips the urgency flag of a non-terminal order and publishes
// order-updated to the shop's room after commit.
func (s *OrderService) ToggleUrgency(ctx context.Context, orderID string) (*models.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	order, err := s.orders.MutateLocked(txCtx, orderID, models.ToggleUrgency)

	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.attachFiles(ctx, order)

	s.logger.Info("Order urgency toggled", "orderID", order.ID, "urgent", order.IsUrgent)

	event := models.OrderUpdatedEvent(order)
	s.publisher.Publish(order.ShopRoom(), event)
	s.mirrorEvent(event)

	return order, nil
}

// AddFiles attaches additional files to an existing uploaded-files order and
// publishes order-files-uploaded to both the shop room and the order room.
func (s *OrderService) AddFiles(ctx context.Context, orderID string, inputs []models.FileInput) (*models.Order, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewMissingFilesError("at least one file is required")
	}

	if err := validateFileInputs(inputs); err != nil {
		return nil, err
	}

	if s.verifier != nil {
		for _, file := range inputs {
			if err := s.verifier.VerifyObject(ctx, file.StoragePath); err != nil {
				return nil, err
			}
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	order, files, err := s.orders.AddFiles(txCtx, orderID, func(current *models.Order) ([]*models.OrderFile, error) {
		if current.OrderType != models.OrderTypeUploadedFiles {
			return nil, apperrors.NewValidationError("only uploaded-files orders may have files")
		}

		if current.Status.IsTerminal() {
			return nil, apperrors.NewOrderTerminalError("cannot attach files to " + string(current.Status) + " order " + current.ID)
		}

		prepared := make([]*models.OrderFile, 0, len(inputs))
		for _, input := range inputs {
			prepared = append(prepared, models.NewOrderFile(current.ID, input))
		}
		return prepared, nil
	})

	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.attachFiles(ctx, order)

	s.logger.Info("Order files uploaded", "orderID", order.ID, "count", len(files))

	event := models.OrderFilesUploadedEvent(order.ID, files)
	s.publisher.Publish(order.ShopRoom(), event)
	s.publisher.Publish(order.OrderRoom(), event)
	s.mirrorEvent(event)

	return order, nil
}

// GetOrder retrieves an order with its files
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)

	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.attachFiles(ctx, order)
	return order, nil
}

// GetShopOrders retrieves a shop's orders with pagination, newest first
func (s *OrderService) GetShopOrders(ctx context.Context, shopID string, limit, offset int) ([]*models.Order, error) {
	orders, err := s.orders.GetByShopID(ctx, shopID, limit, offset)

	if err != nil {
		return nil, s.mapStoreError(err)
	}

	return orders, nil
}

// attachFiles loads the file rows for uploaded-files orders. A read failure
// here does not fail the committed operation.
func (s *OrderService) attachFiles(ctx context.Context, order *models.Order) {
	if order.OrderType != models.OrderTypeUploadedFiles {
		return
	}

	files, err := s.files.GetByOrderID(ctx, order.ID)

	if err != nil {
		s.logger.Warn("Failed to load order files", "error", err, "orderID", order.ID)
		return
	}

	order.Files = files
}

func (s *OrderService) mirrorEvent(event models.Event) {
	if s.mirror == nil {
		return
	}

	s.mirror.Mirror(event)
}

// mapStoreError translates store adapter errors into the domain taxonomy.
// Domain errors raised inside a locked mutation pass through unchanged.
func (s *OrderService) mapStoreError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFoundError("order not found")
	}

	return apperrors.NewPersistenceError("order store operation failed: " + err.Error())
}

func validateCreateInput(input CreateOrderInput) error {
	if strings.TrimSpace(input.ShopID) == "" {
		return apperrors.NewValidationError("shop id is required")
	}

	if strings.TrimSpace(input.CustomerName) == "" {
		return apperrors.NewValidationError("customer name is required")
	}

	if strings.TrimSpace(input.CustomerPhone) == "" {
		return apperrors.NewValidationError("customer phone is required")
	}

	if !input.OrderType.IsValid() {
		return apperrors.NewValidationError("unknown order type: " + string(input.OrderType))
	}

	if input.OrderType == models.OrderTypeUploadedFiles && len(input.Files) == 0 {
		return apperrors.NewMissingFilesError("uploaded-files order requires at least one file")
	}

	if input.OrderType == models.OrderTypeWalkIn && len(input.Files) > 0 {
		return apperrors.NewValidationError("walk-in orders cannot have files")
	}

	return validateFileInputs(input.Files)
}

func validateFileInputs(files []models.FileInput) error {
	for _, file := range files {
		if strings.TrimSpace(file.OriginalName) == "" {
			return apperrors.NewValidationError("file original name is required")
		}

		if strings.TrimSpace(file.StoragePath) == "" {
			return apperrors.NewValidationError("file storage path is required")
		}

		if file.Size <= 0 {
			return apperrors.NewValidationError("file size must be positive")
		}
	}

	return nil
}
