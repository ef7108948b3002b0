package models

import (
	"time"
)

// OrderFile represents a file attached to an uploaded-files order.
// Files are owned exclusively by their order and cascade-deleted with it.
type OrderFile struct {
	ID           string    `db:"id" json:"id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	OriginalName string    `db:"original_name" json:"original_name"`
	StoragePath  string    `db:"storage_path" json:"storage_path"`
	Size         int64     `db:"size" json:"size"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FileInput describes an uploaded file as supplied by the caller. The blob
// itself already lives in the storage collaborator at StoragePath.
type FileInput struct {
	OriginalName string `json:"original_name"`
	StoragePath  string `json:"storage_path"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
}

// NewOrderFile creates a file record for the given order
func NewOrderFile(orderID string, input FileInput) *OrderFile {
	return &OrderFile{
		ID:           GenerateID("file"),
		OrderID:      orderID,
		OriginalName: input.OriginalName,
		StoragePath:  input.StoragePath,
		Size:         input.Size,
		MimeType:     input.MimeType,
		CreatedAt:    GetCurrentTime(),
	}
}
