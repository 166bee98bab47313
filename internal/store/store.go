// Package store is the client side of the remote bill persistence API.
package store

import (
	"context"

	"github.com/zombor/billed/internal/bill"
)

// Store defines the bill collection operations offered by the persistence API.
// Role scoping (an employee sees their own bills, an admin sees all) is
// done by the API. Errors are returned to the caller as-is; nothing here
// retries.
type Store interface {
	// List returns every bill visible to the caller
	List(ctx context.Context) ([]bill.Bill, error)

	// Create persists a new bill and returns it with its ID
	Create(ctx context.Context, b bill.Bill) (bill.Bill, error)

	// Update persists a change to an existing bill, addressed by ID
	Update(ctx context.Context, b bill.Bill) (bill.Bill, error)

	// Upload stores a receipt file and returns a reference to it
	Upload(ctx context.Context, u Upload) (Attachment, error)
}

// Upload is a receipt file on its way to the API
type Upload struct {
	FileName    string
	ContentType string
	Email       string
	Data        []byte
}

// Attachment references an uploaded receipt
type Attachment struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Key      string `json:"key"`
}
