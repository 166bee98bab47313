package scanning

import "context"

// ReceiptData contains the bill fields read from a receipt image
type ReceiptData struct {
	Name   string  `json:"name"`
	Date   string  `json:"date"`   // ISO 8601, empty when unreadable
	Amount float64 `json:"amount"` // euros
}

// Scanner reads a receipt image and suggests new bill fields
type Scanner interface {
	// ScanReceipt analyzes a receipt image and extracts bill fields
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error)
	// Close releases resources held by the scanner
	Close() error
}
