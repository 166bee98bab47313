package billing

import (
	"context"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/store"
)

// Manager fetches the signed-in employee's bills ready for display
type Manager struct {
	store store.Store
}

// NewManager creates a Manager. s may be nil when no persistence API is
// configured.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// GetBills lists and formats every visible bill, in the order the API
// returned them. A record with a malformed date is kept with its raw date.
//
// ok is false when no store is configured; nothing is fetched in that case.
// Errors from the store are returned unwrapped.
func (m *Manager) GetBills(ctx context.Context) (bills []bill.Display, ok bool, err error) {
	if m.store == nil {
		return nil, false, nil
	}

	raw, err := m.store.List(ctx)
	if err != nil {
		return nil, true, err
	}

	bills = make([]bill.Display, 0, len(raw))
	for _, b := range raw {
		bills = append(bills, bill.ToDisplay(b))
	}
	return bills, true, nil
}
