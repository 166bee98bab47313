package billing

import (
	"context"
	"fmt"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/store"
)

// FilteredBills returns the bills with the given status, in their original order
func FilteredBills(bills []bill.Bill, status bill.Status) []bill.Bill {
	filtered := make([]bill.Bill, 0)
	for _, b := range bills {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// Card is a bill as shown on the review dashboard
type Card struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Date      string      `json:"date"`
	Amount    string      `json:"amount"`
	Status    bill.Status `json:"status"`
}

// NewCard formats b for the dashboard
func NewCard(b bill.Bill) Card {
	first, last := bill.EmployeeName(b.Email)
	return Card{
		ID:        b.ID,
		FirstName: first,
		LastName:  last,
		Name:      b.Name,
		Type:      b.Type,
		Date:      bill.FormatDate(b.Date),
		Amount:    bill.FormatAmount(b.Amount),
		Status:    b.Status,
	}
}

// Section is one status bucket of the dashboard
type Section struct {
	Status bill.Status `json:"status"`
	Title  string      `json:"title"`
	Count  int         `json:"count"`
	Cards  []Card      `json:"cards"`
}

// Heading renders the section title with its count, e.g. "En attente (1)"
func (s Section) Heading() string {
	return fmt.Sprintf("%s (%d)", s.Title, s.Count)
}

// Dashboard groups bills into the pending, accepted and refused buckets
type Dashboard struct {
	Sections []Section `json:"sections"`
}

// BuildDashboard buckets bills by status. Each bucket is FilteredBills for
// its status, so bucket counts always match it.
func BuildDashboard(bills []bill.Bill) Dashboard {
	sections := make([]Section, 0, len(bill.Statuses))
	for _, status := range bill.Statuses {
		filtered := FilteredBills(bills, status)
		cards := make([]Card, 0, len(filtered))
		for _, b := range filtered {
			cards = append(cards, NewCard(b))
		}
		sections = append(sections, Section{
			Status: status,
			Title:  bill.StatusLabel(status),
			Count:  len(filtered),
			Cards:  cards,
		})
	}
	return Dashboard{Sections: sections}
}

// Section returns the bucket for status
func (d Dashboard) Section(status bill.Status) (Section, bool) {
	for _, s := range d.Sections {
		if s.Status == status {
			return s, true
		}
	}
	return Section{}, false
}

// AdminReview drives the accept/refuse decision on pending bills
type AdminReview struct {
	store store.Store
	nav   Navigator
}

// NewAdminReview creates an AdminReview. s may be nil when no persistence
// API is configured.
func NewAdminReview(s store.Store, nav Navigator) *AdminReview {
	return &AdminReview{store: s, nav: nav}
}

// Load returns every bill of every employee, unformatted. ok is false when
// no store is configured.
func (a *AdminReview) Load(ctx context.Context) (bills []bill.Bill, ok bool, err error) {
	if a.store == nil {
		return nil, false, nil
	}
	bills, err = a.store.List(ctx)
	if err != nil {
		return nil, true, err
	}
	return bills, true, nil
}

// Accept marks a pending bill as accepted and returns to the dashboard
func (a *AdminReview) Accept(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	return a.decide(ctx, b, bill.StatusAccepted)
}

// Refuse marks a pending bill as refused and returns to the dashboard
func (a *AdminReview) Refuse(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	return a.decide(ctx, b, bill.StatusRefused)
}

// decide changes only the status. The admin lands on the dashboard, never
// back on the bill form.
func (a *AdminReview) decide(ctx context.Context, b bill.Bill, to bill.Status) (bill.Bill, error) {
	if b.Status.IsTerminal() || !b.Status.IsValid() {
		return bill.Bill{}, fmt.Errorf("%w: %s is %s", ErrNotPending, b.ID, b.Status)
	}

	b.Status = to
	if a.store != nil {
		updated, err := a.store.Update(ctx, b)
		if err != nil {
			return bill.Bill{}, err
		}
		b = updated
	}

	a.nav.Navigate(RouteDashboard)
	return b, nil
}
