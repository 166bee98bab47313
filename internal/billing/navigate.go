// Package billing holds the employee and administrator bill workflows:
// listing, review and submission.
package billing

import (
	"errors"

	"github.com/zombor/billed/internal/session"
)

// Routes understood by the surrounding shell
const (
	RouteLogin     = "/"
	RouteBills     = "#employee/bills"
	RouteNewBill   = "#employee/bill/new"
	RouteDashboard = "#admin/dashboard"
)

var (
	// ErrNoRepository is returned by operations that cannot run without a persistence API
	ErrNoRepository = errors.New("no repository configured")

	// ErrNotPending is returned when accepting or refusing a bill that was already decided
	ErrNotPending = errors.New("bill is not pending")

	// ErrMissingAttachment is returned when a bill is submitted before a valid receipt was uploaded
	ErrMissingAttachment = errors.New("a receipt (jpg, jpeg, png or webp) is required")

	// ErrForbidden is returned when a non-admin identity asks for the review workflow
	ErrForbidden = errors.New("administrator access required")

	// ErrBillNotFound is returned when no visible bill has the requested ID
	ErrBillNotFound = errors.New("bill not found")
)

// Navigator swaps the displayed view
type Navigator interface {
	Navigate(route string)
}

// Notifier shows a message to the user
type Notifier interface {
	Notify(message string)
}

// HomeRoute is the first view shown to an identity after sign-in
func HomeRoute(identity session.Identity) string {
	if identity.IsAdmin() {
		return RouteDashboard
	}
	return RouteBills
}
