package billing

import (
	"context"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/scanning"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/store"
)

// Deps are the collaborators shared by both views
type Deps struct {
	Store     store.Store // nil when no persistence API is configured
	Identity  session.Provider
	Drafts    Drafts
	Navigator Navigator
	Notifier  Notifier
	Scanner   scanning.Scanner // optional
}

// EmployeeView is what a signed-in employee works with: their bill list
// and the new bill pipeline
type EmployeeView struct {
	list       *Manager
	submission *Submission
	nav        Navigator
}

// NewEmployeeView composes the employee workflows
func NewEmployeeView(deps Deps) *EmployeeView {
	return &EmployeeView{
		list:       NewManager(deps.Store),
		submission: NewSubmissionWithDeps(deps.Store, deps.Identity, deps.Drafts, deps.Navigator, deps.Notifier, deps.Scanner, bill.ValidateAttachment),
		nav:        deps.Navigator,
	}
}

// Bills returns the employee's bills, latest first
func (v *EmployeeView) Bills(ctx context.Context) ([]bill.Display, bool, error) {
	bills, ok, err := v.list.GetBills(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	bill.SortLatestFirst(bills)
	return bills, true, nil
}

// NewBill opens the new bill form
func (v *EmployeeView) NewBill() {
	v.nav.Navigate(RouteNewBill)
}

// Submission returns the new bill pipeline
func (v *EmployeeView) Submission() *Submission {
	return v.submission
}

// AdminReviewView is what a signed-in administrator works with: the
// dashboard and the accept/refuse decision
type AdminReviewView struct {
	review *AdminReview
}

// NewAdminReviewView composes the review workflow. It refuses identities
// that are not administrators.
func NewAdminReviewView(deps Deps) (*AdminReviewView, error) {
	who, err := deps.Identity.Identity()
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	return &AdminReviewView{review: NewAdminReview(deps.Store, deps.Navigator)}, nil
}

// Dashboard loads every bill and buckets it by status
func (v *AdminReviewView) Dashboard(ctx context.Context) (Dashboard, bool, error) {
	bills, ok, err := v.review.Load(ctx)
	if err != nil || !ok {
		return Dashboard{}, ok, err
	}
	return BuildDashboard(bills), true, nil
}

// Accept accepts the pending bill with the given ID
func (v *AdminReviewView) Accept(ctx context.Context, id string) (bill.Bill, error) {
	b, err := v.find(ctx, id)
	if err != nil {
		return bill.Bill{}, err
	}
	return v.review.Accept(ctx, b)
}

// Refuse refuses the pending bill with the given ID
func (v *AdminReviewView) Refuse(ctx context.Context, id string) (bill.Bill, error) {
	b, err := v.find(ctx, id)
	if err != nil {
		return bill.Bill{}, err
	}
	return v.review.Refuse(ctx, b)
}

func (v *AdminReviewView) find(ctx context.Context, id string) (bill.Bill, error) {
	bills, ok, err := v.review.Load(ctx)
	if err != nil {
		return bill.Bill{}, err
	}
	if !ok {
		return bill.Bill{}, ErrNoRepository
	}
	for _, b := range bills {
		if b.ID == id {
			return b, nil
		}
	}
	return bill.Bill{}, ErrBillNotFound
}
