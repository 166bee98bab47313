package billing

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/session"
)

var _ = Describe("Views", func() {
	var (
		ctx    context.Context
		remote *mockStore
		nav    *mockNavigator
		deps   Deps
	)

	BeforeEach(func() {
		ctx = context.Background()
		older := pendingBill("old")
		older.Date = "2023-05-10"
		newer := pendingBill("new")
		newer.Date = "2024-02-01"
		accepted := pendingBill("done")
		accepted.Status = bill.StatusAccepted
		remote = &mockStore{bills: []bill.Bill{older, newer, accepted}}
		nav = &mockNavigator{}
		deps = Deps{
			Store:     remote,
			Identity:  session.Static{Type: session.RoleEmployee, Email: "john.doe@billed.test"},
			Drafts:    newMockDrafts(),
			Navigator: nav,
			Notifier:  &mockNotifier{},
		}
	})

	Describe("HomeRoute", func() {
		It("sends admins to the dashboard and employees to their bills", func() {
			Expect(HomeRoute(session.Identity{Type: session.RoleAdmin})).To(Equal(RouteDashboard))
			Expect(HomeRoute(session.Identity{Type: session.RoleEmployee})).To(Equal(RouteBills))
		})
	})

	Describe("EmployeeView", func() {
		It("lists bills latest first", func() {
			bills, ok, err := NewEmployeeView(deps).Bills(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(bills[0].ID).To(Equal("new"))
			Expect(bills[1].ID).To(Equal("done"))
			Expect(bills[2].ID).To(Equal("old"))
		})

		It("returns not ok without a store", func() {
			deps.Store = nil
			bills, ok, err := NewEmployeeView(deps).Bills(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(bills).To(BeNil())
		})

		It("opens the new bill form", func() {
			NewEmployeeView(deps).NewBill()
			Expect(nav.routes).To(Equal([]string{RouteNewBill}))
		})
	})

	Describe("AdminReviewView", func() {
		It("is refused to employees", func() {
			_, err := NewAdminReviewView(deps)
			Expect(err).To(MatchError(ErrForbidden))
		})

		When("the identity is an admin", func() {
			var view *AdminReviewView

			BeforeEach(func() {
				deps.Identity = session.Static{Type: session.RoleAdmin, Email: "admin@billed.test"}
			})

			JustBeforeEach(func() {
				var err error
				view, err = NewAdminReviewView(deps)
				Expect(err).NotTo(HaveOccurred())
			})

			It("builds the dashboard", func() {
				dashboard, ok, err := view.Dashboard(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				pending, _ := dashboard.Section(bill.StatusPending)
				Expect(pending.Count).To(Equal(2))
			})

			It("accepts a pending bill by ID", func() {
				updated, err := view.Accept(ctx, "new")
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.Status).To(Equal(bill.StatusAccepted))
				Expect(nav.routes).To(Equal([]string{RouteDashboard}))
			})

			It("reports an unknown ID", func() {
				_, err := view.Refuse(ctx, "missing")
				Expect(err).To(MatchError(ErrBillNotFound))
				Expect(remote.updated).To(BeEmpty())
			})

			It("refuses to decide twice", func() {
				_, err := view.Refuse(ctx, "done")
				Expect(err).To(MatchError(ErrNotPending))
			})
		})
	})
})
