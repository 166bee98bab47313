package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/billing"
	"github.com/zombor/billed/internal/session"
)

// formFlags are the new bill form fields
type formFlags struct {
	typ        *string
	name       *string
	date       *string
	amount     *string
	vat        *string
	pct        *string
	commentary *string
}

func addFormFlags(fs *ff.FlagSet) *formFlags {
	return &formFlags{
		typ:        fs.StringLong("type", bill.ExpenseTypes[0], "Expense type"),
		name:       fs.StringLong("name", "", "Expense name"),
		date:       fs.StringLong("date", "", "Expense date (YYYY-MM-DD)"),
		amount:     fs.StringLong("amount", "", "Amount in euros, digits only"),
		vat:        fs.StringLong("vat", "", "VAT amount"),
		pct:        fs.StringLong("pct", "", "VAT rate in percent (default 20)"),
		commentary: fs.StringLong("commentary", "", "Free text commentary"),
	}
}

func (f *formFlags) form() billing.Form {
	return billing.Form{
		Type:       *f.typ,
		Name:       *f.name,
		Date:       *f.date,
		Amount:     *f.amount,
		VAT:        *f.vat,
		Pct:        *f.pct,
		Commentary: *f.commentary,
	}
}

func (a *app) sessionCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("session").SetParent(parent)
	email := fs.StringLong("email", "", "Signed-in user email")
	role := fs.StringLong("type", string(session.RoleEmployee), "Account type: Employee or Admin")
	token := fs.StringLong("jwt", "", "API token (optional)")

	return &ff.Command{
		Name:      "session",
		Usage:     "billed session --email <email> [--type Employee|Admin] [--jwt <token>]",
		ShortHelp: "record the signed-in user",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			identity := session.Identity{Type: session.Role(*role), Email: *email}
			if identity.Type != session.RoleEmployee && identity.Type != session.RoleAdmin {
				return fmt.Errorf("invalid account type %q: want Employee or Admin", *role)
			}
			if identity.Email == "" && *token != "" {
				var err error
				if identity, err = session.TokenIdentity(*token); err != nil {
					return err
				}
			}
			if identity.Email == "" {
				return errors.New("--email is required")
			}

			if err := a.open(ctx); err != nil {
				return err
			}
			if err := a.session.SetUser(identity); err != nil {
				return err
			}
			if *token != "" {
				if err := a.session.SetToken(*token); err != nil {
					return err
				}
			}
			slog.Info("Session recorded", "email", identity.Email, "type", identity.Type)
			a.term.Navigate(billing.HomeRoute(identity))
			return nil
		},
	}
}

func (a *app) billsCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("bills").SetParent(parent)
	return &ff.Command{
		Name:      "bills",
		Usage:     "billed bills",
		ShortHelp: "list your bills, latest first",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if err := a.open(ctx); err != nil {
				return err
			}
			return a.showBills(ctx)
		},
	}
}

func (a *app) showBills(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	bills, ok, err := billing.NewEmployeeView(a.deps()).Bills(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return billing.ErrNoRepository
	}
	return renderBills(a.term.out, bills)
}

func (a *app) newBillCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("new-bill").SetParent(parent)
	file := fs.StringLong("file", "", "Receipt image (jpg, jpeg, png or webp)")
	form := addFormFlags(fs)

	return &ff.Command{
		Name:      "new-bill",
		Usage:     "billed new-bill --file <receipt> [FORM FLAGS]",
		ShortHelp: "upload a receipt and submit a bill",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if *file == "" {
				return errors.New("--file is required")
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			view := billing.NewEmployeeView(a.deps())
			view.NewBill()

			accepted, err := a.attach(ctx, view, *file)
			if err != nil || !accepted {
				return err
			}
			return a.submit(ctx, view, form.form())
		},
	}
}

func (a *app) attachCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("attach").SetParent(parent)
	return &ff.Command{
		Name:      "attach",
		Usage:     "billed attach <receipt>",
		ShortHelp: "upload the receipt of the bill being written",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("attach takes exactly one receipt path")
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			_, err := a.attach(ctx, billing.NewEmployeeView(a.deps()), args[0])
			return err
		},
	}
}

func (a *app) attach(ctx context.Context, view *billing.EmployeeView, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading receipt: %w", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	draft, accepted, err := view.Submission().SelectFile(ctx, path, data)
	if err != nil || !accepted {
		return accepted, err
	}

	out := json.NewEncoder(a.term.out)
	out.SetIndent("", "  ")
	return true, out.Encode(draft)
}

func (a *app) submitCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("submit").SetParent(parent)
	form := addFormFlags(fs)
	return &ff.Command{
		Name:      "submit",
		Usage:     "billed submit [FORM FLAGS]",
		ShortHelp: "submit the bill for the uploaded receipt",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if err := a.open(ctx); err != nil {
				return err
			}
			return a.submit(ctx, billing.NewEmployeeView(a.deps()), form.form())
		},
	}
}

func (a *app) submit(ctx context.Context, view *billing.EmployeeView, form billing.Form) error {
	sctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := view.Submission().Submit(sctx, form); err != nil {
		return err
	}
	return a.follow(ctx)
}

func (a *app) dashboardCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("dashboard").SetParent(parent)
	status := fs.StringLong("status", "", "Only show one bucket: pending, accepted or refused")
	return &ff.Command{
		Name:      "dashboard",
		Usage:     "billed dashboard [--status pending|accepted|refused]",
		ShortHelp: "review every employee's bills by status",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			only := bill.Status(*status)
			if only != "" && !only.IsValid() {
				return fmt.Errorf("invalid status %q", *status)
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			return a.showDashboard(ctx, only)
		},
	}
}

func (a *app) showDashboard(ctx context.Context, only bill.Status) error {
	view, err := billing.NewAdminReviewView(a.deps())
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	dashboard, ok, err := view.Dashboard(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return billing.ErrNoRepository
	}
	return renderDashboard(a.term.out, dashboard, only)
}

func (a *app) decideCommand(parent *ff.FlagSet, name string, decide func(*billing.AdminReviewView, context.Context, string) (bill.Bill, error)) *ff.Command {
	fs := ff.NewFlagSet(name).SetParent(parent)
	return &ff.Command{
		Name:      name,
		Usage:     "billed " + name + " <bill id>",
		ShortHelp: name + " a pending bill",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%s takes exactly one bill id", name)
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			view, err := billing.NewAdminReviewView(a.deps())
			if err != nil {
				return err
			}

			dctx, cancel := a.withTimeout(ctx)
			defer cancel()
			if _, err := decide(view, dctx, args[0]); err != nil {
				return err
			}
			return a.follow(ctx)
		},
	}
}

func (a *app) serveCommand(parent *ff.FlagSet) *ff.Command {
	fs := ff.NewFlagSet("serve").SetParent(parent)
	addr := fs.StringLong("addr", ":8080", "HTTP listen address")
	authUser := fs.StringLong("auth-user", "", "Basic auth username (optional)")
	authPass := fs.StringLong("auth-pass", "", "Basic auth password (optional)")

	return &ff.Command{
		Name:      "serve",
		Usage:     "billed serve [--addr :8080] [--auth-user u --auth-pass p]",
		ShortHelp: "serve the bill workflows as a local JSON API",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if err := a.open(ctx); err != nil {
				return err
			}
			server := billing.NewServer(a.deps(), billing.BasicAuth{Username: *authUser, Password: *authPass}, a.registry)

			errc := make(chan error, 1)
			go func() {
				errc <- server.Start(*addr)
			}()

			slog.Info("Server started", "address", *addr)
			if *authUser != "" || *authPass != "" {
				slog.Info("Basic auth enabled", "user", *authUser)
			}

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				slog.Info("Shutting down...")
				return nil
			}
		},
	}
}
