package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/billing"
)

// terminal is the CLI shell: it prints where the workflows send the user
// and shows notifications on stderr
type terminal struct {
	out   io.Writer
	err   io.Writer
	route string
}

func (t *terminal) Navigate(route string) {
	t.route = route
	fmt.Fprintf(t.out, "→ %s\n", route)
}

func (t *terminal) Notify(message string) {
	fmt.Fprintln(t.err, message)
}

// follow renders the view the last navigation pointed at
func (a *app) follow(ctx context.Context) error {
	switch a.term.route {
	case billing.RouteBills:
		return a.showBills(ctx)
	case billing.RouteDashboard:
		return a.showDashboard(ctx, "")
	}
	return nil
}

func renderBills(w io.Writer, bills []bill.Display) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tDATE\tAMOUNT\tSTATUS")
	for _, b := range bills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Type, b.Name, b.FormattedDate, b.FormattedAmount, b.StatusLabel)
	}
	return tw.Flush()
}

func renderDashboard(w io.Writer, dashboard billing.Dashboard, only bill.Status) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, section := range dashboard.Sections {
		if only != "" && section.Status != only {
			continue
		}
		fmt.Fprintf(tw, "%s\n", section.Heading())
		for _, c := range section.Cards {
			fmt.Fprintf(tw, "  %s\t%s %s\t%s\t%s\t%s\t%s\n", c.ID, c.FirstName, c.LastName, c.Name, c.Type, c.Date, c.Amount)
		}
	}
	return tw.Flush()
}
