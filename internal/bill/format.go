package bill

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Display is a bill ready for rendering. The embedded Bill keeps the raw
// stored values so callers can sort on them.
type Display struct {
	Bill
	FormattedDate   string `json:"formattedDate"`
	FormattedAmount string `json:"formattedAmount"`
	StatusLabel     string `json:"statusLabel"`
}

// ToDisplay formats a stored bill. It never fails: a malformed date is
// passed through as-is. A missing VAT rate is shown as DefaultPct.
func ToDisplay(b Bill) Display {
	b.Pct = b.PctOrDefault()
	return Display{
		Bill:            b,
		FormattedDate:   FormatDate(b.Date),
		FormattedAmount: FormatAmount(b.Amount),
		StatusLabel:     StatusLabel(b.Status),
	}
}

// StatusLabel maps a status to its French label. Unknown values are
// labelled as refused.
func StatusLabel(s Status) string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	default:
		return "Refusé"
	}
}

// FormatAmount renders an amount in euros, e.g. "100 €" or "12.5 €"
func FormatAmount(amount Amount) string {
	return amount.String() + " €"
}

var shortMonths = [12]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// FormatDate renders an ISO date as "1 Jan. 24". If raw cannot be parsed
// it is returned unchanged.
func FormatDate(raw string) string {
	t, ok := parseDate(raw)
	if !ok {
		return raw
	}

	// Caser is stateful, so one per call
	month := []rune(cases.Title(language.French).String(shortMonths[t.Month()-1]))
	if len(month) > 3 {
		month = month[:3]
	}

	return fmt.Sprintf("%d %s. %02d", t.Day(), string(month), t.Year()%100)
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.Year() < 1 {
				return time.Time{}, false
			}
			return t, true
		}
	}
	return time.Time{}, false
}
