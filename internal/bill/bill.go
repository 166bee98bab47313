package bill

// Status is the review state of a bill
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Statuses lists every review state in dashboard order
var Statuses = []Status{StatusPending, StatusAccepted, StatusRefused}

// IsTerminal reports whether no further transition is allowed from s
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRefused
}

// IsValid reports whether s is one of the known review states
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// DefaultPct is the VAT rate applied when a bill carries none
const DefaultPct = 20

// ExpenseTypes are the suggested categories offered on the new bill form.
// The type field is free-form; these are not enforced.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// Bill is an expense report record as stored by the persistence API.
// Field names match the API schema.
type Bill struct {
	ID         string `json:"id,omitempty"`
	Email      string `json:"email"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Amount     Amount `json:"amount"`
	Date       string `json:"date"` // ISO 8601, may be malformed in stored data
	VAT        string `json:"vat"`
	Pct        int    `json:"pct"`
	Commentary string `json:"commentary"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
	Status     Status `json:"status"`
}

// RawDate returns the stored date string, unformatted
func (b Bill) RawDate() string {
	return b.Date
}

// PctOrDefault returns the bill's VAT rate, or DefaultPct when unset
func (b Bill) PctOrDefault() int {
	if b.Pct == 0 {
		return DefaultPct
	}
	return b.Pct
}
