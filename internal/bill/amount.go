package bill

import (
	"github.com/shopspring/decimal"
)

// Amount is a sum in euros. Stored records carry it as an integer or a
// decimal, sometimes quoted; it is always written back as a JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns a whole number of euros
func NewAmount(euros int64) Amount {
	return Amount{decimal.NewFromInt(euros)}
}

// AmountFromFloat converts a float reading, rounded to the cent
func AmountFromFloat(euros float64) Amount {
	return Amount{decimal.NewFromFloat(euros).Round(2)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}
