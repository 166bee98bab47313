package bill

import (
	"strconv"
	"strings"
)

// SanitizeAmount masks amount input down to its digits, the way the
// numeric field on the new bill form does
func SanitizeAmount(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseAmount returns the masked amount as an integer. Empty input is 0.
func ParseAmount(input string) int {
	n, err := strconv.Atoi(SanitizeAmount(input))
	if err != nil {
		return 0
	}
	return n
}

// ParsePct returns the VAT rate typed on the form, falling back to DefaultPct
func ParsePct(input string) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n == 0 {
		return DefaultPct
	}
	return n
}

// EmployeeName splits the local part of an email into first and last name.
// "john.doe@x" gives ("john", "doe"); "jdoe@x" gives ("", "jdoe").
func EmployeeName(email string) (first, last string) {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.Split(local, ".")
	if len(parts) < 2 {
		return "", local
	}
	return parts[0], parts[1]
}
