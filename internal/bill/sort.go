package bill

import (
	"slices"
	"strings"
)

// Dated is anything carrying a raw ISO date
type Dated interface {
	RawDate() string
}

// SortLatestFirst orders items by their raw ISO date, newest first.
// ISO strings compare correctly as plain strings; malformed dates land
// wherever byte order puts them. The sort is stable, so equal dates keep
// their source order and sorting twice changes nothing.
func SortLatestFirst[T Dated](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return strings.Compare(b.RawDate(), a.RawDate())
	})
}
