// Package order arranges a filtered record set by a single field with a
// tri-state (none, ascending, descending) sort.
//
// Values are compared through their string form with locale-aware
// collation, so a column mixing numbers, strings and absent fields still
// has a total order. Numbers therefore sort as text ("100" < "25").
package order

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
)

// Direction is the active sort direction for a field.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// Spec is the optional (field, direction) pair. The zero Spec is unset.
type Spec struct {
	Field     string
	Direction Direction
}

// IsSet reports whether s reorders anything.
func (s Spec) IsSet() bool {
	return s.Field != "" && s.Direction != None
}

// Toggle advances the sort for field through the cycle
// unset → ascending → descending → unset. Selecting a field other than
// the current one starts it at ascending.
func (s Spec) Toggle(field string) Spec {
	if field != s.Field {
		return Spec{Field: field, Direction: Ascending}
	}
	switch s.Direction {
	case None:
		return Spec{Field: field, Direction: Ascending}
	case Ascending:
		return Spec{Field: field, Direction: Descending}
	default:
		return Spec{Field: field, Direction: None}
	}
}

// Indicator is the header marker for a field: "v" ascending, "^"
// descending, "" otherwise.
func (s Spec) Indicator(field string) string {
	if field != s.Field {
		return ""
	}
	switch s.Direction {
	case Ascending:
		return "v"
	case Descending:
		return "^"
	}
	return ""
}

// Parse reads "field", "field:asc" or "field:desc". A bare field sorts
// ascending; "" is the unset spec.
func Parse(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, nil
	}
	field, dir, found := strings.Cut(s, ":")
	if field == "" {
		return Spec{}, fmt.Errorf("%w: sort %q has no field", util.ErrInvalidValue, s)
	}
	if !found {
		return Spec{Field: field, Direction: Ascending}, nil
	}
	switch strings.ToLower(dir) {
	case "asc", "ascending":
		return Spec{Field: field, Direction: Ascending}, nil
	case "desc", "descending":
		return Spec{Field: field, Direction: Descending}, nil
	}
	return Spec{}, fmt.Errorf("%w: sort direction %q (want asc or desc)", util.ErrInvalidValue, dir)
}

// Apply returns the entries of visible arranged by spec. With no active
// sort the result is visible's insertion order. Ascending puts the
// collation-smaller value first. Equal values keep their input order.
// Records themselves are never modified.
func Apply(visible *record.Set, spec Spec) []record.Entry {
	entries := visible.Entries()
	if !spec.IsSet() || len(entries) < 2 {
		return entries
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Record.Get(spec.Field).String()
	}

	c := collate.New(language.Und)
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		cmp := c.CompareString(keys[idx[a]], keys[idx[b]])
		if spec.Direction == Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	out := make([]record.Entry, len(entries))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}
