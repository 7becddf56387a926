// Package filter narrows an edited record set with per-field,
// case-insensitive substring predicates.
package filter

import (
	"sort"
	"strings"

	"github.com/imgajeed76/sheetview/internal/record"
)

// Spec maps a field name to its filter text. A field that is missing or
// mapped to "" imposes no constraint.
type Spec map[string]string

// Active returns the fields with non-empty filter text, sorted by name.
func (s Spec) Active() []string {
	var fields []string
	for field, text := range s {
		if text != "" {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

// IsEmpty reports whether no field is active.
func (s Spec) IsEmpty() bool {
	for _, text := range s {
		if text != "" {
			return false
		}
	}
	return true
}

// With returns a copy of s with field set to text. Setting "" removes
// the field.
func (s Spec) With(field, text string) Spec {
	next := make(Spec, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	if text == "" {
		delete(next, field)
	} else {
		next[field] = text
	}
	return next
}

// Equal reports whether both specs constrain the same fields the same way.
func (s Spec) Equal(o Spec) bool {
	a, b := s.Active(), o.Active()
	if len(a) != len(b) {
		return false
	}
	for i, field := range a {
		if b[i] != field || s[field] != o[field] {
			return false
		}
	}
	return true
}

// Matches reports whether r passes every active field predicate. A
// field's value is compared through its string form, so absent fields
// match against "undefined".
func (s Spec) Matches(r *record.Record) bool {
	for field, text := range s {
		if text == "" {
			continue
		}
		value := strings.ToLower(r.Get(field).String())
		if !strings.Contains(value, strings.ToLower(text)) {
			return false
		}
	}
	return true
}

// Apply returns the records of edited that match spec, in edited's
// insertion order. An empty spec returns edited itself.
func Apply(edited *record.Set, spec Spec) *record.Set {
	if spec.IsEmpty() {
		return edited
	}

	var kept []record.Entry
	edited.Each(func(e record.Entry) bool {
		if spec.Matches(e.Record) {
			kept = append(kept, e)
		}
		return true
	})
	return record.NewSet(kept)
}
