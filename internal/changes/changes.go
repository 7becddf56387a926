// Package changes lists the cells whose edited value differs from the
// value that was loaded, and renders them as inline character diffs.
package changes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/ui/styles"
)

// Change is one edited cell.
type Change struct {
	ID     record.ID
	Field  string
	Before record.Value
	After  record.Value
}

// Compute returns every cell of edited that differs from loaded, in
// edited's row order. Fields are visited in columns order first, then
// any field the edit added. Values compare by kind and string form.
func Compute(loaded, edited *record.Set, columns []string) []Change {
	var out []Change
	edited.Each(func(e record.Entry) bool {
		before, ok := loaded.Get(e.ID)
		if !ok {
			before = record.New()
		}
		// unchanged records are shared with the loaded set
		if before == e.Record {
			return true
		}

		for _, field := range fieldsOf(e.Record, columns) {
			b, a := before.Get(field), e.Record.Get(field)
			if b.String() != a.String() || b.Kind() != a.Kind() {
				out = append(out, Change{ID: e.ID, Field: field, Before: b, After: a})
			}
		}
		return true
	})
	return out
}

func fieldsOf(r *record.Record, columns []string) []string {
	fields := slices.Clone(columns)
	for _, k := range r.Keys() {
		if !slices.Contains(columns, k) {
			fields = append(fields, k)
		}
	}
	return fields
}

// Edited reports whether the cell at (id, field) appears in changes.
func Edited(changes []Change, id record.ID, field string) bool {
	for _, c := range changes {
		if c.ID == id && c.Field == field {
			return true
		}
	}
	return false
}

// Index returns a lookup of edited cells keyed by identity and field.
func Index(changes []Change) map[record.ID]map[string]bool {
	idx := make(map[record.ID]map[string]bool)
	for _, c := range changes {
		if idx[c.ID] == nil {
			idx[c.ID] = make(map[string]bool)
		}
		idx[c.ID][c.Field] = true
	}
	return idx
}

// InlineDiff renders before → after as one string with deletions and
// insertions styled.
func InlineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(styles.Render(styles.DiffEqual, d.Text))
		case diffmatchpatch.DiffInsert:
			sb.WriteString(styles.Render(styles.DiffInsert, d.Text))
		case diffmatchpatch.DiffDelete:
			sb.WriteString(styles.Render(styles.DiffDelete, d.Text))
		}
	}
	return sb.String()
}

// Render lists changes one per line as "id.field: before → after" with
// an inline diff. With colors disabled the diff falls back to
// [-deleted-]{+inserted+} markers.
func Render(changes []Change) string {
	if len(changes) == 0 {
		return styles.MutedMsg("No changes")
	}

	var sb strings.Builder
	for _, c := range changes {
		before, after := c.Before.String(), c.After.String()
		fmt.Fprintf(&sb, "%s.%s: ", styles.ID(string(c.ID)), c.Field)
		if styles.NoColor() {
			sb.WriteString(markerDiff(before, after))
		} else {
			sb.WriteString(InlineDiff(before, after))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func markerDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		}
	}
	return sb.String()
}
