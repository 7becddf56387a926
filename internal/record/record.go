// Package record holds the canonical data of a loaded dataset: cell
// values, records with ordered fields, and identity-keyed record sets.
//
// Records and sets are treated as immutable once they are part of a Set.
// Edits go through ApplyEdit, which copies the one record being changed
// and shares every other record with the previous set, so derived views
// (filtered, ordered, windowed) can never alias a half-applied edit.
package record

import (
	"sort"

	"github.com/elliotchance/orderedmap"
)

// IDField is the source field that supplies a record's identity.
const IDField = "id"

// Record is an ordered set of named fields. Field order is the order in
// which the source listed them; the first record's order defines the
// dataset's columns.
type Record struct {
	fields *orderedmap.OrderedMap
}

// Patch is a partial field update produced by a row editor.
type Patch map[string]Value

// New creates an empty record.
func New() *Record {
	return &Record{fields: orderedmap.NewOrderedMap()}
}

// Set assigns a field. Existing fields keep their position; new fields
// are appended. Only use it while building a record, before Load.
func (r *Record) Set(name string, v Value) {
	r.fields.Set(name, v)
}

// Get returns the field's value, or an absent value.
func (r *Record) Get(name string) Value {
	if r == nil || r.fields == nil {
		return Absent()
	}
	v, ok := r.fields.Get(name)
	if !ok {
		return Absent()
	}
	return v.(Value)
}

// Has reports whether the field exists on the record.
func (r *Record) Has(name string) bool {
	if r == nil || r.fields == nil {
		return false
	}
	_, ok := r.fields.Get(name)
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	if r == nil || r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for e := r.fields.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Key.(string))
	}
	return keys
}

// Each calls f for every field in order until f returns false.
func (r *Record) Each(f func(name string, v Value) bool) {
	if r == nil || r.fields == nil {
		return
	}
	for e := r.fields.Front(); e != nil; e = e.Next() {
		if !f(e.Key.(string), e.Value.(Value)) {
			return
		}
	}
}

// Clone returns a copy that shares no mutable state with r.
func (r *Record) Clone() *Record {
	c := New()
	r.Each(func(name string, v Value) bool {
		c.fields.Set(name, v)
		return true
	})
	return c
}

// Merge returns a new record with patch shallow-merged over r. Fields
// the patch introduces are appended in name order so the result does
// not depend on map iteration.
func (r *Record) Merge(patch Patch) *Record {
	c := r.Clone()
	var added []string
	for name, v := range patch {
		if c.Has(name) {
			c.fields.Set(name, v)
		} else {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		c.fields.Set(name, patch[name])
	}
	return c
}
