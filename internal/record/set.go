package record

// ID is the stable opaque identity of a logical row.
type ID string

// Entry pairs an identity with its record.
type Entry struct {
	ID     ID
	Record *Record
}

// Set is an insertion-ordered mapping from identity to record.
type Set struct {
	ids  []ID
	byID map[ID]*Record
}

// NewSet builds a set from entries, keeping their order. A repeated
// identity keeps its first position and takes the last record.
func NewSet(entries []Entry) *Set {
	s := &Set{
		ids:  make([]ID, 0, len(entries)),
		byID: make(map[ID]*Record, len(entries)),
	}
	for _, e := range entries {
		if _, ok := s.byID[e.ID]; !ok {
			s.ids = append(s.ids, e.ID)
		}
		s.byID[e.ID] = e.Record
	}
	return s
}

// Len returns the number of records.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Get returns the record stored under id.
func (s *Set) Get(id ID) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.byID[id]
	return r, ok
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id ID) bool {
	_, ok := s.Get(id)
	return ok
}

// IDs returns the identities in insertion order. The slice is a copy.
func (s *Set) IDs() []ID {
	if s == nil {
		return nil
	}
	out := make([]ID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Entries returns the (identity, record) pairs in insertion order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.ids))
	for i, id := range s.ids {
		out[i] = Entry{ID: id, Record: s.byID[id]}
	}
	return out
}

// Each calls f for every entry in order until f returns false.
func (s *Set) Each(f func(Entry) bool) {
	if s == nil {
		return
	}
	for _, id := range s.ids {
		if !f(Entry{ID: id, Record: s.byID[id]}) {
			return
		}
	}
}

// Load assigns each raw record its identity and returns the set in
// source order. The identity is the record's own id field when present
// and non-empty, otherwise newID(). A source id already taken by an
// earlier record is replaced by newID() and reported in dups, so no row
// is ever dropped. Identities are never recomputed after Load.
func Load(raws []*Record, newID func() ID) (set *Set, dups []ID) {
	set = &Set{
		ids:  make([]ID, 0, len(raws)),
		byID: make(map[ID]*Record, len(raws)),
	}
	for _, raw := range raws {
		if raw == nil {
			raw = New()
		}
		id := sourceID(raw)
		if id != "" {
			if _, taken := set.byID[id]; taken {
				dups = append(dups, id)
				id = ""
			}
		}
		for id == "" || set.Contains(id) {
			id = newID()
		}
		set.ids = append(set.ids, id)
		set.byID[id] = raw
	}
	return set, dups
}

// sourceID mirrors a truthiness check on the id field: absent, null,
// false, 0 and "" all mean "no id".
func sourceID(r *Record) ID {
	v := r.Get(IDField)
	switch v.Kind() {
	case KindString, KindRaw:
		return ID(v.AsString())
	case KindNumber:
		if v.AsNumber() == 0 || v.AsNumber() != v.AsNumber() {
			return ""
		}
		return ID(v.String())
	case KindBool:
		if !v.AsBool() {
			return ""
		}
		return ID(v.String())
	}
	return ""
}

// ApplyEdit returns a new set where patch is shallow-merged into the
// record at id. Every other record is shared with s by reference. An
// unknown id is a no-op: s itself is returned with ok == false and no
// row is created.
func ApplyEdit(s *Set, id ID, patch Patch) (next *Set, ok bool) {
	current, ok := s.Get(id)
	if !ok {
		return s, false
	}
	next = &Set{
		ids:  s.ids,
		byID: make(map[ID]*Record, len(s.byID)),
	}
	for k, r := range s.byID {
		next.byID[k] = r
	}
	next.byID[id] = current.Merge(patch)
	return next, true
}

// Columns returns the field names of the first record in the set, which
// define the visible columns for the whole dataset.
func Columns(raws []*Record) []string {
	if len(raws) == 0 || raws[0] == nil {
		return nil
	}
	return raws[0].Keys()
}
