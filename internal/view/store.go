package view

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/imgajeed76/sheetview/internal/filter"
	"github.com/imgajeed76/sheetview/internal/order"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
	"github.com/imgajeed76/sheetview/internal/window"
)

// Phase is the lifecycle state of the Store.
type Phase int

const (
	PhaseEmpty   Phase = iota // nothing loaded yet
	PhaseLoading              // a load is in flight
	PhaseReady                // data present, pipeline derived
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "empty"
	}
}

// Options configures a Store.
type Options struct {
	// RowHeight and VisibleCount are the initial viewport geometry.
	RowHeight    int
	VisibleCount int
	// NewID generates identities for records without an id field.
	// Defaults to ULIDs.
	NewID func() record.ID
	// Logger receives pipeline events. Defaults to discarding them.
	Logger *slog.Logger
}

// Store holds {edited set, filter spec, sort spec, window state} plus
// the cached derived stages. All methods are safe for concurrent use;
// each mutation fully propagates before the lock is released.
type Store struct {
	mu     sync.Mutex
	logger *slog.Logger
	newID  func() record.ID

	phase     Phase
	prevPhase Phase
	derived   bool

	columns []string
	loaded  *record.Set
	edited  *record.Set
	filter  filter.Spec
	sort    order.Spec
	win     window.State

	visible *record.Set
	ordered []record.Entry
}

// NewStore returns an empty Store.
func NewStore(opts Options) *Store {
	if opts.NewID == nil {
		opts.NewID = func() record.ID { return record.ID(util.NewULID()) }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.RowHeight < 1 {
		opts.RowHeight = 1
	}
	return &Store{
		logger: opts.Logger,
		newID:  opts.NewID,
		win: window.State{
			RowHeight:    opts.RowHeight,
			VisibleCount: opts.VisibleCount,
		}.Normalize(),
	}
}

// BeginLoad marks a load as in flight. The previous dataset stays in
// place until Load replaces it or AbortLoad restores the prior phase.
func (s *Store) BeginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseLoading {
		s.prevPhase = s.phase
	}
	s.phase = PhaseLoading
}

// AbortLoad ends a failed load, leaving the previous dataset intact.
func (s *Store) AbortLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseLoading {
		s.phase = s.prevPhase
	}
	s.logger.Warn("load aborted", "error", err, "phase", s.phase.String())
}

// Load replaces the dataset. Identities are assigned, prior edits,
// filters, sort and scroll are discarded, and the pipeline is derived.
// The columns are the first record's field names.
func (s *Store) Load(raws []*record.Record) {
	set, dups := record.Load(raws, s.newID)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range dups {
		s.logger.Warn("duplicate id, assigned a fresh identity", "id", string(id))
	}

	s.columns = record.Columns(raws)
	s.loaded = set
	s.edited = set
	s.filter = filter.Spec{}
	s.sort = order.Spec{}
	s.win = s.win.Reset()
	s.derived = false
	s.recompute()
	if set.Len() == 0 {
		s.phase = PhaseEmpty
	} else {
		s.phase = PhaseReady
	}

	s.logger.Debug("dataset loaded", "records", set.Len(), "columns", len(s.columns))
}

// ApplyEdit merges patch into the record at id and re-derives. An
// unknown id changes nothing and returns an error wrapping
// util.ErrUnknownIdentity.
func (s *Store) ApplyEdit(id record.ID, patch record.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := record.ApplyEdit(s.edited, id, patch)
	if !ok {
		s.logger.Warn("edit for unknown identity dropped", "id", string(id))
		return util.UnknownIdentityError(string(id))
	}
	s.edited = next
	s.recompute()

	s.logger.Debug("edit applied", "id", string(id), "fields", len(patch))
	return nil
}

// SetFilter sets the filter text for one field ("" clears it). It
// reports whether the effective filter changed; only then is the
// pipeline re-derived.
func (s *Store) SetFilter(field, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.filter.With(field, text)
	if next.Equal(s.filter) {
		return false
	}
	s.filter = next
	s.recompute()

	s.logger.Debug("filter changed", "field", field, "text", text, "visible", len(s.ordered))
	return true
}

// ClearFilters removes every filter.
func (s *Store) ClearFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.IsEmpty() {
		return false
	}
	s.filter = filter.Spec{}
	s.recompute()
	return true
}

// Preset is a filter and sort applied on top of a freshly loaded
// dataset, e.g. from command-line flags.
type Preset struct {
	Filter filter.Spec
	Sort   order.Spec
}

// ApplyPreset replaces the filter and sort spec and derives once.
func (s *Store) ApplyPreset(p Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := filter.Spec{}
	for field, text := range p.Filter {
		next = next.With(field, text)
	}
	s.filter = next
	s.sort = p.Sort
	s.recompute()

	s.logger.Debug("preset applied", "filters", len(next), "sort", p.Sort.Field, "visible", len(s.ordered))
}

// ToggleSort advances field through unset → ascending → descending →
// unset and returns the new spec.
func (s *Store) ToggleSort(field string) order.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSort(s.sort.Toggle(field))
	return s.sort
}

func (s *Store) setSort(spec order.Spec) {
	s.sort = spec
	// Only the order stage depends on the sort spec.
	s.ordered = order.Apply(s.visible, s.sort)
	s.win = s.win.Reset()
	s.logger.Debug("sort changed", "field", spec.Field, "direction", spec.Direction.String())
}

// Scroll moves the viewport to offset. Only the window stage runs.
func (s *Store) Scroll(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.win.ScrollOffset = max(0, offset)
}

// SetViewport changes the row height and visible row count, keeping the
// scroll position.
func (s *Store) SetViewport(rowHeight, visibleCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.win.RowHeight = rowHeight
	s.win.VisibleCount = visibleCount
	s.win = s.win.Normalize()
}

// recompute re-runs filter and order over the edited set and resets the
// scroll position. Callers hold s.mu.
func (s *Store) recompute() {
	d := Derive(s.edited, s.filter, s.sort)
	s.visible = d.Visible
	s.ordered = d.Ordered
	s.derived = true
	s.win = s.win.Reset()
}

// View renders the current state. It is O(window size).
func (s *Store) View() RenderModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := render(s.columns, s.edited.Len(), s.ordered, s.filter, s.sort, s.win, s.derived)
	if s.phase == PhaseLoading {
		m.Status = StatusLoading
	}
	return m
}

// Phase returns the lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Columns returns the dataset's columns.
func (s *Store) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.columns...)
}

// Loaded returns the set as it was loaded, before any edit.
func (s *Store) Loaded() *record.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Edited returns the current edited set. Sets are immutable, so the
// caller may keep it.
func (s *Store) Edited() *record.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edited
}

// Ordered returns a copy of the full ordered sequence.
func (s *Store) Ordered() []record.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.Entry(nil), s.ordered...)
}

// At returns the entry at index i of the ordered sequence.
func (s *Store) At(i int) (record.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.ordered) {
		return record.Entry{}, false
	}
	return s.ordered[i], true
}

// Len returns the length of the ordered sequence.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ordered)
}

// Filter returns a copy of the filter spec.
func (s *Store) Filter() filter.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.filter)
}

// Sort returns the sort spec.
func (s *Store) Sort() order.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Window returns the window state.
func (s *Store) Window() window.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.win
}

func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("view.Store{phase=%s edited=%d visible=%d}", s.phase, s.edited.Len(), len(s.ordered))
}
