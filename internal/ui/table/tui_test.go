package table

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/imgajeed76/sheetview/internal/clock"
	"github.com/imgajeed76/sheetview/internal/editor"
	"github.com/imgajeed76/sheetview/internal/order"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/view"
)

func person(id, name string, age float64, active bool) *record.Record {
	r := record.New()
	r.Set("id", record.String(id))
	r.Set("name", record.String(name))
	r.Set("age", record.Number(age))
	r.Set("active", record.Bool(active))
	return r
}

func loadedStore(t *testing.T) *view.Store {
	t.Helper()
	s := view.NewStore(view.Options{})
	s.Load([]*record.Record{
		person("x", "Al", 30, true),
		person("y", "Bo", 25, false),
		person("z", "Cal", 41, true),
	})
	return s
}

type harness struct {
	t     *testing.T
	m     tableModel
	clock *clock.FakeClock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clk := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	opts.Clock = clk
	opts.Debounce = time.Second
	opts.Classifier = editor.Classifier{Location: time.UTC}

	h := &harness{t: t, m: newModel(ctx, opts), clock: clk}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 20})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(tableModel)
	return cmd
}

func (h *harness) keys(names ...string) {
	h.t.Helper()
	for _, name := range names {
		var msg tea.KeyMsg
		switch name {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
		}
		h.send(msg)
	}
}

func (h *harness) ids() []record.ID {
	var out []record.ID
	for _, e := range h.m.store.Ordered() {
		out = append(out, e.ID)
	}
	return out
}

func TestFilter_AppliesAfterQuietPeriod(t *testing.T) {
	h := newHarness(t, Options{Store: loadedStore(t)})
	h.keys("right") // name
	h.keys("/", "a")

	if got := len(h.ids()); got != 3 {
		t.Fatalf("filter applied before the delay: %d rows", got)
	}

	h.keys("l")
	go h.clock.Advance(time.Second)

	select {
	case msg := <-h.m.filterCh:
		if msg != (filterMsg{field: "name", text: "al"}) {
			t.Fatalf("delivered %+v", msg)
		}
		h.send(msg)
	case <-time.After(5 * time.Second):
		t.Fatal("debounced filter never delivered")
	}

	if diff := cmp.Diff([]record.ID{"x", "z"}, h.ids()); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}
	if h.clock.Pending() != 0 {
		t.Errorf("timer left behind")
	}
}

func TestFilter_EnterAppliesImmediately(t *testing.T) {
	h := newHarness(t, Options{Store: loadedStore(t)})
	h.keys("right", "/", "b", "enter")

	if diff := cmp.Diff([]record.ID{"y"}, h.ids()); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}
	if h.m.mode != tableModeNormal {
		t.Errorf("still in filter mode")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("pending timer not cancelled")
	}
	if !strings.Contains(h.m.View(), "name /b") {
		t.Errorf("header does not show the filter:\n%s", h.m.View())
	}

	h.keys("x")
	if got := len(h.ids()); got != 3 {
		t.Errorf("clear filter: %d rows", got)
	}
}

func TestFilter_ClearAll(t *testing.T) {
	store := loadedStore(t)
	h := newHarness(t, Options{Store: store})
	h.keys("right", "/", "b", "enter", "right", "/", "2", "enter")
	if diff := cmp.Diff([]record.ID{"y"}, h.ids()); diff != "" {
		t.Fatalf("filtered (-want +got):\n%s", diff)
	}

	h.keys("X")
	if got := len(h.ids()); got != 3 {
		t.Errorf("clear all: %d rows", got)
	}
	if !store.Filter().IsEmpty() {
		t.Errorf("filters left: %v", store.Filter())
	}
}

func TestFilter_NoMatchShowsNoData(t *testing.T) {
	h := newHarness(t, Options{Store: loadedStore(t)})
	h.keys("right", "/", "q", "enter")

	if !strings.Contains(h.m.View(), "No data") {
		t.Errorf("expected No data:\n%s", h.m.View())
	}
}

func TestSort_CyclesOnColumn(t *testing.T) {
	h := newHarness(t, Options{Store: loadedStore(t)})
	h.keys("right", "right") // age

	h.keys("s")
	if diff := cmp.Diff([]record.ID{"y", "x", "z"}, h.ids()); diff != "" {
		t.Errorf("ascending (-want +got):\n%s", diff)
	}
	if !strings.Contains(h.m.View(), "age v") {
		t.Errorf("missing ascending indicator")
	}

	h.keys("s")
	if diff := cmp.Diff([]record.ID{"z", "x", "y"}, h.ids()); diff != "" {
		t.Errorf("descending (-want +got):\n%s", diff)
	}

	h.keys("s")
	if diff := cmp.Diff([]record.ID{"x", "y", "z"}, h.ids()); diff != "" {
		t.Errorf("unset (-want +got):\n%s", diff)
	}
}

func TestEdit_CommitsThroughStore(t *testing.T) {
	store := loadedStore(t)
	h := newHarness(t, Options{Store: store})
	h.keys("down", "right", "enter")

	if h.m.mode != tableModeEdit || h.m.edit.field != "name" || h.m.edit.id != "y" {
		t.Fatalf("edit state = %+v", h.m.edit)
	}
	h.m.edit.input.SetValue("Bob")
	h.keys("enter")

	rec, _ := store.Edited().Get("y")
	if got := rec.Get("name").AsString(); got != "Bob" {
		t.Errorf("name = %q", got)
	}
	if len(h.m.changes) != 1 || !h.m.edited["y"]["name"] {
		t.Errorf("changes = %+v", h.m.changes)
	}
	if loaded, _ := store.Loaded().Get("y"); loaded.Get("name").AsString() != "Bo" {
		t.Errorf("loaded set was modified")
	}
}

func TestEdit_ResetsWindowToTop(t *testing.T) {
	store := view.NewStore(view.Options{RowHeight: 2})
	var raws []*record.Record
	for i := range 50 {
		raws = append(raws, person(string(rune('a'+i%26))+string(rune('a'+i/26)), "n", float64(i), true))
	}
	store.Load(raws)

	h := newHarness(t, Options{Store: store, RowHeight: 2})
	h.send(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if h.m.scrollY != wheelRows {
		t.Fatalf("scrollY = %d before edit", h.m.scrollY)
	}

	h.keys("right", "enter")
	h.m.edit.input.SetValue("m")
	h.keys("enter")

	if got := store.Window().ScrollOffset; got != 0 {
		t.Errorf("scroll offset = %d after edit, want 0", got)
	}
	if h.m.scrollY != 0 || h.m.cursor != 0 {
		t.Errorf("scrollY = %d, cursor = %d after edit, want 0, 0", h.m.scrollY, h.m.cursor)
	}
}

func TestEdit_SortedColumnCursorMatchesOrder(t *testing.T) {
	store := loadedStore(t)
	h := newHarness(t, Options{Store: store})
	h.keys("right", "s") // name ascending: x, y, z

	h.keys("enter")
	if h.m.edit.id != "x" {
		t.Fatalf("editing %q, want x", h.m.edit.id)
	}
	h.m.edit.input.SetValue("Zed")
	h.keys("enter")

	if diff := cmp.Diff([]record.ID{"y", "z", "x"}, h.ids()); diff != "" {
		t.Fatalf("order after edit (-want +got):\n%s", diff)
	}

	// The next edit targets the row drawn under the cursor.
	h.keys("enter")
	if vm := store.View(); vm.First != 0 || h.m.edit.id != "y" {
		t.Errorf("first rendered = %d, editing %q, want 0 and y", vm.First, h.m.edit.id)
	}
}

func TestEdit_InvalidInputKeepsModalOpen(t *testing.T) {
	h := newHarness(t, Options{Store: loadedStore(t)})
	h.keys("right", "right", "enter") // age
	h.m.edit.input.SetValue("thirty")
	h.keys("enter")

	if h.m.mode != tableModeEdit || h.m.edit.err == nil {
		t.Fatalf("invalid number accepted: mode=%v err=%v", h.m.mode, h.m.edit.err)
	}
	h.keys("esc")
	if h.m.mode != tableModeNormal || len(h.m.changes) != 0 {
		t.Errorf("esc should close without saving")
	}
}

func TestEdit_ToggleFlipsBoolean(t *testing.T) {
	store := loadedStore(t)
	h := newHarness(t, Options{Store: store})
	h.keys("right", "right", "right", "enter") // active

	rec, _ := store.Edited().Get("x")
	if rec.Get("active").AsBool() {
		t.Errorf("active not toggled")
	}
	if h.m.mode != tableModeNormal {
		t.Errorf("toggle should not open a modal")
	}
}

func TestEdit_IdentityIsReadOnly(t *testing.T) {
	h := newHarness(t, Options{Store: loadedStore(t)})
	h.keys("enter")

	if h.m.mode != tableModeNormal || !h.m.statusErr {
		t.Errorf("id column should refuse edits: mode=%v status=%q", h.m.mode, h.m.statusMsg)
	}
}

func TestEdit_LongTextUsesTextarea(t *testing.T) {
	store := view.NewStore(view.Options{})
	r := record.New()
	r.Set("note", record.String(strings.Repeat("long text ", 10)))
	store.Load([]*record.Record{r})

	h := newHarness(t, Options{Store: store})
	h.keys("enter")
	if h.m.edit.kind != editor.KindLongText {
		t.Fatalf("kind = %v", h.m.edit.kind)
	}
	h.m.edit.area.SetValue("short\nnote")
	h.keys("enter") // newline, not save
	if h.m.mode != tableModeEdit {
		t.Fatal("enter closed the multi-line editor")
	}
	h.keys("ctrl+s")

	got := store.Ordered()[0].Record.Get("note").AsString()
	if !strings.HasPrefix(got, "short\n") {
		t.Errorf("note = %q", got)
	}
}

func TestLoad_ShowsLoadingThenRows(t *testing.T) {
	store := view.NewStore(view.Options{})
	h := newHarness(t, Options{
		Store: store,
		Load: func(context.Context) ([]*record.Record, error) {
			return []*record.Record{person("x", "Al", 30, true), person("y", "Bo", 25, false)}, nil
		},
		Preset: view.Preset{Sort: order.Spec{Field: "age", Direction: order.Ascending}},
	})

	if !strings.Contains(h.m.View(), "Loading...") {
		t.Errorf("expected loading placeholder:\n%s", h.m.View())
	}

	records, err := h.m.opts.Load(context.Background())
	h.send(loadedMsg{records: records, err: err})

	if diff := cmp.Diff([]record.ID{"y", "x"}, h.ids()); diff != "" {
		t.Errorf("preset not applied (-want +got):\n%s", diff)
	}
	if store.Phase() != view.PhaseReady {
		t.Errorf("phase = %v", store.Phase())
	}
}

func TestLoad_FailureQuitsWithError(t *testing.T) {
	store := view.NewStore(view.Options{})
	h := newHarness(t, Options{Store: store, Load: func(context.Context) ([]*record.Record, error) { return nil, nil }})

	boom := errors.New("boom")
	cmd := h.send(loadedMsg{err: boom})
	if !errors.Is(h.m.err, boom) || cmd == nil {
		t.Errorf("err = %v", h.m.err)
	}
	if store.Phase() != view.PhaseEmpty {
		t.Errorf("phase = %v", store.Phase())
	}
}

func TestScroll_MovesStoreWindowOnly(t *testing.T) {
	store := view.NewStore(view.Options{RowHeight: 2})
	var raws []*record.Record
	for i := range 50 {
		raws = append(raws, person(string(rune('a'+i%26))+string(rune('a'+i/26)), "n", float64(i), true))
	}
	store.Load(raws)

	h := newHarness(t, Options{Store: store, RowHeight: 2})
	h.send(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})

	if got := store.Window().ScrollOffset; got != 2*wheelRows {
		t.Errorf("scroll offset = %d, want %d", got, 2*wheelRows)
	}
	if h.m.cursor != wheelRows {
		t.Errorf("cursor = %d, want %d", h.m.cursor, wheelRows)
	}
	if vm := store.View(); vm.First != wheelRows {
		t.Errorf("first rendered row = %d", vm.First)
	}
}

func TestApplyViewport(t *testing.T) {
	tests := []struct {
		in           string
		start, width int
		want         string
	}{
		{"abcdef", 2, 3, "cde"},
		{"abc", 1, 5, "bc   "},
		{"日本語", 2, 4, "本語"},
		{"日本語", 1, 3, " 本"},
		{"\x1b[1mbold\x1b[0m", 1, 2, "\x1b[1mol\x1b[0m"},
	}
	for _, tt := range tests {
		if got := applyViewport(tt.in, tt.start, tt.width); got != tt.want {
			t.Errorf("applyViewport(%q, %d, %d) = %q, want %q", tt.in, tt.start, tt.width, got, tt.want)
		}
	}
}
