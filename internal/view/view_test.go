package view

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/imgajeed76/sheetview/internal/filter"
	"github.com/imgajeed76/sheetview/internal/order"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
	"github.com/imgajeed76/sheetview/internal/window"
)

func rec(kv ...any) *record.Record {
	r := record.New()
	for i := 0; i < len(kv); i += 2 {
		name := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			r.Set(name, record.String(v))
		case int:
			r.Set(name, record.Number(float64(v)))
		case bool:
			r.Set(name, record.Bool(v))
		}
	}
	return r
}

func sequential() func() record.ID {
	n := 0
	return func() record.ID {
		n++
		return record.ID(fmt.Sprintf("gen-%d", n))
	}
}

func ids(entries []record.Entry) []record.ID {
	out := make([]record.ID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func people() []*record.Record {
	return []*record.Record{
		rec("id", "x", "name", "Al", "age", 30),
		rec("id", "y", "name", "Bo", "age", 25),
	}
}

func newStore(t *testing.T, rowHeight, visible int) *Store {
	t.Helper()
	return NewStore(Options{RowHeight: rowHeight, VisibleCount: visible, NewID: sequential()})
}

func TestScenario_LoadFilterSortWindow(t *testing.T) {
	s := newStore(t, 140, 5)
	s.Load(people())

	if !s.SetFilter("name", "a") {
		t.Fatal("setting a filter should report a change")
	}
	if got, want := ids(s.Ordered()), []record.ID{"x"}; !cmp.Equal(got, want) {
		t.Errorf("filtered: got %v, want %v", got, want)
	}

	s.ClearFilters()
	s.ToggleSort("age")
	if got, want := ids(s.Ordered()), []record.ID{"y", "x"}; !cmp.Equal(got, want) {
		t.Errorf("sorted: got %v, want %v", got, want)
	}

	m := s.View()
	if m.TopSpacer != 0 || m.BottomSpacer != 0 {
		t.Errorf("spacers: got top=%d bottom=%d, want 0 0", m.TopSpacer, m.BottomSpacer)
	}
	if len(m.Rows) != 2 {
		t.Errorf("window rows: got %d, want 2", len(m.Rows))
	}
	if m.Status != StatusRows {
		t.Errorf("status: got %v, want rows", m.Status)
	}
}

func TestDeriveView_MatchesStore(t *testing.T) {
	s := newStore(t, 1, 10)
	s.Load(people())
	s.SetFilter("age", "2")
	s.ToggleSort("name")

	pure := DeriveView(s.Edited(), s.Columns(), s.Filter(), s.Sort(), s.Window())
	got := s.View()

	if diff := cmp.Diff(ids(pure.Rows), ids(got.Rows)); diff != "" {
		t.Errorf("rows differ (-pure +store):\n%s", diff)
	}
	if pure.Total != got.Total || pure.Status != got.Status {
		t.Errorf("pure %+v, store %+v", pure, got)
	}
}

func TestApplyEdit_RederivesAndKeepsIdentity(t *testing.T) {
	s := newStore(t, 1, 10)
	s.Load(people())
	s.SetFilter("name", "bo")

	if err := s.ApplyEdit("x", record.Patch{"name": record.String("Bob")}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got, want := ids(s.Ordered()), []record.ID{"x", "y"}; !cmp.Equal(got, want) {
		t.Errorf("after edit: got %v, want %v", got, want)
	}

	r, _ := s.Edited().Get("x")
	if r.Get("name").String() != "Bob" || r.Get("age").String() != "30" {
		t.Errorf("edited record: name=%s age=%s", r.Get("name"), r.Get("age"))
	}

	orig, _ := s.Loaded().Get("x")
	if orig.Get("name").String() != "Al" {
		t.Errorf("loaded set was mutated: %s", orig.Get("name"))
	}
}

func TestApplyEdit_UnknownIdentity(t *testing.T) {
	s := newStore(t, 1, 10)
	s.Load(people())
	before := s.Edited()

	err := s.ApplyEdit("nope", record.Patch{"name": record.String("Z")})
	if !errors.Is(err, util.ErrUnknownIdentity) {
		t.Fatalf("got %v, want ErrUnknownIdentity", err)
	}
	if s.Edited() != before {
		t.Error("unknown identity replaced the edited set")
	}
}

func TestSetFilter_UnchangedIsNoOp(t *testing.T) {
	s := newStore(t, 1, 1)
	s.Load(people())
	s.SetFilter("name", "a")
	s.Scroll(1)

	if s.SetFilter("name", "a") {
		t.Error("re-applying the same filter reported a change")
	}
	if s.Window().ScrollOffset != 1 {
		t.Error("a no-op filter reset the scroll position")
	}
	if s.SetFilter("age", "") {
		t.Error("clearing an inactive field reported a change")
	}
}

func TestScrollResets(t *testing.T) {
	s := newStore(t, 10, 1)
	var raws []*record.Record
	for i := range 20 {
		raws = append(raws, rec("name", fmt.Sprintf("n%02d", i)))
	}
	s.Load(raws)

	cases := []struct {
		name   string
		mutate func()
	}{
		{"filter", func() { s.SetFilter("name", "n") }},
		{"sort", func() { s.ToggleSort("name") }},
		{"edit", func() { _ = s.ApplyEdit("gen-3", record.Patch{"name": record.String("z")}) }},
		{"load", func() { s.Load(raws) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s.Scroll(55)
			if got := s.View().First; got != 5 {
				t.Fatalf("first before %s: got %d, want 5", tc.name, got)
			}
			tc.mutate()
			if got := s.Window().ScrollOffset; got != 0 {
				t.Errorf("offset after %s: got %d, want 0", tc.name, got)
			}
		})
	}
}

func TestScroll_DoesNotRederive(t *testing.T) {
	s := newStore(t, 1, 2)
	s.Load(people())
	before := s.Ordered()

	s.Scroll(1)
	m := s.View()
	if m.First != 1 || len(m.Rows) != 1 || m.Rows[0].ID != before[1].ID {
		t.Errorf("window after scroll: first=%d rows=%v", m.First, ids(m.Rows))
	}
	if m.TopSpacer != 1 {
		t.Errorf("top spacer: got %d, want 1", m.TopSpacer)
	}
}

func TestLoad_ResetsFilterAndSort(t *testing.T) {
	s := newStore(t, 1, 10)
	s.Load(people())
	s.SetFilter("name", "zzz")
	s.ToggleSort("age")

	s.Load(people())
	if !s.Filter().IsEmpty() {
		t.Errorf("filter survived load: %v", s.Filter())
	}
	if s.Sort().IsSet() {
		t.Errorf("sort survived load: %+v", s.Sort())
	}
	if s.Len() != 2 {
		t.Errorf("rows: got %d, want 2", s.Len())
	}
}

func TestLoad_DuplicateIDsKeepEveryRow(t *testing.T) {
	s := newStore(t, 1, 10)
	s.Load([]*record.Record{
		rec("id", "a", "v", 1),
		rec("id", "a", "v", 2),
	})
	if s.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", s.Len())
	}
	if got := ids(s.Ordered()); got[0] != "a" || got[1] == "a" {
		t.Errorf("identities: %v", got)
	}
}

func TestStatusAndPhase(t *testing.T) {
	s := newStore(t, 1, 10)
	if s.Phase() != PhaseEmpty || s.View().Status != StatusEmpty {
		t.Fatalf("fresh store: phase=%v status=%v", s.Phase(), s.View().Status)
	}

	s.BeginLoad()
	if s.View().Status != StatusLoading {
		t.Errorf("during load: status=%v", s.View().Status)
	}
	s.AbortLoad(errors.New("boom"))
	if s.Phase() != PhaseEmpty {
		t.Errorf("after abort: phase=%v", s.Phase())
	}

	s.BeginLoad()
	s.Load(people())
	if s.Phase() != PhaseReady || s.View().Status != StatusRows {
		t.Errorf("after load: phase=%v status=%v", s.Phase(), s.View().Status)
	}

	s.SetFilter("name", "nobody")
	if got := s.View().Status; got != StatusNoData {
		t.Errorf("no match: status=%v, want %v", got, StatusNoData)
	}
	if got := s.View().Status.String(); got != "No data" {
		t.Errorf("status text: %q", got)
	}

	s.Load(nil)
	if s.Phase() != PhaseEmpty || s.View().Status != StatusEmpty {
		t.Errorf("empty load: phase=%v status=%v", s.Phase(), s.View().Status)
	}
}

func TestDeriveView_Pure(t *testing.T) {
	set, _ := record.Load(people(), sequential())
	f := filter.Spec{"name": "o"}
	o := order.Spec{Field: "age", Direction: order.Descending}
	ws := window.State{RowHeight: 1, VisibleCount: 10}

	a := DeriveView(set, []string{"id", "name", "age"}, f, o, ws)
	b := DeriveView(set, []string{"id", "name", "age"}, f, o, ws)
	if !cmp.Equal(ids(a.Rows), ids(b.Rows)) {
		t.Errorf("same inputs, different rows: %v vs %v", ids(a.Rows), ids(b.Rows))
	}
	if got, want := ids(a.Rows), []record.ID{"y"}; !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyPreset(t *testing.T) {
	s := newStore(t, 1, 10)
	s.Load(append(people(), rec("id", "z", "name", "Cal", "age", 41)))
	s.Scroll(2)

	s.ApplyPreset(Preset{
		Filter: filter.Spec{"name": "a", "age": ""},
		Sort:   order.Spec{Field: "age", Direction: order.Descending},
	})

	if got, want := ids(s.Ordered()), []record.ID{"z", "x"}; !cmp.Equal(got, want) {
		t.Errorf("ordered: %s", cmp.Diff(want, got))
	}
	if got := s.Filter(); !cmp.Equal(got, filter.Spec{"name": "a"}) {
		t.Errorf("empty filter text kept: %v", got)
	}
	if s.Window().ScrollOffset != 0 {
		t.Errorf("scroll not reset: %d", s.Window().ScrollOffset)
	}
}
