package record

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// helper to build a record from alternating name/value pairs
func rec(kv ...any) *Record {
	r := New()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1].(Value))
	}
	return r
}

// counter returns an ID generator producing gen-1, gen-2, ...
func counter() func() ID {
	n := 0
	return func() ID {
		n++
		return ID(fmt.Sprintf("gen-%d", n))
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Absent(), "undefined"},
		{Null(), "null"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(30), "30"},
		{Number(-2.5), "-2.5"},
		{Number(0.1), "0.1"},
		{Number(1e21), "1e+21"},
		{Number(1.5e-7), "1.5e-7"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(-1)), "-Infinity"},
		{String("Al"), "Al"},
		{Raw(`{"a":1}`), `{"a":1}`},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Fatalf("%v String(): got %q, want %q", c.v.Kind(), got, c.want)
		}
	}
}

func TestRecordKeepsFieldOrder(t *testing.T) {
	r := rec("zeta", Number(1), "alpha", Number(2), "mid", Number(3))
	r.Set("alpha", Number(9))

	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, r.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := r.Get("alpha").AsNumber(); got != 9 {
		t.Fatalf("alpha: got %v, want 9", got)
	}
	if !r.Get("missing").IsAbsent() {
		t.Fatal("missing field should be absent")
	}
}

func TestLoad_UsesSourceIDOrGenerates(t *testing.T) {
	raws := []*Record{
		rec("id", String("x"), "name", String("Al")),
		rec("name", String("Bo")),
		rec("id", String(""), "name", String("Cy")),
		rec("id", Number(7), "name", String("Di")),
		rec("id", Number(0), "name", String("Ed")),
	}

	set, dups := Load(raws, counter())

	want := []ID{"x", "gen-1", "gen-2", "7", "gen-3"}
	if diff := cmp.Diff(want, set.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %v", dups)
	}
}

func TestLoad_DuplicateSourceIDGetsFreshIdentity(t *testing.T) {
	raws := []*Record{
		rec("id", String("x"), "name", String("Al")),
		rec("id", String("x"), "name", String("Bo")),
	}

	set, dups := Load(raws, counter())

	if set.Len() != 2 {
		t.Fatalf("expected both rows kept, got %d", set.Len())
	}
	if diff := cmp.Diff([]ID{"x"}, dups); diff != "" {
		t.Fatalf("dups mismatch (-want +got):\n%s", diff)
	}
	r, _ := set.Get("gen-1")
	if r.Get("name").AsString() != "Bo" {
		t.Fatalf("second row should carry the fresh identity")
	}
}

func TestLoad_GeneratedIDNeverCollides(t *testing.T) {
	raws := []*Record{
		rec("id", String("gen-1")),
		rec("name", String("no id")),
	}

	set, _ := Load(raws, counter())

	if diff := cmp.Diff([]ID{"gen-1", "gen-2"}, set.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEdit_MergesSuccessiveEdits(t *testing.T) {
	set, _ := Load([]*Record{
		rec("id", String("x"), "name", String("Al"), "age", Number(30)),
		rec("id", String("y"), "name", String("Bo"), "age", Number(25)),
	}, counter())

	next, ok := ApplyEdit(set, "x", Patch{"a": Number(1)})
	if !ok {
		t.Fatal("edit on known identity reported not found")
	}
	next, _ = ApplyEdit(next, "x", Patch{"b": Number(2)})

	x, _ := next.Get("x")
	if x.Get("a").AsNumber() != 1 || x.Get("b").AsNumber() != 2 {
		t.Fatalf("expected a=1 and b=2, got a=%s b=%s", x.Get("a"), x.Get("b"))
	}
	if x.Get("name").AsString() != "Al" || x.Get("age").AsNumber() != 30 {
		t.Fatal("untouched fields changed")
	}
	if diff := cmp.Diff([]string{"id", "name", "age", "a", "b"}, x.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	// Original set and the other record are untouched.
	orig, _ := set.Get("x")
	if orig.Has("a") {
		t.Fatal("edit leaked into the previous set")
	}
	yBefore, _ := set.Get("y")
	yAfter, _ := next.Get("y")
	if yBefore != yAfter {
		t.Fatal("unedited record should be shared by reference")
	}
	if diff := cmp.Diff(set.IDs(), next.IDs()); diff != "" {
		t.Fatalf("identities changed by edit (-before +after):\n%s", diff)
	}
}

func TestApplyEdit_UnknownIdentityIsNoOp(t *testing.T) {
	set, _ := Load([]*Record{rec("id", String("x"))}, counter())

	next, ok := ApplyEdit(set, "ghost", Patch{"name": String("boo")})

	if ok {
		t.Fatal("expected ok=false for unknown identity")
	}
	if next != set {
		t.Fatal("expected the same set back")
	}
	if next.Len() != 1 || next.Contains("ghost") {
		t.Fatal("unknown-identity edit must not create a row")
	}
}

func TestColumnsComeFromFirstRecord(t *testing.T) {
	raws := []*Record{
		rec("id", String("x"), "name", String("Al")),
		rec("id", String("y"), "name", String("Bo"), "extra", Bool(true)),
	}

	if diff := cmp.Diff([]string{"id", "name"}, Columns(raws)); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if Columns(nil) != nil {
		t.Fatal("expected no columns for an empty dataset")
	}
}
