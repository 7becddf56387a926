package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		field string
		value record.Value
		want  Kind
	}{
		{"id", record.String("x"), KindReadOnly},
		{"id", record.Number(1), KindReadOnly},
		{"active", record.Bool(true), KindToggle},
		{"age", record.Number(30), KindNumber},
		{"born", record.String("2024-01-05"), KindDate},
		{"born", record.String("2024-01-05T10:00:00+02:00"), KindDate},
		{"bio", record.String(strings.Repeat("a", 41)), KindLongText},
		{"bio", record.String(strings.Repeat("a", 40)), KindText},
		{"mail", record.String("Al@Example.com"), KindEmail},
		{"mail", record.String("not an email"), KindText},
		{"name", record.String("Al"), KindText},
		{"gone", record.Absent(), KindNone},
		{"nil", record.Null(), KindNone},
		{"tags", record.Raw(`["a"]`), KindNone},
	}

	c := Classifier{Location: time.UTC}
	for _, tt := range tests {
		if got := c.Classify(tt.field, tt.value); got != tt.want {
			t.Errorf("Classify(%q, %v) = %v, want %v", tt.field, tt.value, got, tt.want)
		}
	}
}

func TestClassify_DateBeforeLongText(t *testing.T) {
	// A date string longer than the long-text threshold is still a date.
	c := Classifier{LongText: 5, Location: time.UTC}
	if got := c.Classify("at", record.String("2024-01-05")); got != KindDate {
		t.Errorf("got %v, want date", got)
	}
}

func TestNumberEditor(t *testing.T) {
	e := Classifier{Location: time.UTC}.Editor(KindNumber)

	v, err := e.Parse(" 42.5 ")
	if err != nil || v.AsNumber() != 42.5 {
		t.Fatalf("Parse: got %v, %v", v, err)
	}
	if v, _ := e.Parse(""); v.AsNumber() != 0 {
		t.Errorf("empty input: got %v, want 0", v)
	}
	if _, err := e.Parse("abc"); !errors.Is(err, util.ErrInvalidValue) {
		t.Errorf("garbage: got %v, want ErrInvalidValue", err)
	}
}

func TestDateEditor_RoundTrip(t *testing.T) {
	e := Classifier{Location: time.UTC}.Editor(KindDate)

	shown := e.Render(record.String("2024-03-05T14:07:09Z"))
	if shown != "3/5/2024, 2:07:09 PM" {
		t.Fatalf("Render: got %q", shown)
	}

	v, err := e.Parse(shown)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.AsString() != "2024-03-05T14:07:09Z" {
		t.Errorf("committed: got %q", v.AsString())
	}

	if _, err := e.Parse("someday"); !errors.Is(err, util.ErrInvalidValue) {
		t.Errorf("bad date: got %v", err)
	}
}

func TestEmailEditor(t *testing.T) {
	e := Classifier{}.Editor(KindEmail)
	if _, err := e.Parse("bo@example"); err == nil {
		t.Error("accepted an address without a top-level domain")
	}
	if v, err := e.Parse("  "); err != nil || v.Kind() != record.KindString || v.AsString() != "" {
		t.Errorf("clearing: got %v, %v", v, err)
	}
	v, err := e.Parse(" bo@example.org ")
	if err != nil || v.AsString() != "bo@example.org" {
		t.Errorf("got %v, %v", v, err)
	}
}

func TestRowContext(t *testing.T) {
	r := record.New()
	r.Set("id", record.String("x"))
	r.Set("name", record.String("Al"))
	r.Set("active", record.Bool(false))
	r.Set("tags", record.Raw(`[1]`))

	var gotID record.ID
	var gotPatch record.Patch
	rc := RowContext{
		ID:         "x",
		HeaderKeys: []string{"id", "name", "active", "tags", "missing"},
		Record:     r,
		OnFieldChange: func(id record.ID, patch record.Patch) error {
			gotID, gotPatch = id, patch
			return nil
		},
		Classifier: Classifier{Location: time.UTC},
	}

	cells := rc.Cells()
	texts := []string{"x", "Al", "false", "", ""}
	for i, want := range texts {
		if cells[i].Text != want {
			t.Errorf("cell %s: got %q, want %q", cells[i].Field, cells[i].Text, want)
		}
	}

	if err := rc.Commit("name", "Bob"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if gotID != "x" || len(gotPatch) != 1 || gotPatch["name"].AsString() != "Bob" {
		t.Errorf("patch: id=%s %v", gotID, gotPatch)
	}

	if err := rc.Toggle("active"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !gotPatch["active"].AsBool() {
		t.Errorf("toggle did not flip: %v", gotPatch)
	}

	if err := rc.Commit("id", "y"); !errors.Is(err, util.ErrReadOnlyField) {
		t.Errorf("id edit: got %v", err)
	}
	if err := rc.Commit("tags", "[]"); !errors.Is(err, util.ErrNotEditable) {
		t.Errorf("raw edit: got %v", err)
	}
}
