package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/imgajeed76/sheetview/internal/filter"
	"github.com/imgajeed76/sheetview/internal/order"
	"github.com/imgajeed76/sheetview/internal/util"
	"github.com/imgajeed76/sheetview/internal/view"
)

func TestParsePreset(t *testing.T) {
	got, err := parsePreset([]string{"name=al", "city=", "note=a=b"}, "age:desc")
	if err != nil {
		t.Fatal(err)
	}
	want := view.Preset{
		Filter: filter.Spec{"name": "al", "note": "a=b"},
		Sort:   order.Spec{Field: "age", Direction: order.Descending},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePreset_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name    string
		filters []string
		sort    string
	}{
		{"no equals", []string{"name"}, ""},
		{"empty field", []string{"=x"}, ""},
		{"bad direction", nil, "age:sideways"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePreset(tt.filters, tt.sort)
			if !errors.Is(err, util.ErrInvalidValue) {
				t.Fatalf("got %v, want ErrInvalidValue", err)
			}
			var sheetErr *util.SheetError
			if !errors.As(err, &sheetErr) || len(sheetErr.Suggestions) == 0 {
				t.Errorf("want a SheetError with a suggestion, got %#v", err)
			}
		})
	}
}

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCmd_SetGetList(t *testing.T) {
	t.Setenv("SHEETVIEW_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	t.Setenv("NO_COLOR", "1")

	if _, err := runConfigCmd(t, "view.debounce_ms", "250"); err != nil {
		t.Fatal(err)
	}
	got, err := runConfigCmd(t, "view.debounce_ms")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(got) != "250" {
		t.Errorf("get: got %q, want 250", got)
	}

	list, err := runConfigCmd(t, "--list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(list, "view.debounce_ms=250\n") || !strings.Contains(list, "view.row_height=1\n") {
		t.Errorf("list:\n%s", list)
	}
}

func TestConfigCmd_Errors(t *testing.T) {
	t.Setenv("SHEETVIEW_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	if _, err := runConfigCmd(t, "nope.key"); !errors.Is(err, util.ErrUnknownConfigKey) {
		t.Errorf("unknown key: got %v", err)
	}
	if _, err := runConfigCmd(t, "view.row_height", "zero"); !errors.Is(err, util.ErrInvalidValue) {
		t.Errorf("bad value: got %v", err)
	}
	if _, err := runConfigCmd(t); err == nil {
		t.Error("missing key accepted")
	}
}
