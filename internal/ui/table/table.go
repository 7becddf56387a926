// Package table renders a loaded dataset. It supports an interactive TUI
// (per-column filters, sort, cell editing, changes panel, smooth
// scrolling), plain text tables, JSON output, and raw tab-separated
// output.
//
// Both `sheetview view` and `sheetview sql` display through Display.
package table

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/imgajeed76/sheetview/internal/ui"
	"github.com/imgajeed76/sheetview/internal/view"
)

// DisplayOptions controls how results are rendered.
type DisplayOptions struct {
	// JSON outputs the view as a JSON array of objects.
	JSON bool
	// Raw outputs the view as tab-separated values (for piping).
	Raw bool
	// NoPager forces plain table output even on a TTY.
	NoPager bool
}

// Interactive reports whether Display would open the TUI.
func (d DisplayOptions) Interactive() bool {
	return !d.JSON && !d.Raw && !d.NoPager && term.IsTerminal(int(os.Stdout.Fd()))
}

// Display picks the output mode from display options and the
// environment, loads the data through opts and renders it.
func Display(ctx context.Context, opts Options, display DisplayOptions) error {
	if display.Interactive() {
		return Run(ctx, opts)
	}

	opts = opts.withDefaults()
	if opts.Load != nil {
		if err := LoadNow(ctx, opts); err != nil {
			return err
		}
	}

	store := opts.Store
	switch {
	case display.Raw:
		return WriteRaw(opts.Output, store.Columns(), store.Ordered())
	case display.JSON:
		return WriteJSON(opts.Output, store.Ordered())
	default:
		return WritePlain(opts.Output, store.Columns(), store.Ordered())
	}
}

// LoadNow runs opts.Load on the calling goroutine and applies the
// preset. A spinner is shown on stderr while it runs.
func LoadNow(ctx context.Context, opts Options) error {
	store := opts.Store
	store.BeginLoad()

	spinner := ui.NewSpinner(fmt.Sprintf("Loading %s", opts.Title))
	spinner.Start()
	records, err := opts.Load(ctx)
	spinner.Stop()

	if err != nil {
		store.AbortLoad(err)
		return err
	}
	store.Load(records)
	applyPreset(store, opts.Preset)
	return nil
}

func applyPreset(store *view.Store, p view.Preset) {
	if len(p.Filter) > 0 || p.Sort.IsSet() {
		store.ApplyPreset(p)
	}
}
