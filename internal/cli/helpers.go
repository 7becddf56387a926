package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/sheetview/internal/config"
	"github.com/imgajeed76/sheetview/internal/editor"
	"github.com/imgajeed76/sheetview/internal/logging"
	"github.com/imgajeed76/sheetview/internal/order"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/source"
	"github.com/imgajeed76/sheetview/internal/ui/table"
	"github.com/imgajeed76/sheetview/internal/util"
	"github.com/imgajeed76/sheetview/internal/view"
)

// addDisplayFlags registers the flags shared by every command that shows
// a dataset.
func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("filter", nil, "Keep rows whose field contains text, as field=text (repeatable)")
	cmd.Flags().String("sort", "", "Sort by field[:asc|desc]")
	cmd.Flags().Bool("json", false, "Output the view as a JSON array")
	cmd.Flags().Bool("raw", false, "Output raw tab-separated values (for piping)")
	cmd.Flags().Bool("no-pager", false, "Disable interactive table view")
	cmd.Flags().Int("visible-rows", 0, "Rows per page (0 = view.visible_rows or fit terminal)")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Input format: auto, json, jsonl, yaml, csv, tsv (default: load.format)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := []string{string(source.FormatAuto)}
		for _, f := range source.Formats {
			names = append(names, string(f))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// session bundles what a display command needs besides its data source.
type session struct {
	cfg         *config.Config
	logger      *slog.Logger
	cleanup     func()
	display     table.DisplayOptions
	preset      view.Preset
	visibleRows int
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, util.NewError("Cannot read config").
			WithContext(config.Path()).
			WithMessage(err.Error()).
			WithSuggestion("sheetview config --list   # Check the current values").
			Wrap(err)
	}

	s := &session{cfg: cfg}
	s.display.JSON, _ = cmd.Flags().GetBool("json")
	s.display.Raw, _ = cmd.Flags().GetBool("raw")
	s.display.NoPager, _ = cmd.Flags().GetBool("no-pager")

	filters, _ := cmd.Flags().GetStringArray("filter")
	sortFlag, _ := cmd.Flags().GetString("sort")
	s.preset, err = parsePreset(filters, sortFlag)
	if err != nil {
		return nil, err
	}

	s.visibleRows, _ = cmd.Flags().GetInt("visible-rows")
	if s.visibleRows <= 0 {
		s.visibleRows = cfg.View.VisibleRows
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logFile, _ := cmd.Flags().GetString("log-file")
	s.logger, s.cleanup, err = logging.New(logging.Options{
		Path:    logFile,
		Verbose: verbose,
		// The TUI owns the terminal
		Stderr: !s.display.Interactive(),
	})
	if err != nil {
		return nil, util.NewError("Cannot open log file").
			WithContext(logFile).
			Wrap(err)
	}
	return s, nil
}

// tableOptions wires a fresh store and the configured editors to load.
func (s *session) tableOptions(title string, load func(ctx context.Context) ([]*record.Record, error)) table.Options {
	store := view.NewStore(view.Options{
		RowHeight:    s.cfg.View.RowHeight,
		VisibleCount: s.visibleRows,
		Logger:       s.logger,
	})
	return table.Options{
		Title:  title,
		Store:  store,
		Load:   load,
		Preset: s.preset,
		Classifier: editor.Classifier{
			LongText:   s.cfg.Editor.LongText,
			DateLayout: s.cfg.Editor.DateLayout,
		},
		Debounce:    s.cfg.Debounce(),
		RowHeight:   s.cfg.View.RowHeight,
		VisibleRows: s.visibleRows,
		Logger:      s.logger,
	}
}

// parsePreset reads --filter field=text flags and --sort.
func parsePreset(filters []string, sortFlag string) (view.Preset, error) {
	var p view.Preset
	for _, f := range filters {
		field, text, ok := strings.Cut(f, "=")
		if !ok || field == "" {
			return view.Preset{}, util.NewError(fmt.Sprintf("Invalid filter '%s'", f)).
				WithMessage("Filters are written as field=text").
				WithSuggestion("sheetview view people.json --filter name=al").
				Wrap(util.ErrInvalidValue)
		}
		p.Filter = p.Filter.With(field, text)
	}

	spec, err := order.Parse(sortFlag)
	if err != nil {
		return view.Preset{}, util.NewError(fmt.Sprintf("Invalid sort '%s'", sortFlag)).
			WithMessage(err.Error()).
			WithSuggestion("sheetview view people.json --sort age:desc").
			Wrap(err)
	}
	p.Sort = spec
	return p, nil
}
