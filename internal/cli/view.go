package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/source"
	"github.com/imgajeed76/sheetview/internal/ui/table"
	"github.com/imgajeed76/sheetview/internal/util"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Show a file of records as a table",
		Long: `Load a list of records and show it as an interactive table.

The file must hold a list of objects: a JSON array, JSON Lines, a YAML
sequence of mappings, or CSV/TSV with a header row. Use "-" to read
from stdin. The first record's fields become the columns.

When stdout is not a terminal, or with --no-pager, --json or --raw, the
filtered and sorted rows are printed instead.

Examples:
  sheetview view people.json
  sheetview view people.csv --filter city=ber --sort age:desc
  cat people.jsonl | sheetview view - --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runView,
	}

	addDisplayFlags(cmd)
	addFormatFlag(cmd)

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return util.MissingArgumentError("file", "sheetview view people.json")
	}
	path := args[0]

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.cleanup()

	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag == "" {
		formatFlag = s.cfg.Load.Format
	}
	format, err := source.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	title := filepath.Base(path)
	if path == "-" {
		title = "stdin"
	}
	load := func(ctx context.Context) ([]*record.Record, error) {
		return source.Load(ctx, path, format)
	}

	s.logger.Debug("viewing file", "path", path, "format", string(format))
	return table.Display(cmd.Context(), s.tableOptions(title, load), s.display)
}
