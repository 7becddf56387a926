package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/sheetview/internal/db"
	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/source"
	"github.com/imgajeed76/sheetview/internal/ui/table"
	"github.com/imgajeed76/sheetview/internal/util"
)

func newSQLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql [url] <query>",
		Short: "Show the result of a PostgreSQL query as a table",
		Long: `Run a query against PostgreSQL and show the result rows as a table.

The connection URL is taken from the first argument, then from the
database.url config key, then from $DATABASE_URL. Each result column
becomes a field; edits stay in memory and are never written back.

Examples:
  sheetview sql postgres://localhost/app "SELECT * FROM users"
  sheetview config database.url postgres://localhost/app
  sheetview sql "SELECT id, email FROM users" --sort email`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSQL,
	}

	addDisplayFlags(cmd)

	return cmd
}

func runSQL(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.cleanup()

	query := args[len(args)-1]
	url := ""
	if len(args) == 2 {
		url = args[0]
	}
	if url == "" {
		url = s.cfg.Database.URL
	}
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return util.MissingArgumentError("url", `sheetview sql postgres://localhost/app "SELECT * FROM users"`)
	}

	timeout := s.cfg.QueryTimeout()
	load := func(ctx context.Context) ([]*record.Record, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		conn, err := db.Connect(ctx, url)
		if err != nil {
			return nil, util.DatabaseConnectionError(url, err)
		}
		defer conn.Close()

		s.logger.Debug("running query", "timeout", timeout.String())
		records, err := source.FromQuery(ctx, conn, query)
		if err != nil {
			return nil, util.NewError("Query failed").
				WithMessage(err.Error()).
				WithContext(query).
				Wrap(err)
		}
		return records, nil
	}

	return table.Display(cmd.Context(), s.tableOptions("sql", load), s.display)
}
