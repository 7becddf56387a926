package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/imgajeed76/sheetview/internal/record"
)

// parseCSV reads a header row followed by data rows. Every cell is a
// string; a short row leaves its trailing fields absent.
func parseCSV(ctx context.Context, data []byte, comma rune) ([]*record.Record, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	rd := csv.NewReader(bytes.NewReader(data))
	rd.Comma = comma
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = comma == '\t'

	header, err := rd.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = text(h).AsString()
	}

	var records []*record.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) > len(names) {
			line, _ := rd.FieldPos(0)
			return nil, lineError(line, errors.New("more cells than header columns"))
		}

		r := record.New()
		for i, cell := range row {
			r.Set(names[i], text(cell))
		}
		records = append(records, r)
	}
	return records, nil
}
