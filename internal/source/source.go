// Package source reads record sequences from files, stdin and SQL
// queries. Every loader keeps the field order of the input, since the
// first record's field order becomes the table's column order.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
)

// Formats lists the concrete formats, for flag help and completion.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML, FormatCSV, FormatTSV}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatAuto, nil
	}
	if f == FormatAuto {
		return f, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", util.UnsupportedFormatError(s)
}

// Detect picks a format from the file extension, falling back to
// sniffing the first non-blank byte of data.
func Detect(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	switch {
	case len(trimmed) == 0:
		return FormatJSON
	case trimmed[0] == '[' || trimmed[0] == '/':
		return FormatJSON
	case trimmed[0] == '{':
		return FormatJSONL
	case trimmed[0] == '-':
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Load reads path ("-" for stdin) and decodes it as format.
func Load(ctx context.Context, path string, format Format) ([]*record.Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(os.Stdin)
		path = "<stdin>"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, util.NewError("Cannot read input").
			WithContext(path).
			WithMessage(err.Error()).
			Wrap(err)
	}
	return Parse(ctx, path, data, format)
}

// Parse decodes data. path is only used for format detection and error
// messages.
func Parse(ctx context.Context, path string, data []byte, format Format) ([]*record.Record, error) {
	if format == "" || format == FormatAuto {
		format = Detect(path, data)
	}

	var (
		records []*record.Record
		err     error
	)
	switch format {
	case FormatJSON:
		records, err = parseJSON(ctx, data)
	case FormatJSONL:
		records, err = parseJSONL(ctx, data)
	case FormatYAML:
		records, err = parseYAML(ctx, data)
	case FormatCSV:
		records, err = parseCSV(ctx, data, ',')
	case FormatTSV:
		records, err = parseCSV(ctx, data, '\t')
	default:
		return nil, util.UnsupportedFormatError(string(format))
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, util.MalformedInputError(path, string(format), err)
	}
	return records, nil
}

// text normalizes a decoded string to valid UTF-8.
func text(s string) record.Value {
	return record.String(util.ToValidUTF8(s))
}

func lineError(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}
