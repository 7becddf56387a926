package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/jsonc"

	"github.com/imgajeed76/sheetview/internal/record"
	"github.com/imgajeed76/sheetview/internal/util"
)

// parseJSON reads a top-level array of objects. Comments and trailing
// commas are stripped first.
func parseJSON(ctx context.Context, data []byte) ([]*record.Record, error) {
	stripped := jsonc.ToJSON(repairJSON(data))
	if len(bytes.TrimSpace(stripped)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(stripped))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("top level is not an array")
	}

	var records []*record.Record
	for i := 0; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		records = append(records, r)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after the array")
	}
	return records, nil
}

// parseJSONL reads one object per non-blank line.
func parseJSONL(ctx context.Context, data []byte) ([]*record.Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var records []*record.Record
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := bytes.TrimSpace(repairJSON(scanner.Bytes()))
		if len(b) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
		r, err := decodeObject(dec)
		if err != nil {
			return nil, lineError(line, err)
		}
		records = append(records, r)
	}
	return records, scanner.Err()
}

// repairJSON drops a UTF-8 byte order mark and repairs invalid bytes
// before encoding/json would turn them into U+FFFD.
func repairJSON(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if utf8.Valid(data) {
		return data
	}
	return []byte(util.ToValidUTF8(string(data)))
}

// decodeObject reads one JSON object from dec in field order.
func decodeObject(dec *json.Decoder) (*record.Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}

	r := record.New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		r.Set(util.ToValidUTF8(name), v)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return r, nil
}

// jsonValue converts one encoded JSON value. Objects and arrays are kept
// as compact raw text.
func jsonValue(raw json.RawMessage) (record.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return record.Value{}, errors.New("empty value")
	}

	switch raw[0] {
	case 'n':
		return record.Null(), nil
	case 't':
		return record.Bool(true), nil
	case 'f':
		return record.Bool(false), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return record.Value{}, err
		}
		return text(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return record.Value{}, err
		}
		return record.Raw(buf.String()), nil
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		// Out of range literals such as 1e400 read as ±Inf.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return record.Value{}, err
		}
		return record.Number(n), nil
	}
}
