package table

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/imgajeed76/sheetview/internal/record"
)

// CellText is how a stored value appears in a table cell. Absent fields
// are blank and line breaks are flattened so one record stays one line.
func CellText(v record.Value) string {
	if v.IsAbsent() {
		return ""
	}
	return flatten(v.String())
}

func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

// Rows renders entries as text cells in column order.
func Rows(columns []string, entries []record.Entry) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = CellText(e.Record.Get(col))
		}
		rows[i] = row
	}
	return rows
}

// WriteJSON writes entries as a JSON array of objects. Fields keep their
// record order and their types; absent fields are omitted and nested
// values are written back as JSON.
func WriteJSON(w io.Writer, entries []record.Entry) error {
	bw := bufio.NewWriter(w)
	if len(entries) == 0 {
		bw.WriteString("[]\n")
		return bw.Flush()
	}

	bw.WriteString("[")
	for i, e := range entries {
		if i > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n  {")
		n := 0
		var err error
		e.Record.Each(func(name string, v record.Value) bool {
			if v.IsAbsent() {
				return true
			}
			var key, val []byte
			key, err = json.Marshal(name)
			if err != nil {
				return false
			}
			val, err = jsonValue(v)
			if err != nil {
				return false
			}
			if n > 0 {
				bw.WriteString(",")
			}
			fmt.Fprintf(bw, "\n    %s: %s", key, val)
			n++
			return true
		})
		if err != nil {
			return err
		}
		if n > 0 {
			bw.WriteString("\n  ")
		}
		bw.WriteString("}")
	}
	bw.WriteString("\n]\n")
	return bw.Flush()
}

func jsonValue(v record.Value) ([]byte, error) {
	switch v.Kind() {
	case record.KindRaw:
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(v.AsString()), "    ", "  "); err != nil {
			return json.Marshal(v.AsString())
		}
		return buf.Bytes(), nil
	case record.KindNumber:
		// JSON has no NaN or Infinity
		if n := v.AsNumber(); math.IsNaN(n) || math.IsInf(n, 0) {
			return []byte("null"), nil
		}
	}
	return json.Marshal(v.Interface())
}

// WriteRaw writes one tab-separated line per entry, without a header.
func WriteRaw(w io.Writer, columns []string, entries []record.Entry) error {
	bw := bufio.NewWriter(w)
	for _, row := range Rows(columns, entries) {
		bw.WriteString(strings.Join(row, "\t"))
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WritePlain writes an aligned table for non-TTY output. Cells are
// never truncated.
func WritePlain(w io.Writer, columns []string, entries []record.Entry) error {
	bw := bufio.NewWriter(w)
	if len(columns) == 0 {
		fmt.Fprintln(bw, "(0 rows)")
		return bw.Flush()
	}

	rows := Rows(columns, entries)

	// Column widths based on display width, not bytes
	colWidths := make([]int, len(columns))
	for i, name := range columns {
		colWidths[i] = runewidth.StringWidth(name)
	}
	for _, row := range rows {
		for i, val := range row {
			if cw := runewidth.StringWidth(val); cw > colWidths[i] {
				colWidths[i] = cw
			}
		}
	}

	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				bw.WriteString("  ")
			}
			if i == len(cells)-1 {
				bw.WriteString(cell)
			} else {
				bw.WriteString(pad(cell, colWidths[i]))
			}
		}
		bw.WriteString("\n")
	}

	writeLine(columns)
	seps := make([]string, len(columns))
	for i, cw := range colWidths {
		seps[i] = strings.Repeat("─", cw)
	}
	writeLine(seps)
	for _, row := range rows {
		writeLine(row)
	}

	fmt.Fprintf(bw, "\n(%d rows)\n", len(rows))
	return bw.Flush()
}

// pad adds spaces to reach the desired display width (no truncation).
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate shortens a string to fit width display cells, adding "..."
// if needed.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width > 3 {
		return runewidth.Truncate(s, width, "...")
	}
	return runewidth.Truncate(s, width, "")
}

// PadOrTruncate pads or truncates to exactly width display cells.
func PadOrTruncate(s string, width int) string {
	return pad(Truncate(s, width), width)
}
