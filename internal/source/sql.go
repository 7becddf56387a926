package source

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/netip"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/imgajeed76/sheetview/internal/record"
)

// Querier runs a query. *db.DB and *pgxpool.Pool both satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FromQuery runs query and turns each result row into a record whose
// fields follow the result columns.
func FromQuery(ctx context.Context, q Querier, query string, args ...any) ([]*record.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	colNames := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		colNames[i] = text(fd.Name).AsString()
	}

	var records []*record.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		r := record.New()
		for i, v := range values {
			if i < len(colNames) {
				r.Set(colNames[i], SQLValue(v))
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SQLValue converts a value decoded by pgx. Times become RFC 3339
// strings, composite values become raw JSON.
func SQLValue(v any) record.Value {
	switch val := v.(type) {
	case nil:
		return record.Null()
	case bool:
		return record.Bool(val)
	case int16:
		return record.Number(float64(val))
	case int32:
		return record.Number(float64(val))
	case int64:
		return record.Number(float64(val))
	case int:
		return record.Number(float64(val))
	case uint32:
		return record.Number(float64(val))
	case float32:
		return record.Number(float64(val))
	case float64:
		return record.Number(val)
	case string:
		return text(val)
	case []byte:
		if utf8.Valid(val) {
			return text(string(val))
		}
		return record.String(fmt.Sprintf("[%d bytes]", len(val)))
	case time.Time:
		return record.String(val.Format(time.RFC3339))
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return record.Null()
		}
		return record.Number(f.Float64)
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return record.Number(f)
	case [16]byte:
		return record.String(formatUUID(val))
	case netip.Prefix:
		return record.String(val.String())
	case pgtype.Interval:
		return record.String(fmt.Sprintf("%d months %d days %dus", val.Months, val.Days, val.Microseconds))
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return record.String(fmt.Sprintf("%v", val))
		}
		return record.Raw(string(b))
	case fmt.Stringer:
		return text(val.String())
	default:
		return text(fmt.Sprintf("%v", v))
	}
}

func formatUUID(b [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
