package silver

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"lakeetl/internal/classify"
	"lakeetl/internal/objstore"
	"lakeetl/internal/schema"
	"lakeetl/pkg/records"
)

// reasonColumn is appended to every quarantine file.
const reasonColumn = "reason"

// Writer emits classified batches as CSV objects. A partition write is a
// replace: the destination prefix is cleared first, so re-running a period or
// refresh never accumulates stale objects.
type Writer struct {
	Store objstore.Store
}

// WriteValid replaces prefix with one CSV object holding the valid rows in
// contract column order. A header-only object is written for an empty batch so
// the partition's existence stays observable. Returns the row count.
func (w Writer) WriteValid(ctx context.Context, prefix, name string, contract schema.Contract, rows []records.Record) (int, error) {
	body, err := encode(contract.Columns(), func(emit func([]string)) {
		for _, rec := range rows {
			emit(recordFields(rec, contract.Columns()))
		}
	})
	if err != nil {
		return 0, err
	}
	if err := w.replace(ctx, prefix, name, body); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteInvalid replaces prefix with the quarantined rows plus their reason
// codes. Returns the row count.
func (w Writer) WriteInvalid(ctx context.Context, prefix, name string, contract schema.Contract, rows []classify.Classified) (int, error) {
	header := append(contract.Columns(), reasonColumn)
	body, err := encode(header, func(emit func([]string)) {
		for _, cl := range rows {
			emit(append(recordFields(cl.Rec, contract.Columns()), string(cl.Reason)))
		}
	})
	if err != nil {
		return 0, err
	}
	if err := w.replace(ctx, prefix, name, body); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (w Writer) replace(ctx context.Context, prefix, name string, body []byte) error {
	if err := w.Store.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("clear %s: %w", prefix, err)
	}
	if err := w.Store.Put(ctx, prefix+name, body); err != nil {
		return fmt.Errorf("write %s: %w", prefix+name, err)
	}
	return nil
}

func encode(header []string, rows func(emit func([]string))) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	var werr error
	rows(func(fields []string) {
		if werr == nil {
			werr = cw.Write(fields)
		}
	})
	if werr != nil {
		return nil, werr
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recordFields(rec records.Record, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = formatValue(rec[col])
	}
	return out
}

// formatValue renders one typed cell; nulls become empty fields and dates are
// written in ISO form regardless of the layout they arrived in.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	case decimal.Decimal:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
