package s0_snapshot

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/wonny/stockbalance/backend/internal/contracts"
)

// dateLayouts accepted for string observation dates
var dateLayouts = []string{
	"20060102", // sk_data (YYYYMMDD)
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// DecodeTable converts a source table into snapshot rows using the column map
// ⭐ SSOT: 외부 테이블 → StockSnapshotRow 변환은 여기서만
func DecodeTable(table *contracts.SnapshotTable, columns contracts.ColumnMap) ([]contracts.StockSnapshotRow, error) {
	index := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	var missing []string
	need := func(name string) int {
		pos := lookup(name)
		if pos < 0 {
			missing = append(missing, name)
		}
		return pos
	}

	entityPos := need(columns.EntityID)
	productPos := need(columns.ProductID)
	productNamePos := need(columns.ProductName)
	datePos := need(columns.ObservationDate)
	balancePos := need(columns.OnHandBalance)
	salesPos := need(columns.PeriodSales)
	if len(missing) > 0 {
		return nil, &contracts.MissingRequiredColumnError{Columns: missing}
	}

	// 선택 컬럼 (없으면 -1)
	rowKeyPos := lookup(columns.RowKey)
	entityNamePos := lookup(columns.EntityName)

	rows := make([]contracts.StockSnapshotRow, 0, len(table.Rows))
	for i, values := range table.Rows {
		if len(values) < len(table.Columns) {
			return nil, fmt.Errorf("row %d: expected %d values, got %d", i+1, len(table.Columns), len(values))
		}

		date, err := toDate(values[datePos])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+1, columns.ObservationDate, err)
		}
		balance, err := toDecimal(values[balancePos])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+1, columns.OnHandBalance, err)
		}
		sales, err := toDecimal(values[salesPos])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+1, columns.PeriodSales, err)
		}

		row := contracts.StockSnapshotRow{
			EntityID:        toString(values[entityPos]),
			ProductID:       toString(values[productPos]),
			ProductName:     toString(values[productNamePos]),
			ObservationDate: date,
			OnHandBalance:   balance,
			PeriodSales:     sales,
		}
		if rowKeyPos >= 0 {
			row.RowKey = toString(values[rowKeyPos])
		}
		if entityNamePos >= 0 {
			row.EntityName = toString(values[entityNamePos])
		}

		if row.EntityID == "" || row.ProductID == "" {
			return nil, fmt.Errorf("row %d: empty entity or product identifier", i+1)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// toDate accepts time values, YYYYMMDD integers and date strings; the result is a UTC calendar date
func toDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return calendarDate(x), nil
	case pgtype.Date:
		if !x.Valid {
			return time.Time{}, fmt.Errorf("null date")
		}
		return calendarDate(x.Time), nil
	case int:
		return dateFromInt(int64(x))
	case int32:
		return dateFromInt(int64(x))
	case int64:
		return dateFromInt(x)
	case float64:
		return dateFromInt(int64(x))
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendarDate(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	case nil:
		return time.Time{}, fmt.Errorf("null date")
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func dateFromInt(n int64) (time.Time, error) {
	if n < 10000101 || n > 99991231 {
		return time.Time{}, fmt.Errorf("date %d is not YYYYMMDD", n)
	}
	t, err := time.Parse("20060102", strconv.FormatInt(n, 10))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %d: %w", n, err)
	}
	return t, nil
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// toDecimal accepts numeric driver values; null counts as zero
func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case pgtype.Numeric:
		if !x.Valid {
			return decimal.Zero, nil
		}
		dv, err := x.Value()
		if err != nil {
			return decimal.Zero, err
		}
		return fromDriverValue(dv)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func fromDriverValue(v driver.Value) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		return decimal.NewFromString(x)
	default:
		return toDecimal(x)
	}
}
