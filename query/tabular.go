package query

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/salarysql/salarysql/domain/model"
)

// Tabular executes the same textual SQL as the direct path but materializes
// the result set straight into an in-memory table.
func Tabular(ctx context.Context, db *sql.DB, spec AggregateSpec) (*model.Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	// Wrap the shared handle; closing it here would close the store.
	sdb := sqlx.NewDb(db, DriverNameHint)

	rows, err := sdb.QueryxContext(ctx, spec.SQL())
	if err != nil {
		return nil, fmt.Errorf("tabular query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var records []model.Record
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		record := make(model.Record, len(values))
		for i, v := range values {
			record[i] = valueToString(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tabular query iteration failed: %w", err)
	}

	return model.NewTable(spec.Table+"_monthly", model.NewHeader(columns), records), nil
}

// DriverNameHint tells sqlx which bindvar dialect the wrapped handle speaks.
const DriverNameHint = "sqlite"

// valueToString renders a driver value as its string form; NULL becomes "".
func valueToString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(value)
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
