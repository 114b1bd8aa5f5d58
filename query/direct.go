package query

import (
	"context"
	"database/sql"
	"fmt"
)

// Direct executes the aggregation as textual SQL straight against the store.
func Direct(ctx context.Context, db *sql.DB, spec AggregateSpec) (Rows, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, spec.SQL())
	if err != nil {
		return nil, fmt.Errorf("direct query failed: %w", err)
	}
	defer rows.Close()

	var result Rows
	for rows.Next() {
		var row GroupRow
		if err := rows.Scan(&row.Group, &row.MinMonthly, &row.MaxMonthly, &row.AvgMonthly); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("direct query iteration failed: %w", err)
	}

	return result, nil
}
