package query

import (
	"context"
	"database/sql"
	"fmt"
)

// WithBuilder executes the aggregation through the query-builder abstraction,
// bound to a session scoped to this call: a dedicated connection is taken
// from the pool and released on every exit path.
func WithBuilder(ctx context.Context, db *sql.DB, spec AggregateSpec) (Rows, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	query, args, err := spec.selectBuilder().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregate query: %w", err)
	}

	session, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session: %w", err)
	}
	defer session.Close()

	rows, err := session.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("builder query failed: %w", err)
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
		return nil, fmt.Errorf("builder query iteration failed: %w", err)
	}

	return result, nil
}
