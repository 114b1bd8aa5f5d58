// Package query issues one grouped aggregation through three independent
// execution paths: textual SQL, a tabular helper, and a query builder.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Result column labels shared by all three execution paths.
const (
	colGroup = "group_name"
	colMin   = "min_monthly"
	colMax   = "max_monthly"
	colAvg   = "avg_monthly"
)

// AggregateSpec describes the aggregation once, so the three execution paths
// are adapters over a single definition rather than three hand-written
// copies: per distinct value of GroupColumn, the minimum, maximum and
// average of MeasureColumn divided by Divisor.
type AggregateSpec struct {
	// Table is the name of the persistent table to query.
	Table string
	// GroupColumn is the grouping key (e.g. DESIGNATION).
	GroupColumn string
	// MeasureColumn is the per-row measure (e.g. SALARY).
	MeasureColumn string
	// Divisor scales the measure (12 turns an annual figure monthly).
	Divisor float64
}

// Validate checks that every field needed to build the query is set.
func (s AggregateSpec) Validate() error {
	if s.Table == "" {
		return errors.New("aggregate spec: table is required")
	}
	if s.GroupColumn == "" {
		return errors.New("aggregate spec: group column is required")
	}
	if s.MeasureColumn == "" {
		return errors.New("aggregate spec: measure column is required")
	}
	if s.Divisor == 0 {
		return errors.New("aggregate spec: divisor must be non-zero")
	}
	return nil
}

// measureExpr returns the scaled measure expression. The divisor is always
// rendered with a decimal point so SQLite does not fall into integer division.
func (s AggregateSpec) measureExpr() string {
	return fmt.Sprintf("%s / %s", quoteIdent(s.MeasureColumn), formatDivisor(s.Divisor))
}

// SQL returns the textual form of the aggregation, shared by the direct and
// tabular paths.
func (s AggregateSpec) SQL() string {
	measure := s.measureExpr()
	return fmt.Sprintf(
		`SELECT %s AS %s, MIN(%s) AS %s, MAX(%s) AS %s, AVG(%s) AS %s FROM %s GROUP BY %s ORDER BY %s DESC`,
		quoteIdent(s.GroupColumn), colGroup,
		measure, colMin,
		measure, colMax,
		measure, colAvg,
		quoteIdent(s.Table),
		quoteIdent(s.GroupColumn),
		colAvg,
	)
}

// selectBuilder returns the structured form of the aggregation for the
// builder path.
func (s AggregateSpec) selectBuilder() sq.SelectBuilder {
	measure := s.measureExpr()
	return sq.Select(
		quoteIdent(s.GroupColumn)+" AS "+colGroup,
		"MIN("+measure+") AS "+colMin,
		"MAX("+measure+") AS "+colMax,
		"AVG("+measure+") AS "+colAvg,
	).
		From(quoteIdent(s.Table)).
		GroupBy(quoteIdent(s.GroupColumn)).
		OrderBy(colAvg + " DESC")
}

// formatDivisor renders a divisor as a SQL real literal.
func formatDivisor(d float64) string {
	if d == float64(int64(d)) {
		return strconv.FormatFloat(d, 'f', 1, 64)
	}
	return strconv.FormatFloat(d, 'g', -1, 64)
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
