package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/salarysql/salarysql/domain/model"
)

// GroupRow is one aggregate result: a group value with the minimum, maximum
// and average of the scaled measure.
type GroupRow struct {
	Group      string  `db:"group_name"`
	MinMonthly float64 `db:"min_monthly"`
	MaxMonthly float64 `db:"max_monthly"`
	AvgMonthly float64 `db:"avg_monthly"`
}

// Rows is a result set, one GroupRow per distinct group value.
type Rows []GroupRow

// Sorted returns a copy ordered by group value. Result order is not part of
// the query contract, so comparisons normalize order first.
func (r Rows) Sorted() Rows {
	out := make(Rows, len(r))
	copy(out, r)
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

// Equivalent reports whether two result sets carry the same
// (group, min, max, avg) tuples, exact for min/max and within the given
// relative tolerance for avg. Row order is ignored.
func Equivalent(a, b Rows, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}

	as, bs := a.Sorted(), b.Sorted()
	for i := range as {
		if as[i].Group != bs[i].Group {
			return false
		}
		if as[i].MinMonthly != bs[i].MinMonthly || as[i].MaxMonthly != bs[i].MaxMonthly {
			return false
		}
		if !withinTolerance(as[i].AvgMonthly, bs[i].AvgMonthly, tolerance) {
			return false
		}
	}
	return true
}

// withinTolerance compares two floats with relative tolerance.
func withinTolerance(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	largest := math.Max(math.Abs(a), math.Abs(b))
	return diff <= largest*tolerance
}

// FromTable converts a tabular result back into Rows so the tabular path can
// join the shared equivalence check.
func FromTable(t *model.Table) (Rows, error) {
	header := t.Header()
	groupIdx := header.Index(colGroup)
	minIdx := header.Index(colMin)
	maxIdx := header.Index(colMax)
	avgIdx := header.Index(colAvg)
	if groupIdx < 0 || minIdx < 0 || maxIdx < 0 || avgIdx < 0 {
		return nil, fmt.Errorf("table %s does not carry aggregate result columns", t.Name())
	}

	rows := make(Rows, 0, len(t.Records()))
	for _, record := range t.Records() {
		minV, err := strconv.ParseFloat(record[minIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", colMin, record[minIdx], err)
		}
		maxV, err := strconv.ParseFloat(record[maxIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", colMax, record[maxIdx], err)
		}
		avgV, err := strconv.ParseFloat(record[avgIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", colAvg, record[avgIdx], err)
		}

		rows = append(rows, GroupRow{
			Group:      record[groupIdx],
			MinMonthly: minV,
			MaxMonthly: maxV,
			AvgMonthly: avgV,
		})
	}
	return rows, nil
}
