package query

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/salarysql/salarysql/domain/model"
)

// Render writes a result set to w in human-readable tabular form.
// The exact formatting is not contractual.
func Render(w io.Writer, title string, rows Rows) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", colGroup, colMin, colMax, colAvg)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", row.Group, row.MinMonthly, row.MaxMonthly, row.AvgMonthly)
	}
	return tw.Flush()
}

// RenderTable writes an in-memory table to w in human-readable tabular form.
func RenderTable(w io.Writer, title string, t *model.Table) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for i, name := range t.Header() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, name)
	}
	fmt.Fprintln(tw)

	for _, record := range t.Records() {
		for i, value := range record {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, value)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
