package run

import (
	"strconv"

	"cloudsizer/internal/validate"
)

// ReportTable renders a validator report as the validator_report.csv layout.
func ReportTable(rep validate.Report) *Table {
	t := &Table{Header: []string{"row_index", "id", "status", "blocking_for", "reasons", "fix_hints"}}
	for _, row := range rep.Rows {
		t.Rows = append(t.Rows, map[string]string{
			"row_index":    strconv.Itoa(row.RowIndex),
			"id":           row.RowID,
			"status":       string(row.Status),
			"blocking_for": string(row.Blocking),
			"reasons":      row.Reasons,
			"fix_hints":    row.FixHints,
		})
	}
	return t
}
