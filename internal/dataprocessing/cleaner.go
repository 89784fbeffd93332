package dataprocessing

import (
	"math"
	"regexp"

	"accidentcli/internal/config"
	"accidentcli/internal/table"
)

// aggregateRow matches region labels that summarize other rows
var aggregateRow = regexp.MustCompile(`(?i)total|all india`)

// CleanStateData removes aggregate rows ("Total", "All India") from a
// state-wise table and replaces every missing numeric cell with 0. Rows with
// an empty label are kept. The input table is not modified.
//
// Zero-filling conflates "not reported" with "zero accidents"; downstream
// sums and rankings inherit that.
func CleanStateData(t *table.Table) *table.Table {
	kept := t
	if labels, ok := t.Column(config.StateColumn); ok && labels.Kind == table.Text {
		kept = t.Filter(func(row int) bool {
			return !aggregateRow.MatchString(labels.Labels[row])
		})
	}

	cols := make([]*table.Column, 0, kept.NumCols())
	for _, col := range kept.Columns() {
		if col.Kind != table.Numeric {
			cols = append(cols, col.Clone())
			continue
		}
		filled := make([]float64, len(col.Values))
		for i, v := range col.Values {
			if !math.IsNaN(v) {
				filled[i] = v
			}
		}
		cols = append(cols, &table.Column{Name: col.Name, Kind: table.Numeric, Values: filled})
	}
	return table.MustNew(cols...)
}

// DroppedRows returns how many rows cleaning removed
func DroppedRows(before, after *table.Table) int {
	return before.NumRows() - after.NumRows()
}
