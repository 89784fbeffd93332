package dataprocessing

import (
	"math"
	"sort"

	"accidentcli/internal/config"
	"accidentcli/internal/table"
)

// GetTopStates returns the n states with the largest values in yearCol, as a
// two-column table (State/UT, yearCol) sorted descending. Ties keep their
// original row order and rows with a missing value are left out. n <= 0
// means config.DefaultTopN.
//
// The second return value is false when the table has no State/UT column or
// no numeric column named yearCol.
func GetTopStates(t *table.Table, yearCol string, n int) (*table.Table, bool) {
	if !t.Has(config.StateColumn) {
		return nil, false
	}
	values, ok := t.Column(yearCol)
	if !ok || values.Kind != table.Numeric {
		return nil, false
	}
	if n <= 0 {
		n = config.DefaultTopN
	}

	rows := make([]int, 0, t.NumRows())
	for r, v := range values.Values {
		if !math.IsNaN(v) {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return values.Values[rows[i]] > values.Values[rows[j]]
	})
	if len(rows) > n {
		rows = rows[:n]
	}

	selected, err := t.Select(config.StateColumn, yearCol)
	if err != nil {
		return nil, false
	}
	return selected.Take(rows), true
}
