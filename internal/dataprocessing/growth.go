package dataprocessing

import (
	"math"

	"accidentcli/internal/config"
	"accidentcli/internal/table"
)

// CalculateGrowthRate returns a copy of t with a Growth_Rate column holding
// (end - start) / start * 100 per row. Rows where start is zero get NaN
// rather than an infinity; 0 -> 0 is NaN as well. An existing Growth_Rate
// column is replaced.
//
// The second return value is false when either column is absent or not numeric.
func CalculateGrowthRate(t *table.Table, startYear, endYear string) (*table.Table, bool) {
	start, ok := t.Column(startYear)
	if !ok || start.Kind != table.Numeric {
		return nil, false
	}
	end, ok := t.Column(endYear)
	if !ok || end.Kind != table.Numeric {
		return nil, false
	}

	rates := make([]float64, t.NumRows())
	for i := range rates {
		rates[i] = GrowthRate(start.Values[i], end.Values[i])
	}

	out, err := t.WithColumn(table.NewNumericColumn(config.GrowthRateColumn, rates))
	if err != nil {
		return nil, false
	}
	return out, true
}

// GrowthRate is the percentage change from start to end. Infinite results
// are reported as NaN.
func GrowthRate(start, end float64) float64 {
	rate := (end - start) / start * 100
	if math.IsInf(rate, 0) {
		return math.NaN()
	}
	return rate
}
