package dataprocessing

import (
	"accidentcli/internal/table"
)

// ErrNoYearColumns is reported through AccidentStats.Err when a table has no
// year columns to aggregate
const ErrNoYearColumns = "No year columns found"

// AccidentStats summarizes a state-wise table across its year columns
type AccidentStats struct {
	// Years lists the aggregated year columns in table order
	Years []string `json:"years"`
	// TotalByYear maps each year column to the sum of its non-missing cells
	TotalByYear map[string]float64 `json:"total_by_year"`
	NumStates   int                `json:"num_states"`
	// LatestYear is the greatest year name in lexicographic order
	LatestYear  string  `json:"latest_year"`
	LatestTotal float64 `json:"latest_year_total"`

	// Err is set instead of the fields above when no year column exists
	Err string `json:"error,omitempty"`
}

// OK reports whether the statistics were computed. The zero value is not OK.
func (s AccidentStats) OK() bool {
	return s.Err == "" && len(s.Years) > 0
}

// GetAccidentStats computes per-year totals over the year columns found by name
func GetAccidentStats(t *table.Table) AccidentStats {
	return GetAccidentStatsForYears(t, t.YearColumns())
}

// GetAccidentStatsForYears computes per-year totals over an explicit list of
// year columns. Names not present as numeric columns are ignored.
func GetAccidentStatsForYears(t *table.Table, years []string) AccidentStats {
	years = t.DeclaredYears(years)
	if len(years) == 0 {
		return AccidentStats{Err: ErrNoYearColumns}
	}

	stats := AccidentStats{
		Years:       years,
		TotalByYear: make(map[string]float64, len(years)),
		NumStates:   t.NumRows(),
	}
	for _, year := range years {
		col, _ := t.Column(year)
		stats.TotalByYear[year] = col.Sum()
		if year > stats.LatestYear {
			stats.LatestYear = year
		}
	}
	stats.LatestTotal = stats.TotalByYear[stats.LatestYear]

	return stats
}

// FirstYear returns the smallest year name in lexicographic order
func (s AccidentStats) FirstYear() string {
	if len(s.Years) == 0 {
		return ""
	}
	first := s.Years[0]
	for _, y := range s.Years[1:] {
		if y < first {
			first = y
		}
	}
	return first
}
