package dataprocessing

import (
	"accidentcli/internal/table"
)

// AnalysisOptions selects the columns and sizes used by Analyze
type AnalysisOptions struct {
	TopN int
	// Years restricts aggregation to declared year columns. Empty means
	// detect them by name.
	Years []string
	// GrowthStart and GrowthEnd default to the first and latest year
	GrowthStart string
	GrowthEnd   string
}

// Analysis collects the aggregates computed over the cleaned state tables
type Analysis struct {
	AccidentStats   AccidentStats
	FatalityStats   AccidentStats
	TopAccidents    *table.Table
	TopFatalities   *table.Table
	AccidentsGrowth *table.Table
	GrowthStart     string
	GrowthEnd       string
}

// Analyze computes statistics, latest-year rankings and growth rates.
// Either table may be nil; the matching fields are then left empty.
func Analyze(accidents, fatalities *table.Table, opts AnalysisOptions) *Analysis {
	a := &Analysis{}

	if accidents != nil {
		a.AccidentStats = statsFor(accidents, opts.Years)
		if a.AccidentStats.OK() {
			a.TopAccidents, _ = GetTopStates(accidents, a.AccidentStats.LatestYear, opts.TopN)

			a.GrowthStart = firstNonEmpty(opts.GrowthStart, a.AccidentStats.FirstYear())
			a.GrowthEnd = firstNonEmpty(opts.GrowthEnd, a.AccidentStats.LatestYear)
			if a.GrowthStart != a.GrowthEnd {
				a.AccidentsGrowth, _ = CalculateGrowthRate(accidents, a.GrowthStart, a.GrowthEnd)
			}
		}
	}

	if fatalities != nil {
		a.FatalityStats = statsFor(fatalities, opts.Years)
		if a.FatalityStats.OK() {
			a.TopFatalities, _ = GetTopStates(fatalities, a.FatalityStats.LatestYear, opts.TopN)
		}
	}

	return a
}

func statsFor(t *table.Table, years []string) AccidentStats {
	if len(years) > 0 {
		return GetAccidentStatsForYears(t, years)
	}
	return GetAccidentStats(t)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
