package exporter

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"accidentcli/internal/config"
	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

// Summary is the JSON digest of one analysis run
type Summary struct {
	GeneratedAt   time.Time                     `json:"generated_at"`
	Accidents     *dataprocessing.AccidentStats `json:"accidents,omitempty"`
	Fatalities    *dataprocessing.AccidentStats `json:"fatalities,omitempty"`
	TopAccidents  []StateValue                  `json:"top_accidents,omitempty"`
	TopFatalities []StateValue                  `json:"top_fatalities,omitempty"`
	Growth        *GrowthSummary                `json:"growth,omitempty"`
}

// StateValue is one ranked state
type StateValue struct {
	State string  `json:"state"`
	Value float64 `json:"value"`
}

// GrowthSummary lists per-state growth between two years. A nil rate means
// the start year value was zero.
type GrowthSummary struct {
	StartYear string        `json:"start_year"`
	EndYear   string        `json:"end_year"`
	States    []StateGrowth `json:"states"`
}

// StateGrowth is the growth rate of one state
type StateGrowth struct {
	State string   `json:"state"`
	Rate  *float64 `json:"rate"`
}

// NewSummary builds the JSON digest from an analysis
func NewSummary(a *dataprocessing.Analysis, now time.Time) *Summary {
	s := &Summary{GeneratedAt: now.UTC()}
	if a.AccidentStats.OK() {
		stats := a.AccidentStats
		s.Accidents = &stats
	}
	if a.FatalityStats.OK() {
		stats := a.FatalityStats
		s.Fatalities = &stats
	}
	s.TopAccidents = stateValues(a.TopAccidents)
	s.TopFatalities = stateValues(a.TopFatalities)

	if a.AccidentsGrowth != nil {
		labels, _ := a.AccidentsGrowth.Column(config.StateColumn)
		rates, _ := a.AccidentsGrowth.Column(config.GrowthRateColumn)
		g := &GrowthSummary{StartYear: a.GrowthStart, EndYear: a.GrowthEnd}
		for r := 0; r < a.AccidentsGrowth.NumRows(); r++ {
			sg := StateGrowth{State: label(labels, r)}
			if v := rates.Values[r]; !math.IsNaN(v) {
				sg.Rate = &v
			}
			g.States = append(g.States, sg)
		}
		s.Growth = g
	}
	return s
}

// ExportSummaryJSON writes the summary as indented JSON
func ExportSummaryJSON(path string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode summary", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewStorageError("failed to write "+path, err)
	}
	return nil
}

func stateValues(t *table.Table) []StateValue {
	if t == nil || t.NumCols() < 2 {
		return nil
	}
	cols := t.Columns()
	labels, values := cols[0], cols[1]
	out := make([]StateValue, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		out = append(out, StateValue{State: label(labels, r), Value: values.Values[r]})
	}
	return out
}

func label(col *table.Column, row int) string {
	if col == nil || col.Kind != table.Text {
		return ""
	}
	return col.Labels[row]
}
