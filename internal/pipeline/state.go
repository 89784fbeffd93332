package pipeline

import (
	"accidentcli/internal/config"
	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/table"
)

// Output kinds recorded in the manifest
const (
	OutputCSV      = "csv"
	OutputWorkbook = "xlsx"
	OutputJSON     = "json"
	OutputChart    = "png"
)

// Output is a file produced by a stage
type Output struct {
	Path string
	Kind string
}

// State carries data between the stages of one run. Stages run one at a
// time, so no locking is needed.
type State struct {
	RunID string

	// Raw tables as loaded; optional datasets that failed to load are absent
	Tables map[config.DatasetID]*table.Table
	// Cleaned state-wise tables
	Cleaned map[config.DatasetID]*table.Table

	Analysis *dataprocessing.Analysis

	// outputs produced by the stage currently executing
	outputs []Output
}

// NewState creates an empty run state
func NewState(runID string) *State {
	return &State{
		RunID:   runID,
		Tables:  make(map[config.DatasetID]*table.Table),
		Cleaned: make(map[config.DatasetID]*table.Table),
	}
}

// Table returns a loaded table, or nil
func (s *State) Table(id config.DatasetID) *table.Table {
	return s.Tables[id]
}

// CleanedTable returns a cleaned table, or nil
func (s *State) CleanedTable(id config.DatasetID) *table.Table {
	return s.Cleaned[id]
}

// AddOutput records a file written by the running stage
func (s *State) AddOutput(path, kind string) {
	s.outputs = append(s.outputs, Output{Path: path, Kind: kind})
}

// takeOutputs returns and clears the outputs of the finished stage
func (s *State) takeOutputs() []Output {
	out := s.outputs
	s.outputs = nil
	return out
}
