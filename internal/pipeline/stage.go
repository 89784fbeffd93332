package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Stage IDs and names
const (
	StageIDLoad    = "load"
	StageIDClean   = "clean"
	StageIDAnalyze = "analyze"
	StageIDExport  = "export"
	StageIDCharts  = "charts"

	StageNameLoad    = "Load Datasets"
	StageNameClean   = "Clean State Data"
	StageNameAnalyze = "Analyze"
	StageNameExport  = "Export"
	StageNameCharts  = "Render Charts"
)

// Stage is a single step of a pipeline run
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// GetDependencies returns the IDs of stages that must run first
	GetDependencies() []string

	// Validate checks if the stage can be executed with the current state
	Validate(state *State) error

	// Execute runs the stage with the given context and run state
	Execute(ctx context.Context, state *State) error
}

// StageStatus represents the outcome of a stage
type StageStatus string

const (
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// BaseStage provides common functionality for stage implementations
type BaseStage struct {
	id           string
	name         string
	dependencies []string
}

// NewBaseStage creates a new base stage
func NewBaseStage(id, name string, dependencies ...string) BaseStage {
	return BaseStage{id: id, name: name, dependencies: dependencies}
}

// ID returns the stage ID
func (b *BaseStage) ID() string {
	return b.id
}

// Name returns the stage name
func (b *BaseStage) Name() string {
	return b.name
}

// GetDependencies returns the stage dependencies
func (b *BaseStage) GetDependencies() []string {
	return b.dependencies
}

// Validate provides a default validation that always passes
func (b *BaseStage) Validate(state *State) error {
	return nil
}

// SkipError reports that a stage chose not to run. It is not a failure.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// Skip returns an error marking the stage as skipped
func Skip(format string, args ...interface{}) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err marks a skipped stage
func IsSkip(err error) bool {
	var skip *SkipError
	return errors.As(err, &skip)
}
