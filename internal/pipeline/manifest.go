package pipeline

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
)

// RunManifest records what a pipeline run did and what it produced
type RunManifest struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`

	// Datasets maps dataset IDs to the row counts loaded
	Datasets map[string]int `json:"datasets"`

	Stages  []StageExecution `json:"stages"`
	Outputs []OutputFile     `json:"outputs"`

	// Current status: "running", "completed", "failed"
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string      `json:"stage_id"`
	StageName string      `json:"stage_name"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Duration  string      `json:"duration"`
	Status    StageStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// OutputFile describes a written file and its BLAKE2b-256 checksum
type OutputFile struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size"`
	Checksum string `json:"blake2b_256"`
	Stage    string `json:"stage"`
}

// NewRunManifest creates a manifest for a run starting now
func NewRunManifest(runID string) *RunManifest {
	return &RunManifest{
		ID:        runID,
		StartTime: time.Now(),
		Datasets:  make(map[string]int),
		Stages:    []StageExecution{},
		Outputs:   []OutputFile{},
		Status:    "running",
	}
}

// RecordStageStart records the start of a stage execution
func (m *RunManifest) RecordStageStart(stageID, stageName string) {
	m.Stages = append(m.Stages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    StageStatusRunning,
	})
}

// RecordStageCompletion records the completion of a stage
func (m *RunManifest) RecordStageCompletion(stageID string) {
	m.finishStage(stageID, StageStatusCompleted, "", "")
}

// RecordStageSkip records a stage that chose not to run
func (m *RunManifest) RecordStageSkip(stageID, reason string) {
	m.finishStage(stageID, StageStatusSkipped, reason, "")
}

// RecordStageFailure records a stage failure and fails the run
func (m *RunManifest) RecordStageFailure(stageID string, err error) {
	m.finishStage(stageID, StageStatusFailed, "", err.Error())
	m.Status = "failed"
	m.Error = fmt.Sprintf("stage %s failed: %v", stageID, err)
}

func (m *RunManifest) finishStage(stageID string, status StageStatus, message, errText string) {
	for i := len(m.Stages) - 1; i >= 0; i-- {
		if m.Stages[i].StageID != stageID {
			continue
		}
		now := time.Now()
		m.Stages[i].EndTime = now
		m.Stages[i].Duration = now.Sub(m.Stages[i].StartTime).String()
		m.Stages[i].Status = status
		m.Stages[i].Message = message
		m.Stages[i].Error = errText
		return
	}
}

// StageStatus returns the recorded status of a stage, or "" if it never ran
func (m *RunManifest) StageStatus(stageID string) StageStatus {
	for _, s := range m.Stages {
		if s.StageID == stageID {
			return s.Status
		}
	}
	return ""
}

// AddOutput checksums a written file and records it
func (m *RunManifest) AddOutput(stageID string, out Output) error {
	size, sum, err := checksumFile(out.Path)
	if err != nil {
		return err
	}
	m.Outputs = append(m.Outputs, OutputFile{
		Path:     out.Path,
		Kind:     out.Kind,
		Size:     size,
		Checksum: sum,
		Stage:    stageID,
	})
	return nil
}

// Complete marks the run as completed
func (m *RunManifest) Complete() {
	m.EndTime = time.Now()
	if m.Status == "running" {
		m.Status = "completed"
	}
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// checksumFile returns the size and hex BLAKE2b-256 digest of a file
func checksumFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open output %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return 0, "", err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash output %s: %w", path, err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
