package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"accidentcli/internal/config"
	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/infrastructure"
)

// Pipeline runs the accident statistics stages in order:
// load, clean, analyze, export, charts.
type Pipeline struct {
	cfg    *config.Config
	paths  *config.Paths
	tel    *infrastructure.Telemetry
	logger *slog.Logger

	overrides map[config.DatasetID]string
	stages    []Stage
}

// New creates a pipeline. A nil telemetry falls back to disabled telemetry
// and a nil logger to the process logger.
func New(cfg *config.Config, paths *config.Paths, tel *infrastructure.Telemetry, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	base := logger
	logger = infrastructure.WithComponent(base, "pipeline")

	if tel == nil {
		var err error
		tel, err = infrastructure.InitializeTelemetry(config.TelemetryConfig{TraceExporter: "none"}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	p := &Pipeline{
		cfg:       cfg,
		paths:     paths,
		tel:       tel,
		logger:    logger,
		overrides: make(map[config.DatasetID]string),
	}

	loader := dataprocessing.NewLoader(paths, base)
	p.stages = []Stage{
		NewLoadStage(loader, p.overrides, tel, logger),
		NewCleanStage(tel, logger),
		NewAnalyzeStage(cfg.Analysis, logger),
		NewExportStage(paths),
		NewChartsStage(cfg.Charts, cfg.Analysis.Years, paths, base),
	}
	return p, nil
}

// SetOverride reads a dataset from path instead of its conventional location
func (p *Pipeline) SetOverride(id config.DatasetID, path string) {
	p.overrides[id] = path
}

// Stages returns the registered stages in execution order
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes every stage and writes the run manifest
func (p *Pipeline) Run(ctx context.Context) (*RunManifest, error) {
	_, manifest, err := p.Execute(ctx)
	return manifest, err
}

// Execute runs the target stages together with their dependencies. With no
// targets every stage runs. When any output file was written, the manifest
// and the metrics textfile are saved to the output directory.
func (p *Pipeline) Execute(ctx context.Context, targets ...string) (*State, *RunManifest, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	selected, err := p.resolve(targets)
	if err != nil {
		return nil, nil, err
	}

	state := NewState(runID)
	manifest := NewRunManifest(runID)

	p.logger.InfoContext(ctx, "pipeline_started",
		slog.String("run_id", runID),
		slog.Int("stages", len(selected)))

	runErr := p.executeSequential(ctx, selected, state, manifest)

	for id, t := range state.Tables {
		manifest.Datasets[string(id)] = t.NumRows()
	}
	manifest.Complete()

	if len(manifest.Outputs) > 0 {
		if err := p.persist(ctx, manifest); err != nil && runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		p.logger.ErrorContext(ctx, "pipeline_failed",
			slog.String("run_id", runID),
			slog.String("error", runErr.Error()))
		return state, manifest, runErr
	}

	p.logger.InfoContext(ctx, "pipeline_completed",
		slog.String("run_id", runID),
		slog.Int("outputs", len(manifest.Outputs)))
	return state, manifest, nil
}

// resolve returns the stages needed for targets, in registration order
func (p *Pipeline) resolve(targets []string) ([]Stage, error) {
	if len(targets) == 0 {
		return p.Stages(), nil
	}

	byID := make(map[string]Stage, len(p.stages))
	for _, s := range p.stages {
		byID[s.ID()] = s
	}

	needed := make(map[string]bool)
	var visit func(id string) error
	visit = func(id string) error {
		if needed[id] {
			return nil
		}
		s, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown stage %q", id)
		}
		needed[id] = true
		for _, dep := range s.GetDependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range targets {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	var selected []Stage
	for _, s := range p.stages {
		if needed[s.ID()] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

// executeSequential runs stages in order and stops at the first failure
func (p *Pipeline) executeSequential(ctx context.Context, stages []Stage, state *State, manifest *RunManifest) error {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before stage %s: %w", stage.ID(), err)
		}
		if err := p.executeStage(ctx, stage, state, manifest); err != nil {
			return err
		}
	}
	return nil
}

// executeStage runs a single stage inside its own span
func (p *Pipeline) executeStage(ctx context.Context, stage Stage, state *State, manifest *RunManifest) error {
	stageID := stage.ID()
	started := time.Now()
	stageCtx, span := p.tel.StartStage(ctx, stageID)

	p.logger.InfoContext(stageCtx, "executing_stage",
		slog.String("stage_id", stageID),
		slog.String("stage_name", stage.Name()))
	manifest.RecordStageStart(stageID, stage.Name())

	err := stage.Validate(state)
	if err == nil {
		err = stage.Execute(stageCtx, state)
	}

	for _, out := range state.takeOutputs() {
		if addErr := manifest.AddOutput(stageID, out); addErr != nil {
			p.logger.WarnContext(stageCtx, "output_checksum_failed",
				slog.String("path", out.Path),
				slog.String("error", addErr.Error()))
			continue
		}
		p.tel.RecordFile(stageCtx, out.Kind)
	}

	switch {
	case err == nil:
		manifest.RecordStageCompletion(stageID)
		p.tel.EndStage(stageCtx, span, stageID, started, nil)
		p.logger.InfoContext(stageCtx, "stage_completed_successfully",
			slog.String("stage_id", stageID),
			slog.Duration("duration", time.Since(started)))
		return nil

	case IsSkip(err):
		manifest.RecordStageSkip(stageID, err.Error())
		p.tel.EndStage(stageCtx, span, stageID, started, nil)
		p.logger.InfoContext(stageCtx, "stage_skipped",
			slog.String("stage_id", stageID),
			slog.String("reason", err.Error()))
		return nil

	default:
		manifest.RecordStageFailure(stageID, err)
		p.tel.EndStage(stageCtx, span, stageID, started, err)
		p.logger.ErrorContext(stageCtx, "stage_failed",
			slog.String("stage_id", stageID),
			slog.String("error", err.Error()))
		return fmt.Errorf("stage %s failed: %w", stageID, err)
	}
}

// persist saves the manifest and, when metrics are enabled, the textfile
func (p *Pipeline) persist(ctx context.Context, manifest *RunManifest) error {
	if err := manifest.SaveToFile(p.paths.ManifestFile); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "manifest_saved", slog.String("path", p.paths.ManifestFile))

	metricsFile := p.cfg.Telemetry.MetricsFile
	if metricsFile == "" {
		metricsFile = p.paths.MetricsFile
	}
	if err := p.tel.WriteTextfile(metricsFile); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
