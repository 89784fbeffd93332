package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"accidentcli/internal/charts"
	"accidentcli/internal/config"
	"accidentcli/internal/dataprocessing"
	apperrors "accidentcli/internal/errors"
	"accidentcli/internal/exporter"
	"accidentcli/internal/infrastructure"
)

// stateDatasets are the state-wise tables that go through cleaning
var stateDatasets = []config.DatasetID{config.StateAccidents, config.StateFatalities}

// LoadStage reads every catalogued dataset. Required datasets fail the
// stage; optional ones are skipped with a warning.
type LoadStage struct {
	BaseStage
	loader    *dataprocessing.Loader
	overrides map[config.DatasetID]string
	tel       *infrastructure.Telemetry
	logger    *slog.Logger
}

// NewLoadStage creates the load stage
func NewLoadStage(loader *dataprocessing.Loader, overrides map[config.DatasetID]string, tel *infrastructure.Telemetry, logger *slog.Logger) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StageIDLoad, StageNameLoad),
		loader:    loader,
		overrides: overrides,
		tel:       tel,
		logger:    logger,
	}
}

// Execute loads the datasets into state.Tables
func (s *LoadStage) Execute(ctx context.Context, state *State) error {
	for _, ds := range config.Datasets() {
		t, err := s.loader.Load(ctx, ds.ID, s.overrides[ds.ID])
		if err != nil {
			if ds.Required {
				return fmt.Errorf("failed to load %s: %w", ds.Title, err)
			}
			s.logger.WarnContext(ctx, "optional_dataset_unavailable",
				slog.String("dataset", string(ds.ID)),
				slog.String("error", err.Error()))
			continue
		}
		state.Tables[ds.ID] = t
		s.tel.RecordRows(ctx, string(ds.ID), t.NumRows(), 0)
	}
	return nil
}

// CleanStage removes aggregate rows and fills missing values in the
// state-wise tables
type CleanStage struct {
	BaseStage
	tel    *infrastructure.Telemetry
	logger *slog.Logger
}

// NewCleanStage creates the clean stage
func NewCleanStage(tel *infrastructure.Telemetry, logger *slog.Logger) *CleanStage {
	return &CleanStage{
		BaseStage: NewBaseStage(StageIDClean, StageNameClean, StageIDLoad),
		tel:       tel,
		logger:    logger,
	}
}

// Validate requires the accidents table
func (s *CleanStage) Validate(state *State) error {
	if state.Table(config.StateAccidents) == nil {
		return apperrors.NewAppValidationError("state accidents table not loaded")
	}
	return nil
}

// Execute fills state.Cleaned
func (s *CleanStage) Execute(ctx context.Context, state *State) error {
	for _, id := range stateDatasets {
		raw := state.Table(id)
		if raw == nil {
			continue
		}
		cleaned := dataprocessing.CleanStateData(raw)
		dropped := dataprocessing.DroppedRows(raw, cleaned)
		state.Cleaned[id] = cleaned
		s.tel.RecordRows(ctx, string(id), 0, dropped)

		s.logger.InfoContext(ctx, "dataset_cleaned",
			slog.String("dataset", string(id)),
			slog.Int("rows", cleaned.NumRows()),
			slog.Int("dropped", dropped))
	}
	return nil
}

// AnalyzeStage computes statistics, rankings and growth rates
type AnalyzeStage struct {
	BaseStage
	opts   dataprocessing.AnalysisOptions
	logger *slog.Logger
}

// NewAnalyzeStage creates the analyze stage
func NewAnalyzeStage(cfg config.AnalysisConfig, logger *slog.Logger) *AnalyzeStage {
	return &AnalyzeStage{
		BaseStage: NewBaseStage(StageIDAnalyze, StageNameAnalyze, StageIDClean),
		opts: dataprocessing.AnalysisOptions{
			TopN:        cfg.TopN,
			Years:       cfg.Years,
			GrowthStart: cfg.GrowthStart,
			GrowthEnd:   cfg.GrowthEnd,
		},
		logger: logger,
	}
}

// Validate requires the cleaned accidents table
func (s *AnalyzeStage) Validate(state *State) error {
	if state.CleanedTable(config.StateAccidents) == nil {
		return apperrors.NewAppValidationError("state accidents table not cleaned")
	}
	return nil
}

// Execute sets state.Analysis
func (s *AnalyzeStage) Execute(ctx context.Context, state *State) error {
	a := dataprocessing.Analyze(
		state.CleanedTable(config.StateAccidents),
		state.CleanedTable(config.StateFatalities),
		s.opts,
	)
	state.Analysis = a

	if !a.AccidentStats.OK() {
		s.logger.WarnContext(ctx, "accident_stats_unavailable",
			slog.String("reason", a.AccidentStats.Err))
		return nil
	}
	s.logger.InfoContext(ctx, "analysis_completed",
		slog.Int("years", len(a.AccidentStats.Years)),
		slog.String("latest_year", a.AccidentStats.LatestYear),
		slog.Float64("latest_total", a.AccidentStats.LatestTotal),
		slog.Int("states", a.AccidentStats.NumStates))
	return nil
}

// ExportStage writes the Tableau CSVs, the dashboard workbook and the
// JSON summary
type ExportStage struct {
	BaseStage
	paths *config.Paths
	now   func() time.Time
}

// NewExportStage creates the export stage
func NewExportStage(paths *config.Paths) *ExportStage {
	return &ExportStage{
		BaseStage: NewBaseStage(StageIDExport, StageNameExport, StageIDAnalyze),
		paths:     paths,
		now:       time.Now,
	}
}

// Validate requires the analysis
func (s *ExportStage) Validate(state *State) error {
	if state.Analysis == nil {
		return apperrors.NewAppValidationError("analysis has not run")
	}
	return nil
}

// Execute writes the exports into the output directory
func (s *ExportStage) Execute(ctx context.Context, state *State) error {
	accidents := state.CleanedTable(config.StateAccidents)
	fatalities := state.CleanedTable(config.StateFatalities)

	written, err := exporter.ExportForTableau(ctx, accidents, fatalities, s.paths.OutputDir)
	for _, path := range written {
		state.AddOutput(path, OutputCSV)
	}
	if err != nil {
		return err
	}

	if err := exporter.ExportWorkbook(s.paths.WorkbookFile, accidents, fatalities, state.Analysis); err != nil {
		return err
	}
	state.AddOutput(s.paths.WorkbookFile, OutputWorkbook)

	if err := exporter.ExportSummaryJSON(s.paths.SummaryFile, exporter.NewSummary(state.Analysis, s.now())); err != nil {
		return err
	}
	state.AddOutput(s.paths.SummaryFile, OutputJSON)
	return nil
}

// ChartsStage renders the PNG charts
type ChartsStage struct {
	BaseStage
	cfg      config.ChartsConfig
	years    []string
	renderer *charts.Renderer
}

// NewChartsStage creates the charts stage
func NewChartsStage(cfg config.ChartsConfig, years []string, paths *config.Paths, logger *slog.Logger) *ChartsStage {
	return &ChartsStage{
		BaseStage: NewBaseStage(StageIDCharts, StageNameCharts, StageIDClean),
		cfg:       cfg,
		years:     years,
		renderer:  charts.NewRenderer(paths.ChartsDir, cfg.DPI, logger),
	}
}

// Validate requires the cleaned accidents table
func (s *ChartsStage) Validate(state *State) error {
	if state.CleanedTable(config.StateAccidents) == nil {
		return apperrors.NewAppValidationError("state accidents table not cleaned")
	}
	return nil
}

// Execute renders every chart whose data is available
func (s *ChartsStage) Execute(ctx context.Context, state *State) error {
	if !s.cfg.Enabled {
		return Skip("charts disabled")
	}

	years := s.years
	if len(years) == 0 && state.Analysis != nil {
		years = state.Analysis.AccidentStats.Years
	}

	written, err := s.renderer.RenderAll(ctx, charts.Inputs{
		Accidents:     state.CleanedTable(config.StateAccidents),
		Fatalities:    state.CleanedTable(config.StateFatalities),
		Collisions:    state.Table(config.CollisionTypes),
		Violations:    state.Table(config.Violations),
		SafetyDevices: state.Table(config.SafetyDevices),
		RoadUsers:     state.Table(config.RoadUsers),
		Years:         years,
	})
	for _, path := range written {
		state.AddOutput(path, OutputChart)
	}
	return err
}
