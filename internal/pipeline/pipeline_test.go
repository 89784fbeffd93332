package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accidentcli/internal/config"
	apperrors "accidentcli/internal/errors"
	"accidentcli/internal/infrastructure"
	"accidentcli/internal/shared/testutil"
)

// newTestPipeline lays out a data directory under a temp base dir and
// returns a pipeline reading from it
func newTestPipeline(t *testing.T, files map[string]string, mutate func(*config.Config)) (*Pipeline, *config.Paths, *testutil.BufferedSlogHandler) {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Charts.DPI = 20
	if mutate != nil {
		mutate(cfg)
	}

	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	testutil.WriteFiles(t, paths.DataDir, files)

	logger, logs := testutil.NewTestLogger(t)
	p, err := New(cfg, paths, nil, logger)
	require.NoError(t, err)
	return p, paths, logs
}

func stageIDs(m *RunManifest) []string {
	ids := make([]string, len(m.Stages))
	for i, s := range m.Stages {
		ids[i] = s.StageID
	}
	return ids
}

func TestRun_FullPipeline(t *testing.T) {
	files := testutil.RequiredDatasets()
	files["road_users_fatalities.csv"] = testutil.RoadUsersCSV
	p, paths, _ := newTestPipeline(t, files, nil)

	manifest, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "completed", manifest.Status)
	assert.NotEmpty(t, manifest.ID)
	assert.Equal(t, []string{StageIDLoad, StageIDClean, StageIDAnalyze, StageIDExport, StageIDCharts}, stageIDs(manifest))
	for _, s := range manifest.Stages {
		assert.Equal(t, StageStatusCompleted, s.Status, s.StageID)
	}

	assert.Equal(t, map[string]int{
		string(config.StateAccidents):  3,
		string(config.StateFatalities): 2,
		string(config.RoadUsers):       2,
	}, manifest.Datasets)

	kinds := make(map[string]int)
	for _, out := range manifest.Outputs {
		kinds[out.Kind]++
		assert.FileExists(t, out.Path)
		assert.Len(t, out.Checksum, 64)
		assert.Positive(t, out.Size)
	}
	assert.Equal(t, 2, kinds[OutputCSV])
	assert.Equal(t, 1, kinds[OutputWorkbook])
	assert.Equal(t, 1, kinds[OutputJSON])
	// trend, top states, comparison and road users
	assert.Equal(t, 4, kinds[OutputChart])

	saved, err := LoadManifestFromFile(paths.ManifestFile)
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, saved.ID)
	assert.Len(t, saved.Outputs, len(manifest.Outputs))
}

func TestRun_CleanedExportDropsAggregateRow(t *testing.T) {
	p, paths, _ := newTestPipeline(t, testutil.RequiredDatasets(), nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(paths.AccidentsExport)
	require.NoError(t, err)
	assert.Equal(t, "State/UT,2019,2020\nKerala,100,150\nGoa,20,0\n", string(data))
}

func TestRun_MissingRequiredDataset(t *testing.T) {
	p, paths, _ := newTestPipeline(t, map[string]string{
		"state_wise_fatalities.csv": testutil.FatalitiesCSV,
	}, nil)

	manifest, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	assert.Equal(t, "failed", manifest.Status)
	assert.Equal(t, []string{StageIDLoad}, stageIDs(manifest))
	assert.Equal(t, StageStatusFailed, manifest.StageStatus(StageIDLoad))
	assert.NoFileExists(t, paths.ManifestFile, "nothing written, nothing to record")
}

func TestRun_OptionalDatasetsMissing(t *testing.T) {
	p, paths, logs := newTestPipeline(t, testutil.RequiredDatasets(), nil)

	manifest, err := p.Run(context.Background())
	require.NoError(t, err)
	r := testutil.AssertLogContains(t, logs, "optional_dataset_unavailable")
	assert.Equal(t, "pipeline", r.Attrs["component"])
	testutil.AssertNoErrors(t, logs)
	assert.NotContains(t, manifest.Datasets, string(config.Violations))
	assert.FileExists(t, filepath.Join(paths.ChartsDir, "01_yearly_trend.png"))
	assert.NoFileExists(t, filepath.Join(paths.ChartsDir, "04_violations.png"))
}

func TestRun_ChartsDisabled(t *testing.T) {
	p, paths, _ := newTestPipeline(t, testutil.RequiredDatasets(), func(cfg *config.Config) {
		cfg.Charts.Enabled = false
	})

	manifest, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageStatusSkipped, manifest.StageStatus(StageIDCharts))
	assert.NoDirExists(t, paths.ChartsDir)
}

func TestExecute_TargetsPullDependencies(t *testing.T) {
	p, paths, _ := newTestPipeline(t, testutil.RequiredDatasets(), nil)

	state, manifest, err := p.Execute(context.Background(), StageIDAnalyze)
	require.NoError(t, err)

	assert.Equal(t, []string{StageIDLoad, StageIDClean, StageIDAnalyze}, stageIDs(manifest))
	require.NotNil(t, state.Analysis)
	assert.Equal(t, map[string]float64{"2019": 120, "2020": 150}, state.Analysis.AccidentStats.TotalByYear)
	assert.Equal(t, "2020", state.Analysis.AccidentStats.LatestYear)
	assert.Empty(t, manifest.Outputs)
	assert.NoFileExists(t, paths.ManifestFile)
}

func TestExecute_UnknownStage(t *testing.T) {
	p, _, _ := newTestPipeline(t, testutil.RequiredDatasets(), nil)

	_, _, err := p.Execute(context.Background(), "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown stage "publish"`)
}

func TestExecute_UsesTraceIDAsRunID(t *testing.T) {
	p, _, _ := newTestPipeline(t, testutil.RequiredDatasets(), nil)
	ctx := infrastructure.WithTraceID(context.Background(), "run-123")

	state, manifest, err := p.Execute(ctx, StageIDLoad)
	require.NoError(t, err)
	assert.Equal(t, "run-123", state.RunID)
	assert.Equal(t, "run-123", manifest.ID)
}

func TestExecute_Cancelled(t *testing.T) {
	p, _, _ := newTestPipeline(t, testutil.RequiredDatasets(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, manifest, err := p.Execute(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, manifest.Stages)
}

func TestSetOverride(t *testing.T) {
	p, _, _ := newTestPipeline(t, map[string]string{
		"state_wise_fatalities.csv": testutil.FatalitiesCSV,
	}, nil)

	override := filepath.Join(t.TempDir(), "elsewhere.csv")
	require.NoError(t, os.WriteFile(override, []byte(testutil.AccidentsCSV), 0644))
	p.SetOverride(config.StateAccidents, override)

	state, _, err := p.Execute(context.Background(), StageIDLoad)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Table(config.StateAccidents).NumRows())
}

func TestRun_WritesMetricsTextfile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Charts.Enabled = false

	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	testutil.WriteFiles(t, paths.DataDir, testutil.RequiredDatasets())

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	p, err := New(cfg, paths, tel, nil)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "pipeline_stage_runs_total")
	assert.Contains(t, text, `stage="export"`)
	assert.Contains(t, text, `dataset="state_accidents"`)
	assert.Contains(t, text, `kind="xlsx"`)
}
