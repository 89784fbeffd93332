package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "accidentcli/internal/errors"
	"accidentcli/internal/shared/testutil"
)

// setupBase writes the required datasets under a temp base directory and
// points the configuration at it
func setupBase(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	testutil.WriteFiles(t, filepath.Join(base, "data"), testutil.RequiredDatasets())

	t.Setenv("ACCIDENTS_PATHS_BASE_DIR", base)
	t.Setenv("ACCIDENTS_CHARTS_DPI", "20")
	return base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestStatsCommand(t *testing.T) {
	setupBase(t)

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Accidents (2 states)")
	assert.Contains(t, out, "Latest year 2020: 150")
	assert.Contains(t, out, "Fatalities (2 states)")
}

func TestStatsCommand_JSON(t *testing.T) {
	setupBase(t)

	out, err := execute(t, "stats", "--json")
	require.NoError(t, err)

	var decoded map[string]struct {
		TotalByYear map[string]float64 `json:"total_by_year"`
		LatestYear  string             `json:"latest_year"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]float64{"2019": 120, "2020": 150}, decoded["accidents"].TotalByYear)
	assert.Equal(t, "2020", decoded["fatalities"].LatestYear)
}

func TestTopCommand(t *testing.T) {
	setupBase(t)

	out, err := execute(t, "top", "-n", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"State/UT", "2020"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Kerala", "150"}, strings.Fields(lines[1]))

	out, err = execute(t, "top", "--dataset", "fatalities", "--year", "2019")
	require.NoError(t, err)
	assert.Contains(t, out, "Kerala")
	assert.Contains(t, out, "Goa")
}

func TestTopCommand_Errors(t *testing.T) {
	setupBase(t)

	_, err := execute(t, "top", "--dataset", "injuries")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = execute(t, "top", "--year", "1999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"1999"`)
}

func TestGrowthCommand(t *testing.T) {
	setupBase(t)

	out, err := execute(t, "growth")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"State/UT", "2019", "2020", "Growth_Rate"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Kerala", "100", "150", "50"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Goa", "20", "0", "-100"}, strings.Fields(lines[2]))
}

func TestRunCommand(t *testing.T) {
	base := setupBase(t)
	outputDir := filepath.Join(base, "exports")

	out, err := execute(t, "run", "--output-dir", outputDir)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "[xlsx]")
	assert.Contains(t, out, "[png]")

	assert.FileExists(t, filepath.Join(outputDir, "state_accidents_tableau.csv"))
	assert.FileExists(t, filepath.Join(outputDir, "run_manifest.json"))
	assert.FileExists(t, filepath.Join(base, "visualizations", "01_yearly_trend.png"))
}

func TestRunCommand_SkipCharts(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "run", "--skip-charts")
	require.NoError(t, err)
	assert.NotContains(t, out, "[png]")
	assert.FileExists(t, filepath.Join(base, "tableau", "summary.json"))
}

func TestChartsCommand_Disabled(t *testing.T) {
	setupBase(t)
	t.Setenv("ACCIDENTS_CHARTS_ENABLED", "false")

	out, err := execute(t, "charts")
	require.NoError(t, err)
	assert.Contains(t, out, "Charts are disabled")
}

func TestExportCommand_AccidentsOverride(t *testing.T) {
	base := setupBase(t)
	override := filepath.Join(t.TempDir(), "accidents.csv")
	require.NoError(t, os.WriteFile(override, []byte("State/UT,2020\nBihar,7\n"), 0644))

	_, err := execute(t, "export", "--accidents", override)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(base, "tableau", "state_accidents_tableau.csv"))
	require.NoError(t, err)
	assert.Equal(t, "State/UT,2020\nBihar,7\n", string(data))
}

func TestMissingDataset(t *testing.T) {
	setupBase(t)

	_, err := execute(t, "stats", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCheckCommand(t *testing.T) {
	setupBase(t)

	out, err := execute(t, "check")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, []string{"DATASET", "REQUIRED", "STATUS", "PATH"}, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "state_accidents")
	assert.Contains(t, lines[1], "ok (")
	assert.Contains(t, lines[3], "unusable")

	_, err = execute(t, "check", "--fatalities", filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
