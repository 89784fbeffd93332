package charts

import (
	"context"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/table"
)

// low resolution keeps the tests fast
const testDPI = 20

func stateTable() *table.Table {
	return table.MustNew(
		table.NewTextColumn("State/UT", []string{"Kerala", "Goa", "Delhi", "Bihar"}),
		table.NewNumericColumn("2019", []float64{1000, 200, 3000, 1500}),
		table.NewNumericColumn("2020", []float64{1200, 150, 2800, math.NaN()}),
	)
}

func categoryTable(label, value string) *table.Table {
	return table.MustNew(
		table.NewTextColumn(label, []string{"A", "B", "", "D"}),
		table.NewNumericColumn(value, []float64{10, 30, 5, math.NaN()}),
	)
}

func assertPNG(t *testing.T, path string, wantWidthInches float64) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.InDelta(t, wantWidthInches*testDPI, cfg.Width, 1)
}

func TestRenderer_Charts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "visualizations")
	r := NewRenderer(dir, testDPI, nil)

	tests := []struct {
		name   string
		file   string
		width  float64
		render func() (string, error)
	}{
		{"yearly trend", YearlyTrendFile, 12, func() (string, error) {
			return r.YearlyTrend(stateTable(), []string{"2019", "2020"}, "Trend")
		}},
		{"top states", TopStatesFile, 12, func() (string, error) {
			return r.TopStates(stateTable(), "2020", "Top", "")
		}},
		{"collision types", CollisionTypesFile, 14, func() (string, error) {
			return r.CollisionTypes(categoryTable("Collision Type", "Number of Accidents"))
		}},
		{"violations", ViolationsFile, 14, func() (string, error) {
			return r.Violations(categoryTable("Violation", "Accidents"))
		}},
		{"safety devices", SafetyDevicesFile, 14, func() (string, error) {
			return r.SafetyDevices(categoryTable("Device", "Accidents"))
		}},
		{"road users", RoadUsersFile, 12, func() (string, error) {
			return r.RoadUsers(categoryTable("Road User", "Fatalities"))
		}},
		{"state comparison", StateComparisonFile, 16, func() (string, error) {
			return r.StateComparison(stateTable(), stateTable(), "2020")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := tt.render()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.file), path)
			assertPNG(t, path, tt.width)
		})
	}
}

func TestRenderer_DegenerateInputs(t *testing.T) {
	r := NewRenderer(t.TempDir(), testDPI, nil)
	noState := table.MustNew(table.NewNumericColumn("2020", []float64{1, 2}))
	oneColumn := table.MustNew(table.NewTextColumn("Only", []string{"x"}))

	tests := []struct {
		name   string
		render func() (string, error)
	}{
		{"trend without years", func() (string, error) { return r.YearlyTrend(noState, nil, "Empty") }},
		{"top states without label column", func() (string, error) { return r.TopStates(noState, "2020", "Top", "") }},
		{"collision without matching columns", func() (string, error) { return r.CollisionTypes(oneColumn) }},
		{"violations with one column", func() (string, error) { return r.Violations(oneColumn) }},
		{"safety devices with one column", func() (string, error) { return r.SafetyDevices(oneColumn) }},
		{"road users with one column", func() (string, error) { return r.RoadUsers(oneColumn) }},
		{"comparison without fatalities", func() (string, error) { return r.StateComparison(stateTable(), nil, "2020") }},
		{"comparison without label columns", func() (string, error) { return r.StateComparison(noState, noState, "2020") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := tt.render()
			require.NoError(t, err)
			assert.FileExists(t, path)
		})
	}
}

func TestRenderer_EmptySeries(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, testDPI, nil)

	aggregates := dataprocessing.CleanStateData(table.MustNew(
		table.NewTextColumn("State/UT", []string{"Total", "All India"}),
		table.NewNumericColumn("2019", []float64{500, 500}),
		table.NewNumericColumn("2020", []float64{600, 600}),
	))
	require.Equal(t, 0, aggregates.NumRows())

	textValues := func(label string) *table.Table {
		return table.MustNew(
			table.NewTextColumn(label, []string{"A", "B"}),
			table.NewTextColumn("Accidents", []string{"many", "few"}),
		)
	}

	written, err := r.RenderAll(context.Background(), Inputs{
		Accidents:     aggregates,
		Fatalities:    aggregates,
		Collisions:    textValues("Collision Type"),
		Violations:    textValues("Violation"),
		SafetyDevices: textValues("Device"),
		RoadUsers:     textValues("Road User"),
		Years:         []string{"2019", "2020"},
	})
	require.NoError(t, err)
	require.Len(t, written, 7)
	for _, path := range written {
		assert.FileExists(t, path)
	}

	path, err := r.TopStates(aggregates, "2020", "Top", "")
	require.NoError(t, err)
	assertPNG(t, path, 12)
}

func TestRenderer_RenderAll(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, testDPI, nil)

	written, err := r.RenderAll(context.Background(), Inputs{
		Accidents:  stateTable(),
		Fatalities: stateTable(),
		RoadUsers:  categoryTable("Road User", "Fatalities"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, YearlyTrendFile),
		filepath.Join(dir, TopStatesFile),
		filepath.Join(dir, StateComparisonFile),
		filepath.Join(dir, RoadUsersFile),
	}, written)
	assert.NoFileExists(t, filepath.Join(dir, ViolationsFile))
}

func TestSeries(t *testing.T) {
	tbl := categoryTable("Type", "Count")

	all := seriesFrom(tbl, "Type", "Count", false, 0)
	assert.Equal(t, 4, all.len())
	assert.Equal(t, 45.0, all.total())

	complete := seriesFrom(tbl, "Type", "Count", true, 0)
	assert.Equal(t, []string{"A", "B"}, complete.labels)

	limited := seriesFrom(tbl, "Type", "Count", false, 2)
	assert.Equal(t, []float64{10, 30}, limited.values)

	shares := complete.shares()
	assert.Equal(t, []float64{25, 75}, shares.values)

	assert.Zero(t, seriesFrom(tbl, "Count", "Type", false, 0).len(), "text value column")
	assert.Zero(t, seriesFrom(tbl, "Missing", "Count", false, 0).len())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,568", formatCount(1234567.6))
	assert.Equal(t, "12", formatCount(12))
	assert.Equal(t, "33.3%", formatPercent(100.0/3))
}

func TestFirstNameContaining(t *testing.T) {
	tbl := table.MustNew(
		table.NewTextColumn("Collision Type", []string{"a"}),
		table.NewNumericColumn("Number of Accidents", []float64{1}),
	)
	assert.Equal(t, "Number of Accidents", firstNameContaining(tbl, "accident", "number"))
	assert.Equal(t, "Collision Type", firstNameContaining(tbl, "type", "collision"))
	assert.Equal(t, "", firstNameContaining(tbl, "fatal"))
}

func TestPaletteCycles(t *testing.T) {
	assert.Equal(t, Palette[0], paletteAt(5))
	assert.Equal(t, hexColor(0xe74c3c), Palette[1])
}
