package dataprocessing

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"accidentcli/internal/config"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestLoader(t *testing.T) (*Loader, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return NewLoader(paths, nil), paths
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantKinds []table.Kind
		wantRows  int
	}{
		{
			name:      "state table",
			input:     "State/UT,2019,2020\nA,100,150\nB,200,\n",
			wantNames: []string{"State/UT", "2019", "2020"},
			wantKinds: []table.Kind{table.Text, table.Numeric, table.Numeric},
			wantRows:  2,
		},
		{
			name:      "decimal year headers preserved",
			input:     "State/UT,2019.0,Share %\nA,1.5,x\n",
			wantNames: []string{"State/UT", "2019.0", "Share %"},
			wantKinds: []table.Kind{table.Text, table.Numeric, table.Text},
			wantRows:  1,
		},
		{
			name:      "NA markers are missing numbers",
			input:     "Type,Count\nHead-on,NA\nRear-end,12\n",
			wantNames: []string{"Type", "Count"},
			wantKinds: []table.Kind{table.Text, table.Numeric},
			wantRows:  2,
		},
		{
			name:      "padded numbers stay numeric",
			input:     "State/UT,2019\nA, 5\nB,7 \n",
			wantNames: []string{"State/UT", "2019"},
			wantKinds: []table.Kind{table.Text, table.Numeric},
			wantRows:  2,
		},
		{
			name:      "header without rows",
			input:     "State/UT,2019,2020\n",
			wantNames: []string{"State/UT", "2019", "2020"},
			wantKinds: []table.Kind{table.Numeric, table.Numeric, table.Numeric},
			wantRows:  0,
		},
		{
			name:      "all empty column is numeric",
			input:     "State/UT,2021\nA,\nB,\n",
			wantNames: []string{"State/UT", "2021"},
			wantKinds: []table.Kind{table.Text, table.Numeric},
			wantRows:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.wantNames, got.Names())
			assert.Equal(t, tt.wantRows, got.NumRows())
			for i, col := range got.Columns() {
				assert.Equal(t, tt.wantKinds[i], col.Kind, "column %q", col.Name)
			}
		})
	}
}

func TestParseCSV_MissingCells(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("State/UT,2019\nA,100\n,\nC,NaN\n"))
	require.NoError(t, err)

	labels, _ := got.Column("State/UT")
	assert.Equal(t, []string{"A", "", "C"}, labels.Labels)

	values, _ := got.Column("2019")
	assert.Equal(t, 100.0, values.Values[0])
	assert.True(t, math.IsNaN(values.Values[1]))
	assert.True(t, math.IsNaN(values.Values[2]))
}

func TestParseCSV_TrimsCells(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("State/UT,2019\n Kerala , 5\n"))
	require.NoError(t, err)

	labels, _ := got.Column("State/UT")
	assert.Equal(t, []string{"Kerala"}, labels.Labels)
	values, _ := got.Column("2019")
	assert.Equal(t, []float64{5}, values.Values)
}

func TestParseCSV_ByteOrderMark(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("\ufeffState/UT,2019\nTotal,5\nKerala,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"State/UT", "2019"}, got.Names())

	cleaned := CleanStateData(got)
	require.Equal(t, 1, cleaned.NumRows())
	labels, _ := cleaned.Column("State/UT")
	assert.Equal(t, []string{"Kerala"}, labels.Labels)

	top, ok := GetTopStates(cleaned, "2019", 5)
	require.True(t, ok)
	assert.Equal(t, 1, top.NumRows())
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("State/UT,2019,2020\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumRows())

	cleaned := CleanStateData(got)
	assert.Equal(t, 0, cleaned.NumRows())
	assert.Equal(t, got.Names(), cleaned.Names())
}

func TestParseCSV_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"ragged rows", "State/UT,2019\nA,1,2\n"},
		{"bad quoting", "State/UT,2019\n\"A,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeParsing), "got %v", err)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	loader, paths := newTestLoader(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(paths.DataDir, "state_wise_accidents.csv"),
		"State/UT,2019,2020\nA,100,150\nTotal,100,150\n")

	got, err := loader.LoadStateAccidents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())

	override := filepath.Join(t.TempDir(), "custom.csv")
	writeFile(t, override, "State/UT,2019\nX,1\nY,2\nZ,3\n")

	got, err = loader.LoadStateAccidents(ctx, override)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRows())
}

func TestLoader_AllDatasets(t *testing.T) {
	loader, paths := newTestLoader(t)
	ctx := context.Background()

	for _, ds := range config.Datasets() {
		writeFile(t, filepath.Join(paths.DataDir, ds.FileName), "Label,Value\na,1\n")
	}

	loaders := map[string]func(context.Context, string) (*table.Table, error){
		"accidents":  loader.LoadStateAccidents,
		"fatalities": loader.LoadStateFatalities,
		"collisions": loader.LoadCollisionTypes,
		"violations": loader.LoadViolations,
		"devices":    loader.LoadSafetyDevices,
		"road users": loader.LoadRoadUsers,
	}
	for name, load := range loaders {
		t.Run(name, func(t *testing.T) {
			got, err := load(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 1, got.NumRows())
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.LoadStateFatalities(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "state_wise_fatalities.csv")
}

func TestLoader_UnknownDataset(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Load(context.Background(), config.DatasetID("weather"), "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestLoadTable_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accidents.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"State/UT", "2019", "2020"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"A", 100, 150}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"B", 200}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := LoadTable(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"State/UT", "2019", "2020"}, got.Names())
	assert.Equal(t, []string{"2019", "2020"}, got.YearColumns())

	col, _ := got.Column("2020")
	assert.Equal(t, 150.0, col.Values[0])
	assert.True(t, math.IsNaN(col.Values[1]))
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, errors.IsNotFound(err))
}
