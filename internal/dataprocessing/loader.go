package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"accidentcli/internal/config"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

// missingMarkers are the cell values read as missing in addition to the empty cell
var missingMarkers = []string{"", "NA", "NaN", "nan", "<nil>"}

// Loader reads the accident datasets from their conventional locations
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a loader resolving dataset files through paths
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  paths,
		logger: logger.With("component", "loader"),
	}
}

// Load reads a catalogued dataset. A non-empty override replaces the
// conventional <data_dir>/<file> location.
func (l *Loader) Load(ctx context.Context, id config.DatasetID, override string) (*table.Table, error) {
	ds, ok := config.LookupDataset(id)
	if !ok {
		return nil, errors.NewAppValidationError(fmt.Sprintf("unknown dataset %q", id))
	}
	path := l.paths.DatasetPath(ds, override)

	t, err := readTable(path)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.WithContext("dataset", string(id))
		}
		return nil, err
	}

	l.logger.InfoContext(ctx, "Loaded table",
		slog.String("dataset", string(id)),
		slog.String("path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))

	return t, nil
}

// LoadStateAccidents reads the state-wise accidents table
func (l *Loader) LoadStateAccidents(ctx context.Context, override string) (*table.Table, error) {
	return l.Load(ctx, config.StateAccidents, override)
}

// LoadStateFatalities reads the state-wise fatalities table
func (l *Loader) LoadStateFatalities(ctx context.Context, override string) (*table.Table, error) {
	return l.Load(ctx, config.StateFatalities, override)
}

// LoadCollisionTypes reads the collision types table
func (l *Loader) LoadCollisionTypes(ctx context.Context, override string) (*table.Table, error) {
	return l.Load(ctx, config.CollisionTypes, override)
}

// LoadViolations reads the traffic violations table
func (l *Loader) LoadViolations(ctx context.Context, override string) (*table.Table, error) {
	return l.Load(ctx, config.Violations, override)
}

// LoadSafetyDevices reads the safety devices table
func (l *Loader) LoadSafetyDevices(ctx context.Context, override string) (*table.Table, error) {
	return l.Load(ctx, config.SafetyDevices, override)
}

// LoadRoadUsers reads the road user fatalities table
func (l *Loader) LoadRoadUsers(ctx context.Context, override string) (*table.Table, error) {
	return l.Load(ctx, config.RoadUsers, override)
}

// LoadTable reads any delimited text (or .xlsx) file into a table
func LoadTable(ctx context.Context, path string) (*table.Table, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	slog.Default().InfoContext(ctx, "Loaded table",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()))
	return t, nil
}

func readTable(path string) (*table.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(path, err)
		}
		return nil, errors.NewStorageError("failed to open "+path, err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// utf8BOM is the byte order mark spreadsheet exports put before the header
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV parses comma-separated text with a header row. A column is
// numeric when every non-missing cell parses as a number. A leading UTF-8
// byte order mark is dropped and a header without data rows yields an empty
// table.
func ParseCSV(r io.Reader) (*table.Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, errors.NewParsingError("malformed CSV", err)
		}
	}

	records, err := csv.NewReader(br).ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("malformed CSV", err)
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("malformed CSV", fmt.Errorf("no header row"))
	}
	return loadRecords(records)
}

// ParseXLSX reads the first worksheet of an Excel workbook with the same
// typing rules as ParseCSV.
func ParseXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(path, err)
		}
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet "+sheets[0], err).WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError("sheet has no header row", nil).WithContext("path", path)
	}

	// GetRows trims trailing empty cells, so pad every row to the header width
	width := len(rows[0])
	records := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > width {
			return nil, errors.NewParsingError(fmt.Sprintf("row %d has %d cells, header has %d", i+1, len(row), width), nil).
				WithContext("path", path)
		}
		padded := make([]string, width)
		copy(padded, row)
		records[i] = padded
	}

	t, err := loadRecords(records)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// loadRecords types header-first records through gota. Data cells are
// trimmed so padded numbers such as " 5" stay numeric; header names are kept
// verbatim. Header-only records give a zero-row table whose columns are all
// numeric, as a column with no values has no text cells.
func loadRecords(records [][]string) (*table.Table, error) {
	header := records[0]
	if len(header) == 0 {
		return nil, errors.NewParsingError("empty header row", nil)
	}

	if len(records) == 1 {
		cols := make([]*table.Column, len(header))
		for i, name := range header {
			cols[i] = table.NewNumericColumn(name, []float64{})
		}
		t, err := table.New(cols...)
		if err != nil {
			return nil, errors.NewParsingError("inconsistent columns", err)
		}
		return t, nil
	}

	trimmed := make([][]string, len(records))
	trimmed[0] = header
	for i, row := range records[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		trimmed[i+1] = cells
	}

	df := dataframe.LoadRecords(trimmed,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingMarkers),
	)
	if df.Err != nil {
		return nil, errors.NewParsingError("malformed records", df.Err)
	}
	return fromDataFrame(df)
}

// fromDataFrame converts a typed dataframe into a table. Integer and float
// series become numeric columns; everything else stays text. A column with
// no values at all is numeric, since every one of its cells is missing.
func fromDataFrame(df dataframe.DataFrame) (*table.Table, error) {
	names := df.Names()
	if len(names) == 0 {
		return nil, errors.NewParsingError("empty header row", nil)
	}

	cols := make([]*table.Column, 0, len(names))
	for _, name := range names {
		s := df.Col(name)
		if s.Err != nil {
			return nil, errors.NewParsingError("failed to read column "+name, s.Err)
		}

		missing := s.IsNaN()
		switch {
		case s.Type() == series.Int || s.Type() == series.Float:
			cols = append(cols, table.NewNumericColumn(name, s.Float()))
		case allTrue(missing):
			cols = append(cols, table.NewNumericColumn(name, s.Float()))
		default:
			labels := s.Records()
			for i := range labels {
				if missing[i] {
					labels[i] = ""
				}
			}
			cols = append(cols, table.NewTextColumn(name, labels))
		}
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, errors.NewParsingError("inconsistent columns", err)
	}
	return t, nil
}

func allTrue(values []bool) bool {
	for _, v := range values {
		if !v {
			return false
		}
	}
	return true
}
