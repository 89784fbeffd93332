package exporter

import (
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"accidentcli/internal/dataprocessing"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

// Workbook sheet names
const (
	SheetAccidents    = "Accidents"
	SheetFatalities   = "Fatalities"
	SheetYearlyTotals = "Yearly Totals"
	SheetTopStates    = "Top States"
	SheetGrowth       = "Growth"
)

// ExportWorkbook writes a dashboard workbook with one sheet per cleaned table
// and one per aggregate. Sheets whose source is unavailable are omitted.
func ExportWorkbook(path string, accidents, fatalities *table.Table, analysis *dataprocessing.Analysis) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &workbookWriter{f: f}
	if err := w.init(); err != nil {
		return err
	}

	if accidents != nil {
		w.tableSheet(SheetAccidents, accidents)
	}
	if fatalities != nil {
		w.tableSheet(SheetFatalities, fatalities)
	}
	if analysis != nil {
		w.yearlyTotals(analysis)
		if analysis.TopAccidents != nil {
			w.tableSheet(SheetTopStates, analysis.TopAccidents)
		}
		if analysis.AccidentsGrowth != nil {
			w.tableSheet(SheetGrowth, analysis.AccidentsGrowth)
		}
	}
	if w.err != nil {
		return errors.NewStorageError("failed to build workbook", w.err)
	}
	if len(w.sheets) == 0 {
		return errors.NewAppValidationError("nothing to write to workbook")
	}

	// drop the placeholder sheet created by NewFile
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.NewStorageError("failed to build workbook", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook "+path, err)
	}
	return nil
}

// workbookWriter accumulates the first error so sheet builders stay linear
type workbookWriter struct {
	f           *excelize.File
	headerStyle int
	sheets      []string
	err         error
}

func (w *workbookWriter) init() error {
	style, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#3498DB"}, Pattern: 1},
	})
	if err != nil {
		return errors.NewStorageError("failed to create header style", err)
	}
	w.headerStyle = style
	return nil
}

func (w *workbookWriter) newSheet(name string, headers []string) {
	if w.err != nil {
		return
	}
	if _, w.err = w.f.NewSheet(name); w.err != nil {
		return
	}
	w.sheets = append(w.sheets, name)

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	w.setRow(name, 1, row)
	if len(headers) == 0 || w.err != nil {
		return
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if w.err = w.f.SetCellStyle(name, "A1", last, w.headerStyle); w.err != nil {
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if w.err = w.f.SetColWidth(name, "A", lastCol, 18); w.err != nil {
		return
	}
	w.err = w.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *workbookWriter) setRow(sheet string, row int, values []interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *workbookWriter) tableSheet(name string, t *table.Table) {
	w.newSheet(name, t.Names())
	cols := t.Columns()
	for r := 0; r < t.NumRows(); r++ {
		values := make([]interface{}, len(cols))
		for i, col := range cols {
			values[i] = cellValue(col, r)
		}
		w.setRow(name, r+2, values)
	}
}

func (w *workbookWriter) yearlyTotals(a *dataprocessing.Analysis) {
	if !a.AccidentStats.OK() && !a.FatalityStats.OK() {
		return
	}
	w.newSheet(SheetYearlyTotals, []string{"Year", "Accidents", "Fatalities"})

	years := make(map[string]struct{})
	for _, y := range a.AccidentStats.Years {
		years[y] = struct{}{}
	}
	for _, y := range a.FatalityStats.Years {
		years[y] = struct{}{}
	}
	ordered := make([]string, 0, len(years))
	for y := range years {
		ordered = append(ordered, y)
	}
	sort.Strings(ordered)

	for i, y := range ordered {
		w.setRow(SheetYearlyTotals, i+2, []interface{}{
			y,
			totalOrNil(a.AccidentStats, y),
			totalOrNil(a.FatalityStats, y),
		})
	}
}

func totalOrNil(s dataprocessing.AccidentStats, year string) interface{} {
	if v, ok := s.TotalByYear[year]; ok {
		return v
	}
	return nil
}

// cellValue converts a table cell to an excelize value. Missing and
// non-finite cells become blank.
func cellValue(col *table.Column, row int) interface{} {
	if col.Kind == table.Text {
		return col.Labels[row]
	}
	v := col.Values[row]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
