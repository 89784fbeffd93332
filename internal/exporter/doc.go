// Package exporter writes the cleaned accident tables and their aggregates
// for consumption by BI tools.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing with header rows, append mode and an optional
// UTF-8 BOM. Tables are written without an index column.
//
// ExportForTableau: The two state-wise CSV files read by the Tableau
// dashboards (no BOM, empty cells for missing values).
//
// ExportWorkbook / ExportSummaryJSON: An Excel dashboard workbook and a JSON
// digest of the yearly totals, rankings and growth rates.
//
// Example usage:
//
//	written, err := exporter.ExportForTableau(ctx, accidents, fatalities, "tableau")
//
//	analysis := dataprocessing.Analyze(accidents, fatalities, opts)
//	err = exporter.ExportWorkbook(paths.WorkbookFile, accidents, fatalities, analysis)
//	err = exporter.ExportSummaryJSON(paths.SummaryFile, exporter.NewSummary(analysis, time.Now()))
package exporter
