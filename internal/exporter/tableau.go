package exporter

import (
	"context"
	"log/slog"
	"path/filepath"

	"accidentcli/internal/config"
	"accidentcli/internal/table"
)

// ExportForTableau writes the cleaned state tables as plain CSV files into
// outDir (config.DefaultOutputDir when empty), creating it if needed. A nil
// table is skipped. The written paths are returned in order.
func ExportForTableau(ctx context.Context, accidents, fatalities *table.Table, outDir string) ([]string, error) {
	if outDir == "" {
		outDir = config.DefaultOutputDir
	}
	writer := NewCSVWriter(nil)

	exports := []struct {
		table *table.Table
		name  string
	}{
		{accidents, config.StateAccidentsExport},
		{fatalities, config.StateFatalitiesExport},
	}

	var written []string
	for _, e := range exports {
		if e.table == nil {
			continue
		}
		path, err := writer.WriteTable(filepath.Join(outDir, e.name), e.table)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	slog.Default().InfoContext(ctx, "Data exported for Tableau",
		slog.String("output_dir", outDir),
		slog.Int("files", len(written)))

	return written, nil
}
