package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	"accidentcli/internal/config"
	"accidentcli/internal/errors"
	"accidentcli/internal/table"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance. With nil paths relative
// file names are used as given.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options and returns the
// resolved path.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.NewStorageError("failed to create directory "+dir, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return "", errors.NewStorageError("failed to open "+fullPath, err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return "", errors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", errors.NewStorageError("failed to write headers", err)
		}
	}

	if err := writer.WriteAll(options.Records); err != nil {
		return "", errors.NewStorageError("failed to write records to "+fullPath, err)
	}

	return fullPath, nil
}

// WriteTable writes a table with its header row and no index column.
// Numbers use the shortest round-trip representation and missing cells are
// left empty.
func (w *CSVWriter) WriteTable(filePath string, t *table.Table) (string, error) {
	records := t.Records()
	return w.WriteCSV(filePath, WriteOptions{
		Headers: records[0],
		Records: records[1:],
	})
}

// resolvePath joins relative names to the output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetOutputPath(filePath)
}
