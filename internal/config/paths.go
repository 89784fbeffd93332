package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for file locations used by the loader,
// the exporters, the chart renderer and the pipeline manifest.
type Paths struct {
	BaseDir   string
	DataDir   string
	OutputDir string
	ChartsDir string
	LogsDir   string

	// Well-known output files
	AccidentsExport  string
	FatalitiesExport string
	WorkbookFile     string
	SummaryFile      string
	ManifestFile     string
	MetricsFile      string
}

// NewPaths resolves the configured directories. Relative directories are
// joined to BaseDir; an empty BaseDir means the current working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	outputDir := resolve(cfg.OutputDir, DefaultOutputDir)

	return &Paths{
		BaseDir:   base,
		DataDir:   resolve(cfg.DataDir, DefaultDataDir),
		OutputDir: outputDir,
		ChartsDir: resolve(cfg.ChartsDir, DefaultChartsDir),
		LogsDir:   resolve(cfg.LogsDir, DefaultLogsDir),

		AccidentsExport:  filepath.Join(outputDir, StateAccidentsExport),
		FatalitiesExport: filepath.Join(outputDir, StateFatalitiesExport),
		WorkbookFile:     filepath.Join(outputDir, DashboardWorkbook),
		SummaryFile:      filepath.Join(outputDir, SummaryJSON),
		ManifestFile:     filepath.Join(outputDir, RunManifestJSON),
		MetricsFile:      filepath.Join(outputDir, MetricsTextfile),
	}, nil
}

// DatasetPath returns the conventional location of a dataset, or override
// when it is non-empty.
func (p *Paths) DatasetPath(ds Dataset, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(p.DataDir, ds.FileName)
}

// GetOutputPath returns the path for an export file
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetChartPath returns the path for a chart image
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates the output directories if they don't exist.
// The data directory is input only and is never created.
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.OutputDir, p.ChartsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("output_files",
			slog.String("accidents", p.AccidentsExport),
			slog.String("fatalities", p.FatalitiesExport),
			slog.String("workbook", p.WorkbookFile),
			slog.String("manifest", p.ManifestFile),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
