package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"accidentcli/internal/config"
	"accidentcli/internal/errors"
)

// supportedExtensions are the dataset formats the loader reads
var supportedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileValidator checks input datasets and output directories before a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With("component", "validation"),
	}
}

// DatasetStatus is the outcome of checking one dataset file
type DatasetStatus struct {
	Dataset config.Dataset
	Path    string
	Size    int64
	Err     error
}

// OK reports whether the dataset file is usable
func (s DatasetStatus) OK() bool {
	return s.Err == nil
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, errors.NewNotFoundError(path, err)
	}
	if err != nil {
		return 0, errors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	if info.IsDir() {
		return 0, errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, errors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	return info.Size(), nil
}

// ValidateDatasetFile checks a dataset file's format and readability
func (v *FileValidator) ValidateDatasetFile(path string) (int64, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return 0, errors.NewAppValidationError(fmt.Sprintf("file %s has unsupported extension %q (want .csv or .xlsx)", path, ext))
	}
	// Office lock files share the workbook's extension
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return 0, errors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}
	return v.ValidateFile(path)
}

// ValidateDatasets checks every catalogued dataset. overrides replaces the
// conventional location per dataset. The returned error is non-nil when a
// required dataset is unusable; optional datasets only log a warning.
func (v *FileValidator) ValidateDatasets(paths *config.Paths, overrides map[config.DatasetID]string) ([]DatasetStatus, error) {
	var (
		statuses []DatasetStatus
		missing  []string
	)

	for _, ds := range config.Datasets() {
		path := paths.DatasetPath(ds, overrides[ds.ID])
		size, err := v.ValidateDatasetFile(path)
		statuses = append(statuses, DatasetStatus{Dataset: ds, Path: path, Size: size, Err: err})

		switch {
		case err == nil:
			v.logger.Debug("Dataset validated",
				slog.String("dataset", string(ds.ID)),
				slog.String("file", path),
				slog.Int64("size", size))
		case ds.Required:
			v.logger.Error("Required dataset unusable",
				slog.String("dataset", string(ds.ID)),
				slog.String("error", err.Error()))
			missing = append(missing, ds.Title)
		default:
			v.logger.Warn("Optional dataset unusable",
				slog.String("dataset", string(ds.ID)),
				slog.String("error", err.Error()))
		}
	}

	if len(missing) > 0 {
		return statuses, errors.NewAppValidationError(
			fmt.Sprintf("required datasets unusable: %s", strings.Join(missing, ", ")))
	}
	return statuses, nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
