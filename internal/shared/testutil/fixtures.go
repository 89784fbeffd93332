package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"accidentcli/internal/config"
)

// Sample state-wise tables. The accidents table carries an aggregate row and
// a missing cell so cleaning has something to do.
const (
	AccidentsCSV = `State/UT,2019,2020
Kerala,100,150
Goa,20,
Total (All India),120,150
`
	FatalitiesCSV = `State/UT,2019,2020
Kerala,10,12
Goa,2,3
`
	RoadUsersCSV = `Road User,Fatalities
Pedestrian,30
Cyclist,10
`
)

// RequiredDatasets returns the file contents of the two required datasets,
// keyed by their conventional file names
func RequiredDatasets() map[string]string {
	return map[string]string{
		"state_wise_accidents.csv":  AccidentsCSV,
		"state_wise_fatalities.csv": FatalitiesCSV,
	}
}

// NewDataDir writes files into the data directory of a fresh temp base
// directory and returns the resolved paths
func NewDataDir(t *testing.T, files map[string]string) *config.Paths {
	t.Helper()

	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to resolve paths: %v", err)
	}
	WriteFiles(t, paths.DataDir, files)
	return paths
}

// WriteFiles writes name -> content pairs into dir, creating it if needed
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}
