package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("first", slog.Int("rows", 3))
	logger.With("component", "loader").Warn("second", slog.String("dataset", "road_users"))

	records := handler.GetRecords()
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[0].Attrs["rows"])

	r := AssertLogContains(t, handler, "second")
	assert.Equal(t, slog.LevelWarn, r.Level)
	assert.Equal(t, "loader", r.Attrs["component"])
	assert.Equal(t, "road_users", r.Attrs["dataset"])

	_, ok := handler.Find("third")
	assert.False(t, ok)
	AssertNoErrors(t, handler)
}

func TestNewDataDir(t *testing.T) {
	paths := NewDataDir(t, RequiredDatasets())

	assert.FileExists(t, paths.DataDir+"/state_wise_accidents.csv")
	assert.FileExists(t, paths.DataDir+"/state_wise_fatalities.csv")
	assert.NoDirExists(t, paths.OutputDir)
}
