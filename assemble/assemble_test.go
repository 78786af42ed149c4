package assemble

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dynotune/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func sampleRecord() types.ResultRecord {
	points := []types.OptimalPoint{
		{RPM: 3050, Lambda: 0.94, Timing: 21.5, PredictedBSFC: 322.4, Uncertainty: 1.1},
		{RPM: 3150, Lambda: 0.95, Timing: 22.0, PredictedBSFC: 320.1, Uncertainty: 0.9},
		{RPM: 3250, Lambda: 0.96, Timing: 22.4, PredictedBSFC: 321.0, Uncertainty: 1.3},
	}
	suggestions := []types.Suggestion{
		{RPM: 3100, Lambda: 0.93, Timing: 20.0, PredictedBSFC: 324, Uncertainty: 4, ExpectedImprovement: 1.2},
	}
	bins := []types.RPMBin{
		{Center: 3050, Valid: true, BestBSFC: 325.7},
		{Center: 3150, Valid: true, BestBSFC: 323.2},
		{Center: 3250, Valid: false, BestBSFC: 340.0},
	}
	summary := types.DataSummary{NBins: 2, TotalSamples: 40}
	bounds := types.DomainBounds{
		Lambda: types.Range{0.85, 1.05},
		Timing: types.Range{10, 30},
		RPM:    types.Range{3000, 3300},
	}
	warnings := []types.Warning{{Code: types.WarnRowsRejected, Message: "2 rows rejected"}}
	now := time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)
	return Assemble(summary, points, suggestions, bounds, 40, warnings, bins, now)
}

func TestAssembleAlignsAxisAndTables(t *testing.T) {
	record := sampleRecord()

	m := record.OptimalMap
	assert.Equal(t, "1D_map", m.Format)
	assert.Equal(t, "rpm", m.Axis.Name)
	assert.Equal(t, []float64{3050, 3150, 3250}, m.Axis.Values)
	require.Len(t, m.Tables.Lambda.Values, 3)
	require.Len(t, m.Tables.Timing.Values, 3)
	require.Len(t, m.Tables.PredictedBSFC.Values, 3)

	// Index alignment: position 1 is the 3150 bin across every table.
	assert.Equal(t, 0.95, m.Tables.Lambda.Values[1])
	assert.Equal(t, 22.0, m.Tables.Timing.Values[1])
	assert.Equal(t, 320.1, m.Tables.PredictedBSFC.Values[1])
}

func TestAssembleCurrentBest(t *testing.T) {
	record := sampleRecord()

	assert.Equal(t, 320.1, record.CurrentBest.OverallBSFC)

	// Per-RPM bests come from the observed data of valid bins only.
	assert.Equal(t, map[string]float64{
		"3050": 325.7,
		"3150": 323.2,
	}, record.CurrentBest.PerRPM)
}

func TestAssembleMetadata(t *testing.T) {
	record := sampleRecord()

	assert.Equal(t, 40, record.Metadata.NTrainingSamples)
	assert.Equal(t, time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC), record.Metadata.Timestamp)
	require.Len(t, record.Metadata.Warnings, 1)
	assert.Equal(t, types.WarnRowsRejected, record.Metadata.Warnings[0].Code)
}

func TestExportJSONFieldNames(t *testing.T) {
	dir := t.TempDir()
	record := sampleRecord()

	path, err := ExportJSON(record, dir, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "optimization_results_2026-08-29_14-30-05.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"metadata", "data_summary", "optimal_map", "suggested_experiments", "current_best"} {
		assert.Contains(t, doc, key)
	}

	var meta map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["metadata"], &meta))
	for _, key := range []string{"timestamp", "n_training_samples", "training_bounds", "warnings"} {
		assert.Contains(t, meta, key)
	}

	var best map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["current_best"], &best))
	assert.Contains(t, best, "overall_bsfc")
	assert.Contains(t, best, "per_rpm")

	var suggested []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["suggested_experiments"], &suggested))
	require.Len(t, suggested, 1)
	assert.Contains(t, suggested[0], "expected_improvement")
}

func TestExportJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	record := sampleRecord()

	path, err := ExportJSON(record, dir, nopLogger())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded types.ResultRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record, decoded)

	// No stray tmp file after the atomic rename.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExportECUMaps(t *testing.T) {
	dir := t.TempDir()
	record := sampleRecord()

	lambdaPath, timingPath, err := ExportECUMaps(record, dir, nopLogger())
	require.NoError(t, err)

	lambdaCSV, err := os.ReadFile(lambdaPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(lambdaCSV)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "RPM,Fuel Mixture Aim (LA)", lines[0])
	assert.Equal(t, "3050,0.94", lines[1])
	assert.Equal(t, "3150,0.95", lines[2])

	timingCSV, err := os.ReadFile(timingPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(timingCSV), "RPM,Ignition Timing Main (dBTDC)\n"))
	assert.Contains(t, string(timingCSV), "3150,22\n")
}
