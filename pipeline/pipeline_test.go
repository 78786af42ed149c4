package pipeline

import (
	"math"
	"testing"
	"time"

	"dynotune/binning"
	"dynotune/ingest"
	"dynotune/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// bowl is a smooth BSFC surface with its minimum at lambda=0.95,
// timing=22 and a mild RPM trend.
func bowl(lambda, timing, rpm float64) float64 {
	return 320 + 500*(lambda-0.95)*(lambda-0.95) + 1.2*(timing-22)*(timing-22) + 0.01*(rpm-3200)
}

// dynoRows sweeps a lambda x timing grid in four RPM bins of width 100.
func dynoRows() []types.RawRow {
	var rows []types.RawRow
	for _, rpm := range []float64{3040, 3160, 3240, 3360} {
		for _, lambda := range []float64{0.90, 0.925, 0.95, 0.975, 1.00} {
			for _, timing := range []float64{18, 20, 22, 24} {
				rows = append(rows, types.RawRow{
					RPM:    rpm,
					Lambda: lambda,
					Timing: timing,
					BSFC:   bowl(lambda, timing, rpm),
					Source: "dyno_run_1.csv",
				})
			}
		}
	}
	return rows
}

func fastConfig() types.OptimizerConfig {
	return types.OptimizerConfig{
		BinWidth:         100,
		MinSamplesPerBin: 3,
		NSuggestions:     5,
		Seed:             42,
		FitRestarts:      2,
		SearchRestarts:   6,
	}
}

func TestRunEndToEnd(t *testing.T) {
	progress := make(chan types.ProgressEvent, 8)
	record, err := Run(fastConfig(), dynoRows(), progress, nopLogger())
	require.NoError(t, err)
	require.NotNil(t, record)

	// One optimum per bin, index aligned with the axis.
	m := record.OptimalMap
	assert.Equal(t, "1D_map", m.Format)
	assert.Equal(t, []float64{3050, 3150, 3250, 3350}, m.Axis.Values)
	require.Len(t, m.Tables.Lambda.Values, 4)
	require.Len(t, m.Tables.Timing.Values, 4)
	require.Len(t, m.Tables.PredictedBSFC.Values, 4)

	// The surrogate has 80 clean grid points per smooth bowl: the per-bin
	// optima must land near the true minimum.
	for i := range m.Axis.Values {
		assert.InDelta(t, 0.95, m.Tables.Lambda.Values[i], 0.02, "bin %g", m.Axis.Values[i])
		assert.InDelta(t, 22.0, m.Tables.Timing.Values[i], 1.0, "bin %g", m.Axis.Values[i])
	}

	// Predicted BSFC tracks the analytic surface at each bin center.
	for i, rpm := range m.Axis.Values {
		want := bowl(0.95, 22, rpm)
		assert.InDelta(t, want, m.Tables.PredictedBSFC.Values[i], 5.0)
	}

	assert.Equal(t, 80, record.Metadata.NTrainingSamples)
	assert.Equal(t, 4, record.DataSummary.NBins)
	assert.Empty(t, record.Metadata.Warnings)
	assert.False(t, math.IsInf(record.CurrentBest.OverallBSFC, 1))
	assert.Len(t, record.CurrentBest.PerRPM, 4)
	assert.LessOrEqual(t, len(record.SuggestedExperiments), 5)

	// All five stages reported, in order, and the channel was closed.
	var events []types.ProgressEvent
	for ev := range progress {
		events = append(events, ev)
	}
	require.Len(t, events, 5)
	wantStages := []string{types.StageIngest, types.StageBin, types.StageFit, types.StageOptimize, types.StageAssemble}
	for i, ev := range events {
		assert.Equal(t, wantStages[i], ev.Stage)
		assert.Equal(t, i+1, ev.Step)
		assert.Equal(t, 5, ev.Total)
	}
}

func TestRunIdempotentModuloTimestamp(t *testing.T) {
	cfg := fastConfig()
	rows := dynoRows()

	a, err := Run(cfg, rows, nil, nopLogger())
	require.NoError(t, err)
	b, err := Run(cfg, rows, nil, nopLogger())
	require.NoError(t, err)

	a.Metadata.Timestamp = time.Time{}
	b.Metadata.Timestamp = time.Time{}
	assert.Equal(t, a, b)
}

func TestRunRejectsBadRowsWithWarning(t *testing.T) {
	rows := dynoRows()
	rows = append(rows,
		types.RawRow{RPM: 3100, Lambda: 0.95, Timing: 22, BSFC: -10},
		types.RawRow{RPM: math.NaN(), Lambda: 0.95, Timing: 22, BSFC: 330},
	)

	record, err := Run(fastConfig(), rows, nil, nopLogger())
	require.NoError(t, err)

	require.Len(t, record.Metadata.Warnings, 1)
	assert.Equal(t, types.WarnRowsRejected, record.Metadata.Warnings[0].Code)
	assert.Equal(t, 80, record.Metadata.NTrainingSamples)
}

func TestRunUndersampledBinStillTrains(t *testing.T) {
	// Two samples at 3460 are short of the minimum of three: the bin is
	// excluded from the output map but its samples still train the model.
	rows := dynoRows()
	rows = append(rows,
		types.RawRow{RPM: 3460, Lambda: 0.95, Timing: 22, BSFC: bowl(0.95, 22, 3460)},
		types.RawRow{RPM: 3470, Lambda: 0.96, Timing: 21, BSFC: bowl(0.96, 21, 3470)},
	)

	record, err := Run(fastConfig(), rows, nil, nopLogger())
	require.NoError(t, err)

	require.Len(t, record.Metadata.Warnings, 1)
	assert.Equal(t, types.WarnBinExcluded, record.Metadata.Warnings[0].Code)

	assert.Equal(t, 82, record.Metadata.NTrainingSamples)
	assert.NotContains(t, record.OptimalMap.Axis.Values, 3450.0)
	assert.Equal(t, 4, record.DataSummary.NBins)
	assert.NotContains(t, record.CurrentBest.PerRPM, "3450")
}

func TestRunFailsWithoutValidSamples(t *testing.T) {
	rows := []types.RawRow{
		{RPM: 3100, Lambda: 0.95, Timing: 22, BSFC: 0},
		{RPM: 3100, Lambda: math.NaN(), Timing: 22, BSFC: 330},
	}

	record, err := Run(fastConfig(), rows, nil, nopLogger())
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ingest.ErrNoValidSamples)
}

func TestRunFailsWithoutValidBins(t *testing.T) {
	// Every bin holds a single sample, below the minimum of three.
	var rows []types.RawRow
	for i, rpm := range []float64{3040, 3160, 3280} {
		rows = append(rows, types.RawRow{
			RPM: rpm, Lambda: 0.95, Timing: 22, BSFC: 320 + float64(i),
		})
	}

	record, err := Run(fastConfig(), rows, nil, nopLogger())
	assert.Nil(t, record)
	assert.ErrorIs(t, err, binning.ErrNoValidBins)
}

func TestRunClosesProgressOnError(t *testing.T) {
	progress := make(chan types.ProgressEvent, 8)
	_, err := Run(fastConfig(), nil, progress, nopLogger())
	require.Error(t, err)

	// Channel must be closed so a consuming goroutine terminates.
	for range progress {
	}
}
