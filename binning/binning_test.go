package binning

import (
	"testing"

	"dynotune/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func sampleAt(rpm float64) types.Sample {
	return types.Sample{RPM: rpm, Lambda: 0.95, Timing: 22, BSFC: 320}
}

func TestCenter(t *testing.T) {
	assert.Equal(t, 3025.0, Center(3000, 50))
	assert.Equal(t, 3025.0, Center(3049.99, 50))
	// Boundaries are half-open: the upper edge belongs to the next bin.
	assert.Equal(t, 3075.0, Center(3050, 50))
	assert.Equal(t, 25.0, Center(0, 50))
}

func TestBinMinSamplesBoundary(t *testing.T) {
	cfg := types.OptimizerConfig{BinWidth: 50, MinSamplesPerBin: 3}

	// Exactly the minimum is included; one fewer is excluded.
	samples := []types.Sample{
		sampleAt(3000), sampleAt(3010), sampleAt(3020),
		sampleAt(3060), sampleAt(3070),
	}

	bins, err := Bin(samples, cfg, nopLogger())
	require.NoError(t, err)
	require.Len(t, bins, 2)

	assert.Equal(t, 3025.0, bins[0].Center)
	assert.Equal(t, 3, bins[0].Count)
	assert.True(t, bins[0].Valid)

	assert.Equal(t, 3075.0, bins[1].Center)
	assert.Equal(t, 2, bins[1].Count)
	assert.False(t, bins[1].Valid)
}

func TestBinFatalWhenNoValidBins(t *testing.T) {
	cfg := types.OptimizerConfig{BinWidth: 50, MinSamplesPerBin: 5}
	samples := []types.Sample{sampleAt(3000), sampleAt(3060)}

	_, err := Bin(samples, cfg, nopLogger())
	assert.ErrorIs(t, err, ErrNoValidBins)
}

func TestBinStats(t *testing.T) {
	cfg := types.OptimizerConfig{BinWidth: 100, MinSamplesPerBin: 3}
	samples := []types.Sample{
		{RPM: 3000, Lambda: 0.90, Timing: 20, BSFC: 330},
		{RPM: 3010, Lambda: 0.95, Timing: 22, BSFC: 320},
		{RPM: 3020, Lambda: 1.00, Timing: 24, BSFC: 310},
	}

	bins, err := Bin(samples, cfg, nopLogger())
	require.NoError(t, err)
	require.Len(t, bins, 1)

	b := bins[0]
	assert.InDelta(t, 0.95, b.MeanLambda, 1e-12)
	assert.InDelta(t, 22.0, b.MeanTiming, 1e-12)
	assert.InDelta(t, 320.0, b.MeanBSFC, 1e-12)
	assert.InDelta(t, 10.0, b.StdBSFC, 1e-12)
	assert.Equal(t, 310.0, b.BestBSFC)
}

func TestTrainingDataIncludesAllValidSamples(t *testing.T) {
	cfg := types.OptimizerConfig{BinWidth: 50, MinSamplesPerBin: 3}
	// Two full bins plus one lone sample whose bin will be invalid.
	samples := []types.Sample{
		sampleAt(3000), sampleAt(3010), sampleAt(3020),
		sampleAt(3060),
	}

	ts := TrainingData(samples, cfg)
	assert.Len(t, ts.X, 4)
	assert.Len(t, ts.Y, 4)
}

func TestTrainingDataBoundsPadding(t *testing.T) {
	cfg := types.OptimizerConfig{BinWidth: 50, MinSamplesPerBin: 3}
	samples := []types.Sample{
		{RPM: 3000, Lambda: 0.85, Timing: 10, BSFC: 330},
		{RPM: 3100, Lambda: 1.05, Timing: 30, BSFC: 320},
	}

	ts := TrainingData(samples, cfg)
	// 10% of the span (0.2 and 20) padded on each side.
	assert.InDelta(t, 0.83, ts.Bounds.Lambda.Lo(), 1e-9)
	assert.InDelta(t, 1.07, ts.Bounds.Lambda.Hi(), 1e-9)
	assert.InDelta(t, 8.0, ts.Bounds.Timing.Lo(), 1e-9)
	assert.InDelta(t, 32.0, ts.Bounds.Timing.Hi(), 1e-9)
	// RPM bounds stay at the observed envelope.
	assert.Equal(t, types.Range{3000, 3100}, ts.Bounds.RPM)
}

func TestTrainingDataExplicitBounds(t *testing.T) {
	lb := types.Range{0.80, 1.10}
	tb := types.Range{5, 35}
	cfg := types.OptimizerConfig{BinWidth: 50, MinSamplesPerBin: 3, LambdaBounds: &lb, TimingBounds: &tb}
	samples := []types.Sample{sampleAt(3000), sampleAt(3100)}

	ts := TrainingData(samples, cfg)
	assert.Equal(t, lb, ts.Bounds.Lambda)
	assert.Equal(t, tb, ts.Bounds.Timing)
}

func TestSummarizeSkipsInvalidBins(t *testing.T) {
	cfg := types.OptimizerConfig{BinWidth: 50, MinSamplesPerBin: 3}
	samples := []types.Sample{
		sampleAt(3000), sampleAt(3010), sampleAt(3020),
		sampleAt(3060),
	}

	bins, err := Bin(samples, cfg, nopLogger())
	require.NoError(t, err)

	summary := Summarize(bins)
	assert.Equal(t, 1, summary.NBins)
	assert.Equal(t, 3, summary.TotalSamples)
	assert.InDelta(t, 3.0, summary.AvgSamplesPerBin, 1e-12)
	assert.Equal(t, types.Range{3025, 3025}, summary.RPMRange)
}
