// Package binning partitions samples into fixed-width RPM buckets and
// derives the training set and search bounds for the surrogate fit.
package binning

import (
	"errors"
	"math"
	"sort"

	"dynotune/types"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// ErrNoValidBins is fatal: with every bin below the minimum sample count
// there is no RPM at which an optimum can be reported.
var ErrNoValidBins = errors.New("no RPM bin reached the minimum sample count")

// Fraction of the observed span added on each side of auto-derived
// lambda/timing bounds.
const boundsPadding = 0.10

// Center returns the bin center for an rpm value. Bin boundaries are
// half-open: [center-width/2, center+width/2).
func Center(rpm, width float64) float64 {
	return math.Floor(rpm/width)*width + width/2
}

// Bin partitions samples into RPM-width buckets, sorted by center. Bins
// with fewer than cfg.MinSamplesPerBin samples are kept but flagged
// invalid; their samples still count toward the global training set.
// Errors only when no bin is valid.
func Bin(samples []types.Sample, cfg types.OptimizerConfig, l *zerolog.Logger) ([]types.RPMBin, error) {
	byCenter := make(map[float64][]types.Sample)
	for _, s := range samples {
		c := Center(s.RPM, cfg.BinWidth)
		byCenter[c] = append(byCenter[c], s)
	}

	centers := make([]float64, 0, len(byCenter))
	for c := range byCenter {
		centers = append(centers, c)
	}
	sort.Float64s(centers)

	bins := make([]types.RPMBin, 0, len(centers))
	valid := 0
	for _, c := range centers {
		b := summarize(c, cfg.BinWidth, byCenter[c])
		b.Valid = b.Count >= cfg.MinSamplesPerBin
		if b.Valid {
			valid++
		} else {
			l.Warn().
				Float64("center", c).
				Int("count", b.Count).
				Int("min", cfg.MinSamplesPerBin).
				Msg("Bin below minimum sample count, excluded from optimal map.")
		}
		bins = append(bins, b)
	}

	if valid == 0 {
		return nil, ErrNoValidBins
	}

	l.Debug().Int("bins", len(bins)).Int("valid", valid).Msg("Binning complete.")
	return bins, nil
}

func summarize(center, width float64, samples []types.Sample) types.RPMBin {
	lambdas := make([]float64, len(samples))
	timings := make([]float64, len(samples))
	bsfcs := make([]float64, len(samples))
	best := math.Inf(1)
	for i, s := range samples {
		lambdas[i] = s.Lambda
		timings[i] = s.Timing
		bsfcs[i] = s.BSFC
		if s.BSFC < best {
			best = s.BSFC
		}
	}

	std := 0.0
	if len(samples) > 1 {
		std = stat.StdDev(bsfcs, nil)
	}

	return types.RPMBin{
		Center:     center,
		Width:      width,
		Samples:    samples,
		Count:      len(samples),
		MeanLambda: stat.Mean(lambdas, nil),
		MeanTiming: stat.Mean(timings, nil),
		MeanBSFC:   stat.Mean(bsfcs, nil),
		StdBSFC:    std,
		BestBSFC:   best,
	}
}

// TrainingData builds the full-envelope training set from all valid
// samples, including those in under-populated bins: more data always helps
// the regression even where per-bin confidence is too low to report an
// optimum. Lambda/timing bounds come from the config when supplied,
// otherwise from the observed min/max padded by 10% of the span.
func TrainingData(samples []types.Sample, cfg types.OptimizerConfig) types.TrainingSet {
	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = []float64{s.Lambda, s.Timing, s.RPM}
		y[i] = s.BSFC
	}

	lambdaObs := observedRange(x, 0)
	timingObs := observedRange(x, 1)
	rpmObs := observedRange(x, 2)

	bounds := types.DomainBounds{
		Lambda: pad(lambdaObs),
		Timing: pad(timingObs),
		RPM:    rpmObs,
	}
	if cfg.LambdaBounds != nil {
		bounds.Lambda = *cfg.LambdaBounds
	}
	if cfg.TimingBounds != nil {
		bounds.Timing = *cfg.TimingBounds
	}

	return types.TrainingSet{X: x, Y: y, Bounds: bounds}
}

// ObservedBounds returns the unpadded min/max envelope of the training
// inputs, reported on the result record's metadata.
func ObservedBounds(ts types.TrainingSet) types.DomainBounds {
	return types.DomainBounds{
		Lambda: observedRange(ts.X, 0),
		Timing: observedRange(ts.X, 1),
		RPM:    observedRange(ts.X, 2),
	}
}

func observedRange(x [][]float64, dim int) types.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range x {
		if row[dim] < lo {
			lo = row[dim]
		}
		if row[dim] > hi {
			hi = row[dim]
		}
	}
	return types.Range{lo, hi}
}

func pad(r types.Range) types.Range {
	margin := r.Span() * boundsPadding
	return types.Range{r.Lo() - margin, r.Hi() + margin}
}

// Summarize aggregates the valid bins into the run's data summary.
func Summarize(bins []types.RPMBin) types.DataSummary {
	var (
		centers []float64
		lambdas []float64
		timings []float64
		bsfcs   []float64
		total   int
	)
	for _, b := range bins {
		if !b.Valid {
			continue
		}
		centers = append(centers, b.Center)
		lambdas = append(lambdas, b.MeanLambda)
		timings = append(timings, b.MeanTiming)
		bsfcs = append(bsfcs, b.MeanBSFC)
		total += b.Count
	}
	if len(centers) == 0 {
		return types.DataSummary{}
	}

	return types.DataSummary{
		NBins:            len(centers),
		RPMRange:         minMax(centers),
		TotalSamples:     total,
		AvgSamplesPerBin: float64(total) / float64(len(centers)),
		LambdaRange:      minMax(lambdas),
		TimingRange:      minMax(timings),
		BSFCRange:        minMax(bsfcs),
	}
}

func minMax(vals []float64) types.Range {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return types.Range{lo, hi}
}
