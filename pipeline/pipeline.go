// Package pipeline runs one full optimization batch: ingest, bin, fit,
// per-bin optimize, assemble. Stages run strictly in sequence; each
// consumes the full output of the previous one. There is no cross-run
// state: every invocation refits from scratch.
package pipeline

import (
	"fmt"
	"time"

	"dynotune/acquisition"
	"dynotune/assemble"
	"dynotune/binning"
	"dynotune/ingest"
	"dynotune/surrogate"
	"dynotune/types"

	"github.com/rs/zerolog"
)

const nStages = 5

// Run executes the batch over rows with the given tunables. Progress, when
// non-nil, receives one-way status events and is closed on return; the
// pipeline never blocks on a slow consumer. On fatal error (no valid
// samples, no valid bins) no record is returned.
func Run(cfg types.OptimizerConfig, rows []types.RawRow, progress chan<- types.ProgressEvent, l *zerolog.Logger) (*types.ResultRecord, error) {
	if progress != nil {
		defer close(progress)
	}
	cfg = cfg.WithDefaults()

	var warnings []types.Warning

	// ------------------------------------------------------------------
	// Stage 1: ingest
	// ------------------------------------------------------------------
	emit(progress, types.StageIngest, 1, fmt.Sprintf("validating %d rows", len(rows)))
	samples, rejected, err := ingest.Ingest(rows, l)
	if err != nil {
		return nil, err
	}
	if rejected > 0 {
		warnings = append(warnings, types.Warning{
			Code:    types.WarnRowsRejected,
			Message: fmt.Sprintf("%d of %d rows rejected as invalid readings", rejected, len(rows)),
		})
	}

	// ------------------------------------------------------------------
	// Stage 2: bin
	// ------------------------------------------------------------------
	emit(progress, types.StageBin, 2, fmt.Sprintf("binning %d samples (width=%g)", len(samples), cfg.BinWidth))
	bins, err := binning.Bin(samples, cfg, l)
	if err != nil {
		return nil, err
	}
	for _, b := range bins {
		if !b.Valid {
			warnings = append(warnings, types.Warning{
				Code:    types.WarnBinExcluded,
				Message: fmt.Sprintf("bin %g has %d samples, need %d", b.Center, b.Count, cfg.MinSamplesPerBin),
			})
		}
	}
	trainingSet := binning.TrainingData(samples, cfg)
	summary := binning.Summarize(bins)

	// ------------------------------------------------------------------
	// Stage 3: fit surrogate
	// ------------------------------------------------------------------
	emit(progress, types.StageFit, 3, fmt.Sprintf("fitting surrogate on %d samples", len(trainingSet.Y)))
	model, warn := surrogate.Fit(trainingSet, surrogate.Config{
		Restarts: cfg.FitRestarts,
		Seed:     cfg.Seed,
	}, l)
	if warn != nil {
		warnings = append(warnings, *warn)
	}

	// ------------------------------------------------------------------
	// Stage 4: per-bin optimum search + suggestions
	// ------------------------------------------------------------------
	emit(progress, types.StageOptimize, 4, fmt.Sprintf("searching optimum in %d bins", summary.NBins))
	points := acquisition.OptimalMap(model, bins, trainingSet.Bounds, acquisition.Config{
		Restarts: cfg.SearchRestarts,
		Seed:     cfg.Seed,
	}, l)
	suggestions := acquisition.Suggest(model, bins, trainingSet.Bounds, points, cfg.NSuggestions, cfg.Seed, l)

	// ------------------------------------------------------------------
	// Stage 5: assemble
	// ------------------------------------------------------------------
	emit(progress, types.StageAssemble, 5, "assembling result record")
	record := assemble.Assemble(
		summary,
		points,
		suggestions,
		binning.ObservedBounds(trainingSet),
		len(trainingSet.Y),
		warnings,
		bins,
		time.Now().UTC(),
	)

	l.Info().
		Int("bins", summary.NBins).
		Int("samples", len(trainingSet.Y)).
		Int("suggestions", len(suggestions)).
		Float64("best_bsfc", record.CurrentBest.OverallBSFC).
		Msg("Optimization run complete.")
	return &record, nil
}

func emit(ch chan<- types.ProgressEvent, stage string, step int, msg string) {
	types.EmitProgress(ch, types.ProgressEvent{
		Stage:   stage,
		Step:    step,
		Total:   nStages,
		Message: msg,
	})
}
