// Package ingest validates raw numeric measurement rows into typed samples.
package ingest

import (
	"errors"

	"dynotune/types"

	"github.com/rs/zerolog"
)

// ErrNoValidSamples is fatal: a run with nothing to learn from produces no
// result artifact.
var ErrNoValidSamples = errors.New("no valid samples after ingestion")

// Ingest validates rows into samples. A row with any missing or non-finite
// field, or with bsfc <= 0 (no load applied), is rejected but not fatal;
// the rejection count is returned for reporting. Errors only when zero
// valid samples remain.
func Ingest(rows []types.RawRow, l *zerolog.Logger) ([]types.Sample, int, error) {
	samples := make([]types.Sample, 0, len(rows))
	rejected := 0

	for _, r := range rows {
		if !r.Valid() {
			rejected++
			continue
		}
		samples = append(samples, types.Sample{
			RPM:    r.RPM,
			Lambda: r.Lambda,
			Timing: r.Timing,
			BSFC:   r.BSFC,
			Source: r.Source,
		})
	}

	if rejected > 0 {
		l.Warn().Int("rejected", rejected).Int("valid", len(samples)).Msg("Rejected invalid measurement rows.")
	}

	if len(samples) == 0 {
		return nil, rejected, ErrNoValidSamples
	}

	l.Debug().Int("valid", len(samples)).Msg("Ingestion complete.")
	return samples, rejected, nil
}
