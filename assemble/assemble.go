// Package assemble shapes already-computed run outputs into the immutable
// result record. No recomputation happens here.
package assemble

import (
	"math"
	"strconv"
	"time"

	"dynotune/types"
)

// Assemble builds the ordered RPM axis, the index-aligned parameter
// tables, the ranked suggestion list, and the current-best summary, and
// stamps the record with its creation time. The timestamp is the record's
// identity for later retrieval.
func Assemble(
	summary types.DataSummary,
	points []types.OptimalPoint,
	suggestions []types.Suggestion,
	trainingBounds types.DomainBounds,
	nTrainingSamples int,
	warnings []types.Warning,
	bins []types.RPMBin,
	now time.Time,
) types.ResultRecord {
	axis := make([]float64, len(points))
	lambdas := make([]float64, len(points))
	timings := make([]float64, len(points))
	bsfcs := make([]float64, len(points))
	overall := math.Inf(1)
	for i, p := range points {
		axis[i] = p.RPM
		lambdas[i] = p.Lambda
		timings[i] = p.Timing
		bsfcs[i] = p.PredictedBSFC
		if p.PredictedBSFC < overall {
			overall = p.PredictedBSFC
		}
	}

	perRPM := make(map[string]float64, len(bins))
	for _, b := range bins {
		if !b.Valid {
			continue
		}
		perRPM[strconv.Itoa(int(b.Center))] = b.BestBSFC
	}

	return types.ResultRecord{
		Metadata: types.Metadata{
			Timestamp:        now,
			NTrainingSamples: nTrainingSamples,
			TrainingBounds:   trainingBounds,
			Warnings:         warnings,
		},
		DataSummary: summary,
		OptimalMap: types.OptimalMap{
			Format: "1D_map",
			Axis: types.Axis{
				Name:   "rpm",
				Values: axis,
				Unit:   "rpm",
			},
			Tables: types.Tables{
				Lambda: types.Table{
					Name:   "Fuel Mixture Aim",
					Unit:   "LA",
					Values: lambdas,
				},
				Timing: types.Table{
					Name:   "Ignition Timing Main",
					Unit:   "dBTDC",
					Values: timings,
				},
				PredictedBSFC: types.Table{
					Name:   "Predicted BSFC",
					Values: bsfcs,
				},
			},
		},
		SuggestedExperiments: suggestions,
		CurrentBest: types.CurrentBest{
			OverallBSFC: overall,
			PerRPM:      perRPM,
		},
	}
}
