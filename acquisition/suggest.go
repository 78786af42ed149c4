package acquisition

import (
	"math"
	"math/rand"
	"sort"

	"dynotune/surrogate"
	"dynotune/types"

	"github.com/rs/zerolog"
)

// Random candidates scored per run.
const nCandidates = 1000

// Candidates closer than this fraction of each dimension's span to an
// already-selected point are dropped in favor of the higher-scoring one.
const dedupRadius = 0.01

// Suggest samples candidates over the full (lambda, timing, rpm) domain,
// scores them by Expected Improvement against the best observed BSFC near
// each candidate's RPM, and returns the top n after removing
// near-duplicates of each other and of the optimal points. Candidates with
// zero EI are never suggested, so a saturated model yields an empty list.
func Suggest(model surrogate.Surrogate, bins []types.RPMBin, bounds types.DomainBounds, optimal []types.OptimalPoint, n int, seed int64, l *zerolog.Logger) []types.Suggestion {
	overallBest := math.Inf(1)
	for _, b := range bins {
		if b.Valid && b.BestBSFC < overallBest {
			overallBest = b.BestBSFC
		}
	}
	if math.IsInf(overallBest, 1) {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	candidates := make([]types.Suggestion, 0, nCandidates)
	for i := 0; i < nCandidates; i++ {
		la := uniform(rng, bounds.Lambda)
		ti := uniform(rng, bounds.Timing)
		rpm := uniform(rng, bounds.RPM)

		mean, std := model.Predict([]float64{la, ti, rpm})
		best := bestObservedNear(bins, rpm, overallBest)
		ei := ExpectedImprovement(mean, std, best, defaultXi)
		if ei <= 0 {
			continue
		}
		candidates = append(candidates, types.Suggestion{
			RPM:                 rpm,
			Lambda:              la,
			Timing:              ti,
			PredictedBSFC:       mean,
			Uncertainty:         std,
			ExpectedImprovement: ei,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ExpectedImprovement != candidates[j].ExpectedImprovement {
			return candidates[i].ExpectedImprovement > candidates[j].ExpectedImprovement
		}
		return candidates[i].RPM < candidates[j].RPM
	})

	// Seed the dedup set with the optimal points so suggestions never
	// duplicate what the map already recommends.
	taken := make([][3]float64, 0, n+len(optimal))
	for _, p := range optimal {
		taken = append(taken, [3]float64{p.Lambda, p.Timing, p.RPM})
	}

	var out []types.Suggestion
	for _, c := range candidates {
		if len(out) >= n {
			break
		}
		pt := [3]float64{c.Lambda, c.Timing, c.RPM}
		if nearAny(pt, taken, bounds) {
			continue
		}
		taken = append(taken, pt)
		out = append(out, c)
	}

	l.Debug().Int("suggestions", len(out)).Int("candidates", len(candidates)).Msg("Suggestion ranking complete.")
	return out
}

// bestObservedNear returns the best observed BSFC in the valid bin whose
// interval contains rpm, falling back to the overall best when the
// candidate lands outside every reportable bin.
func bestObservedNear(bins []types.RPMBin, rpm, overall float64) float64 {
	for _, b := range bins {
		if !b.Valid {
			continue
		}
		half := b.Width / 2
		if rpm >= b.Center-half && rpm < b.Center+half {
			return b.BestBSFC
		}
	}
	return overall
}

func nearAny(pt [3]float64, taken [][3]float64, bounds types.DomainBounds) bool {
	spans := [3]float64{spanOr1(bounds.Lambda), spanOr1(bounds.Timing), spanOr1(bounds.RPM)}
	for _, t := range taken {
		d2 := 0.0
		for d := 0; d < 3; d++ {
			s := (pt[d] - t[d]) / spans[d]
			d2 += s * s
		}
		if math.Sqrt(d2) < dedupRadius {
			return true
		}
	}
	return false
}

func uniform(rng *rand.Rand, r types.Range) float64 {
	return r.Lo() + rng.Float64()*r.Span()
}
