// Package acquisition runs the per-bin optimum search and ranks
// next-experiment candidates by Expected Improvement over a fitted
// surrogate.
package acquisition

import (
	"math"
	"math/rand"
	"runtime"

	"dynotune/surrogate"
	"dynotune/types"

	"github.com/alitto/pond"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"
)

type Config struct {
	// Multi-start count of the per-bin argmin search.
	Restarts int
	Seed     int64
	// Workers bounds the per-bin parallelism; 0 means NumCPU.
	Workers int
}

// Penalty weight pushing Nelder-Mead back inside the bounds box.
const outOfBoundsPenalty = 1e3

// OptimalMap finds, for every valid bin, the (lambda, timing) minimizing
// the predicted BSFC at the bin's RPM center. Searches are independent
// across bins and run on a bounded worker pool over a read-only model
// reference. Results are ordered by bin center; the per-bin RNG is seeded
// from cfg.Seed and the bin index, so scheduling never changes the output.
func OptimalMap(model surrogate.Surrogate, bins []types.RPMBin, bounds types.DomainBounds, cfg Config, l *zerolog.Logger) []types.OptimalPoint {
	if cfg.Restarts <= 0 {
		cfg.Restarts = types.DefaultSearchRestarts
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var valid []types.RPMBin
	for _, b := range bins {
		if b.Valid {
			valid = append(valid, b)
		}
	}

	points := make([]types.OptimalPoint, len(valid))
	wPool := pond.New(workers, len(valid), pond.Strategy(pond.Eager()))
	for i := range valid {
		i := i
		wPool.Submit(func() {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			points[i] = searchBin(model, valid[i].Center, bounds, cfg.Restarts, rng)
		})
	}
	wPool.StopAndWait()

	for _, p := range points {
		l.Debug().
			Float64("rpm", p.RPM).
			Float64("lambda", p.Lambda).
			Float64("timing", p.Timing).
			Float64("predicted_bsfc", p.PredictedBSFC).
			Msg("Bin optimum found.")
	}
	return points
}

// searchBin is a bounded multi-start local search over (lambda, timing) at
// fixed rpm. Start points are Latin-hypercube samples of the bounds box;
// each start is refined with Nelder-Mead and the globally best local
// optimum wins.
func searchBin(model surrogate.Surrogate, rpm float64, bounds types.DomainBounds, restarts int, rng *rand.Rand) types.OptimalPoint {
	objective := func(x []float64) float64 {
		la := bounds.Lambda.Clamp(x[0])
		ti := bounds.Timing.Clamp(x[1])
		mean, _ := model.Predict([]float64{la, ti, rpm})
		// Quadratic penalty in normalized coordinates keeps the simplex
		// from wandering outside the box.
		dl := (x[0] - la) / spanOr1(bounds.Lambda)
		dt := (x[1] - ti) / spanOr1(bounds.Timing)
		return mean + outOfBoundsPenalty*(dl*dl+dt*dt)
	}

	starts := latinHypercube(restarts, bounds, rng)
	bestVal := math.Inf(1)
	best := []float64{bounds.Lambda.Lo(), bounds.Timing.Lo()}
	for _, start := range starts {
		result, err := optimize.Minimize(
			optimize.Problem{Func: objective},
			start,
			&optimize.Settings{MajorIterations: 200},
			&optimize.NelderMead{},
		)
		if result == nil {
			continue
		}
		if err != nil && math.IsNaN(result.F) {
			continue
		}
		if result.F < bestVal {
			bestVal = result.F
			best = []float64{bounds.Lambda.Clamp(result.X[0]), bounds.Timing.Clamp(result.X[1])}
		}
	}

	mean, std := model.Predict([]float64{best[0], best[1], rpm})
	return types.OptimalPoint{
		RPM:           rpm,
		Lambda:        best[0],
		Timing:        best[1],
		PredictedBSFC: mean,
		Uncertainty:   std,
	}
}

// latinHypercube draws k stratified start points over the (lambda, timing)
// box: one sample per stratum per dimension, strata shuffled independently.
func latinHypercube(k int, bounds types.DomainBounds, rng *rand.Rand) [][]float64 {
	ranges := []types.Range{bounds.Lambda, bounds.Timing}
	perms := make([][]int, len(ranges))
	for d := range ranges {
		perms[d] = rng.Perm(k)
	}

	points := make([][]float64, k)
	for i := 0; i < k; i++ {
		p := make([]float64, len(ranges))
		for d, r := range ranges {
			stratum := float64(perms[d][i])
			p[d] = r.Lo() + (stratum+rng.Float64())*r.Span()/float64(k)
		}
		points[i] = p
	}
	return points
}

func spanOr1(r types.Range) float64 {
	if s := r.Span(); s > 0 {
		return s
	}
	return 1
}
