// Package surrogate fits a probabilistic regression model of BSFC over
// (lambda, timing, rpm): a Gaussian process with a Matérn 5/2 kernel whose
// hyperparameters are chosen by maximizing marginal likelihood. When the
// data cannot support a GP fit the package degrades to a constant-mean
// model and reports it.
package surrogate

import (
	"fmt"
	"math"
	"math/rand"

	"dynotune/types"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Surrogate is the fit/predict capability the acquisition engine depends
// on. The regression algorithm behind it is an implementation detail.
type Surrogate interface {
	// Predict returns the predicted mean and standard deviation at one
	// [lambda, timing, rpm] point, in original (de-standardized) units.
	Predict(x []float64) (mean, std float64)
	// PredictBatch is Predict over a batch of query points.
	PredictBatch(xs [][]float64) (means, stds []float64)
}

type Config struct {
	// Restarts of the hyperparameter search from perturbed start points.
	Restarts int
	// Jitter added to the covariance diagonal on top of the fitted noise,
	// guaranteeing invertibility with duplicate inputs.
	Jitter float64
	Seed   int64
}

const (
	defaultJitter = 1e-8
	// Minimum number of distinct inputs required for a GP fit.
	minDistinctPoints = 5
	// Log-space box for hyperparameters; excursions are penalized.
	thetaBound = 8.0
	// Objective value standing in for a failed Cholesky factorization.
	badFit = 1e10
)

// Fit fits the surrogate on the full training set. It always returns a
// usable model: if the GP fit is impossible (too few distinct points) or
// fails to converge, the returned model is a constant-mean fallback and
// the non-nil warning says so.
func Fit(ts types.TrainingSet, cfg Config, l *zerolog.Logger) (Surrogate, *types.Warning) {
	if cfg.Restarts <= 0 {
		cfg.Restarts = types.DefaultFitRestarts
	}
	if cfg.Jitter <= 0 {
		cfg.Jitter = defaultJitter
	}

	if n := distinctPoints(ts.X); n < minDistinctPoints {
		w := fallbackWarning(fmt.Sprintf("only %d distinct training points (need %d), using constant-mean model", n, minDistinctPoints))
		l.Warn().Str("code", w.Code).Msg(w.Message)
		return newConstantModel(ts.Y), w
	}

	xsc := fitScaler(ts.X)
	ysc := fitYScaler(ts.Y)
	xs := xsc.transformAll(ts.X)
	yv := mat.NewVecDense(len(ts.Y), nil)
	for i, v := range ts.Y {
		yv.SetVec(i, ysc.transform(v))
	}

	objective := func(theta []float64) float64 {
		penalty := 0.0
		clamped := make([]float64, len(theta))
		for i, t := range theta {
			c := t
			if c > thetaBound {
				penalty += (c - thetaBound) * (c - thetaBound)
				c = thetaBound
			} else if c < -thetaBound {
				penalty += (c + thetaBound) * (c + thetaBound)
				c = -thetaBound
			}
			clamped[i] = c
		}
		return negLogMarginal(xs, yv, thetaToHypers(clamped), cfg.Jitter) + penalty
	}

	// Multi-restart Nelder-Mead over log hyperparameters. The first start
	// is the unit-scale default; the rest are perturbed from it.
	rng := rand.New(rand.NewSource(cfg.Seed))
	x0 := []float64{0, 0, 0, 0, math.Log(0.01)}
	bestVal := math.Inf(1)
	var bestTheta []float64
	for r := 0; r < cfg.Restarts; r++ {
		start := make([]float64, len(x0))
		copy(start, x0)
		if r > 0 {
			for i := range start {
				start[i] += rng.Float64()*2 - 1
			}
		}
		result, err := optimize.Minimize(
			optimize.Problem{Func: objective},
			start,
			&optimize.Settings{MajorIterations: 300},
			&optimize.NelderMead{},
		)
		if result == nil {
			continue
		}
		if err != nil {
			l.Debug().Err(err).Int("restart", r).Msg("Hyperparameter restart did not fully converge.")
		}
		if result.F < bestVal && result.F < badFit {
			bestVal = result.F
			bestTheta = append([]float64(nil), result.X...)
		}
	}

	if bestTheta == nil {
		w := fallbackWarning("hyperparameter fit failed to converge, using constant-mean model")
		l.Warn().Str("code", w.Code).Msg(w.Message)
		return newConstantModel(ts.Y), w
	}

	h := thetaToHypers(bestTheta)
	model, ok := newGP(xs, yv, h, cfg.Jitter, xsc, ysc)
	if !ok {
		w := fallbackWarning("covariance factorization failed at fitted hyperparameters, using constant-mean model")
		l.Warn().Str("code", w.Code).Msg(w.Message)
		return newConstantModel(ts.Y), w
	}

	l.Info().
		Int("samples", len(ts.Y)).
		Floats64("length_scales", h.LengthScales).
		Float64("signal_var", h.SignalVar).
		Float64("noise_var", h.NoiseVar).
		Float64("neg_log_marginal", bestVal).
		Msg("Surrogate fitted.")
	return model, nil
}

func fallbackWarning(msg string) *types.Warning {
	return &types.Warning{Code: types.WarnFallbackModel, Message: msg}
}

// thetaToHypers maps the unconstrained log-space vector
// [log l1, log l2, log l3, log sf2, log sn2] to hyperparameters.
func thetaToHypers(theta []float64) Hyperparameters {
	return Hyperparameters{
		LengthScales: []float64{math.Exp(theta[0]), math.Exp(theta[1]), math.Exp(theta[2])},
		SignalVar:    math.Exp(theta[3]),
		NoiseVar:     math.Exp(theta[4]),
	}
}

// negLogMarginal is the negative log marginal likelihood of the
// standardized training data under h.
func negLogMarginal(xs [][]float64, y *mat.VecDense, h Hyperparameters, jitter float64) float64 {
	n := len(xs)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := matern52(xs[i], xs[j], h)
			if i == j {
				v += h.NoiseVar + jitter
			}
			k.SetSym(i, j, v)
		}
	}

	var ch mat.Cholesky
	if !ch.Factorize(k) {
		return badFit
	}
	var alpha mat.VecDense
	if err := ch.SolveVecTo(&alpha, y); err != nil {
		return badFit
	}

	nll := 0.5*mat.Dot(y, &alpha) + 0.5*ch.LogDet() + 0.5*float64(n)*math.Log(2*math.Pi)
	if math.IsNaN(nll) || math.IsInf(nll, 0) {
		return badFit
	}
	return nll
}

func distinctPoints(x [][]float64) int {
	seen := make(map[string]struct{}, len(x))
	for _, row := range x {
		seen[fmt.Sprintf("%.9g|%.9g|%.9g", row[0], row[1], row[2])] = struct{}{}
	}
	return len(seen)
}

// ----------------------------------------------------------------------------
// Gaussian process model
// ----------------------------------------------------------------------------

type gp struct {
	xs    [][]float64
	chol  mat.Cholesky
	alpha *mat.VecDense
	h     Hyperparameters
	xsc   *scaler
	ysc   *yScaler
}

func newGP(xs [][]float64, y *mat.VecDense, h Hyperparameters, jitter float64, xsc *scaler, ysc *yScaler) (*gp, bool) {
	n := len(xs)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := matern52(xs[i], xs[j], h)
			if i == j {
				v += h.NoiseVar + jitter
			}
			k.SetSym(i, j, v)
		}
	}

	m := &gp{xs: xs, h: h, xsc: xsc, ysc: ysc}
	if !m.chol.Factorize(k) {
		return nil, false
	}
	m.alpha = mat.NewVecDense(n, nil)
	if err := m.chol.SolveVecTo(m.alpha, y); err != nil {
		return nil, false
	}
	return m, true
}

func (g *gp) Predict(x []float64) (float64, float64) {
	xq := g.xsc.transform(x)
	n := len(g.xs)
	kv := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		kv.SetVec(i, matern52(xq, g.xs[i], g.h))
	}

	meanS := mat.Dot(kv, g.alpha)

	var v mat.VecDense
	variance := g.h.SignalVar
	if err := g.chol.SolveVecTo(&v, kv); err == nil {
		variance -= mat.Dot(kv, &v)
	}
	if variance < 0 {
		variance = 0
	}

	return g.ysc.inverseMean(meanS), g.ysc.inverseStd(math.Sqrt(variance))
}

func (g *gp) PredictBatch(xs [][]float64) ([]float64, []float64) {
	means := make([]float64, len(xs))
	stds := make([]float64, len(xs))
	for i, x := range xs {
		means[i], stds[i] = g.Predict(x)
	}
	return means, stds
}

// Hyperparameters returns the fitted kernel hyperparameters, in
// standardized input space.
func (g *gp) Hyperparameters() Hyperparameters {
	return g.h
}

// NoiseStd returns the fitted observation noise standard deviation in
// original target units.
func (g *gp) NoiseStd() float64 {
	return g.ysc.inverseStd(math.Sqrt(g.h.NoiseVar))
}

// ----------------------------------------------------------------------------
// Constant-mean fallback
// ----------------------------------------------------------------------------

type constantModel struct {
	mean float64
	std  float64
}

func newConstantModel(y []float64) *constantModel {
	m := &constantModel{mean: stat.Mean(y, nil)}
	if len(y) > 1 {
		m.std = stat.StdDev(y, nil)
	}
	return m
}

func (c *constantModel) Predict(_ []float64) (float64, float64) {
	return c.mean, c.std
}

func (c *constantModel) PredictBatch(xs [][]float64) ([]float64, []float64) {
	means := make([]float64, len(xs))
	stds := make([]float64, len(xs))
	for i := range xs {
		means[i], stds[i] = c.mean, c.std
	}
	return means, stds
}
