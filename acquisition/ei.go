package acquisition

import "gonum.org/v1/gonum/stat/distuv"

// Exploration-exploitation offset of the improvement term.
const defaultXi = 0.01

// ExpectedImprovement scores a candidate against the best observed BSFC.
// It rewards both a predicted mean below the current best (exploitation)
// and high predictive uncertainty (exploration). Always >= 0, and exactly
// 0 wherever the model is certain.
func ExpectedImprovement(mean, std, best, xi float64) float64 {
	if std <= 0 {
		return 0
	}
	improvement := best - mean - xi
	z := improvement / std
	ei := improvement*distuv.UnitNormal.CDF(z) + std*distuv.UnitNormal.Prob(z)
	if ei < 0 {
		// Analytically EI >= 0; tiny negatives are floating point residue.
		return 0
	}
	return ei
}
