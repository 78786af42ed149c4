package surrogate

import "math"

// Hyperparameters of the Matérn 5/2 covariance, in standardized input
// space. Length scales are per feature (lambda, timing, rpm).
type Hyperparameters struct {
	LengthScales []float64 `json:"length_scales"`
	SignalVar    float64   `json:"signal_var"`
	NoiseVar     float64   `json:"noise_var"`
}

const sqrt5 = 2.23606797749978969

// matern52 evaluates the Matérn ν=5/2 covariance between two points.
// Twice differentiable: smooth enough for a combustion response surface
// without the over-smoothness of a pure RBF.
func matern52(a, b []float64, h Hyperparameters) float64 {
	r2 := 0.0
	for d := range a {
		s := (a[d] - b[d]) / h.LengthScales[d]
		r2 += s * s
	}
	r := math.Sqrt(r2)
	return h.SignalVar * (1 + sqrt5*r + 5.0*r2/3.0) * math.Exp(-sqrt5*r)
}
