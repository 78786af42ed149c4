package surrogate

import "gonum.org/v1/gonum/stat"

// scaler standardizes columns to zero mean, unit variance. A constant
// column gets scale 1 so transform stays defined.
type scaler struct {
	mean  []float64
	scale []float64
}

func fitScaler(x [][]float64) *scaler {
	dims := len(x[0])
	s := &scaler{
		mean:  make([]float64, dims),
		scale: make([]float64, dims),
	}
	col := make([]float64, len(x))
	for d := 0; d < dims; d++ {
		for i := range x {
			col[i] = x[i][d]
		}
		s.mean[d] = stat.Mean(col, nil)
		sd := 0.0
		if len(col) > 1 {
			sd = stat.StdDev(col, nil)
		}
		if sd == 0 {
			sd = 1
		}
		s.scale[d] = sd
	}
	return s
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for d := range x {
		out[d] = (x[d] - s.mean[d]) / s.scale[d]
	}
	return out
}

func (s *scaler) transformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		out[i] = s.transform(x[i])
	}
	return out
}

// yScaler standardizes the regression target.
type yScaler struct {
	mean  float64
	scale float64
}

func fitYScaler(y []float64) *yScaler {
	s := &yScaler{mean: stat.Mean(y, nil), scale: 1}
	if len(y) > 1 {
		if sd := stat.StdDev(y, nil); sd > 0 {
			s.scale = sd
		}
	}
	return s
}

func (s *yScaler) transform(v float64) float64 {
	return (v - s.mean) / s.scale
}

func (s *yScaler) inverseMean(v float64) float64 {
	return v*s.scale + s.mean
}

func (s *yScaler) inverseStd(v float64) float64 {
	return v * s.scale
}
