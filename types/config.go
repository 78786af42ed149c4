package types

type TemporalConfig struct {
	Host      string `json:"host"`
	Port      uint   `json:"port"`
	Namespace string `json:"namespace"`
	TaskQueue string `json:"task_queue"`
}

// Range is a [lo, hi] pair. It marshals as a two element array so the
// result record keeps the `[lo, hi]` wire shape.
type Range [2]float64

func (r Range) Lo() float64 {
	return r[0]
}

func (r Range) Hi() float64 {
	return r[1]
}

func (r Range) Span() float64 {
	return r[1] - r[0]
}

// Contains reports whether v falls inside the half-open interval [lo, hi).
func (r Range) Contains(v float64) bool {
	return v >= r[0] && v < r[1]
}

func (r Range) Clamp(v float64) float64 {
	if v < r[0] {
		return r[0]
	}
	if v > r[1] {
		return r[1]
	}
	return v
}

// OptimizerConfig holds the per-run tunables. It is passed by value into
// every pipeline stage; stages never mutate it.
type OptimizerConfig struct {
	// Width of each RPM bin.
	BinWidth float64 `json:"bin_width"`
	// Bins with fewer samples are excluded from the optimal map.
	MinSamplesPerBin int `json:"min_samples_per_bin"`
	// Number of next-experiment suggestions to retain.
	NSuggestions int `json:"n_suggestions"`
	// Explicit search bounds. When nil they are derived from the observed
	// data, padded by 10% of the span on each side.
	LambdaBounds *Range `json:"lambda_bounds,omitempty"`
	TimingBounds *Range `json:"timing_bounds,omitempty"`
	// Seed for every randomized step of a run (hyperparameter restarts,
	// multi-start points, candidate sampling).
	Seed int64 `json:"seed"`
	// Restarts for the hyperparameter fit and the per-bin argmin search.
	FitRestarts    int `json:"fit_restarts"`
	SearchRestarts int `json:"search_restarts"`
}

// WithDefaults fills any zero-valued tunable with its default.
func (c OptimizerConfig) WithDefaults() OptimizerConfig {
	if c.BinWidth <= 0 {
		c.BinWidth = DefaultBinWidth
	}
	if c.MinSamplesPerBin <= 0 {
		c.MinSamplesPerBin = DefaultMinSamplesPerBin
	}
	if c.NSuggestions <= 0 {
		c.NSuggestions = DefaultNSuggestions
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.FitRestarts <= 0 {
		c.FitRestarts = DefaultFitRestarts
	}
	if c.SearchRestarts <= 0 {
		c.SearchRestarts = DefaultSearchRestarts
	}
	return c
}

type Config struct {
	MongodbUri string          `json:"mongodb_uri"`
	LogLevel   string          `json:"log_level"`
	Temporal   *TemporalConfig `json:"temporal"`
	Optimizer  OptimizerConfig `json:"optimizer"`
}
