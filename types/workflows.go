package types

import "time"

// OptimizeParams is the input of the Optimize workflow.
type OptimizeParams struct {
	// Source restricts the run to samples from one log source. Empty means
	// every accumulated sample.
	Source string `json:"source"`
	// Optimizer overrides the app-level tunables for this run when set.
	Optimizer *OptimizerConfig `json:"optimizer,omitempty"`
}

type OptimizeResults struct {
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
	NSamples  int       `json:"n_samples"`
	Rejected  int       `json:"rejected"`
	NBins     int       `json:"n_bins"`
	BestBSFC  float64   `json:"best_bsfc"`
}

type FetchSamplesParams struct {
	Source string `json:"source"`
}

type FetchSamplesResults struct {
	Rows []RawRow `json:"rows"`
}

type RunOptimizationParams struct {
	Rows      []RawRow        `json:"rows"`
	Optimizer OptimizerConfig `json:"optimizer"`
}

type RunOptimizationResults struct {
	Record   ResultRecord `json:"record"`
	Rejected int          `json:"rejected"`
}

type SaveResultParams struct {
	Record ResultRecord `json:"record"`
}

type SaveResultResults struct {
	RecordID string `json:"record_id"`
}
