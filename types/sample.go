package types

import "math"

// RawRow is one numeric measurement row as delivered by an upstream
// collaborator (CSV loader, samples collection). Missing or unparseable
// fields arrive as NaN.
type RawRow struct {
	RPM    float64 `json:"rpm" bson:"rpm"`
	Lambda float64 `json:"lambda" bson:"lambda"`
	Timing float64 `json:"timing" bson:"timing"`
	BSFC   float64 `json:"bsfc" bson:"bsfc"`
	Source string  `json:"source" bson:"source"`
}

// Sample is a validated dyno measurement. Immutable once ingested.
type Sample struct {
	RPM    float64 `json:"rpm" bson:"rpm"`
	Lambda float64 `json:"lambda" bson:"lambda"`
	Timing float64 `json:"timing" bson:"timing"`
	BSFC   float64 `json:"bsfc" bson:"bsfc"`
	Source string  `json:"source" bson:"source"`
}

// Valid reports whether the row can become a Sample. A BSFC at or below
// zero means no load was applied and the reading carries no information.
func (r RawRow) Valid() bool {
	return finite(r.RPM) &&
		finite(r.Lambda) &&
		finite(r.Timing) &&
		finite(r.BSFC) &&
		r.BSFC > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RPMBin is one fixed-width bucket of engine-speed values. Bins are
// recomputed from scratch every run.
type RPMBin struct {
	Center  float64
	Width   float64
	Samples []Sample
	Count   int
	// Valid is false when Count < MinSamplesPerBin; invalid bins are
	// excluded from the optimal map and all statistics, but their samples
	// still feed the global training set.
	Valid bool

	MeanLambda float64
	MeanTiming float64
	MeanBSFC   float64
	StdBSFC    float64
	// BestBSFC is the minimum observed (not predicted) BSFC in the bin.
	BestBSFC float64
}

// DomainBounds is the (lambda, timing, rpm) search box.
type DomainBounds struct {
	Lambda Range `json:"lambda" bson:"lambda"`
	Timing Range `json:"timing" bson:"timing"`
	RPM    Range `json:"rpm" bson:"rpm"`
}

// TrainingSet is the full-envelope regression input built once per run from
// all valid samples across all bins.
type TrainingSet struct {
	// X rows are [lambda, timing, rpm].
	X      [][]float64
	Y      []float64
	Bounds DomainBounds
}
