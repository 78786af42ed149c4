package types

import "time"

// Warning is a recoverable condition surfaced on the run's metadata.
type Warning struct {
	Code    string `json:"code" bson:"code"`
	Message string `json:"message" bson:"message"`
}

// Warning codes.
const (
	WarnRowsRejected  = "rows_rejected"
	WarnBinExcluded   = "bin_excluded"
	WarnFallbackModel = "fallback_model"
)

type Metadata struct {
	Timestamp        time.Time    `json:"timestamp" bson:"timestamp"`
	NTrainingSamples int          `json:"n_training_samples" bson:"n_training_samples"`
	TrainingBounds   DomainBounds `json:"training_bounds" bson:"training_bounds"`
	Warnings         []Warning    `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

type DataSummary struct {
	NBins            int     `json:"n_bins" bson:"n_bins"`
	RPMRange         Range   `json:"rpm_range" bson:"rpm_range"`
	TotalSamples     int     `json:"total_samples" bson:"total_samples"`
	AvgSamplesPerBin float64 `json:"avg_samples_per_bin" bson:"avg_samples_per_bin"`
	LambdaRange      Range   `json:"lambda_range" bson:"lambda_range"`
	TimingRange      Range   `json:"timing_range" bson:"timing_range"`
	BSFCRange        Range   `json:"bsfc_range" bson:"bsfc_range"`
}

type Axis struct {
	Name   string    `json:"name" bson:"name"`
	Values []float64 `json:"values" bson:"values"`
	Unit   string    `json:"unit,omitempty" bson:"unit,omitempty"`
}

type Table struct {
	Name   string    `json:"name,omitempty" bson:"name,omitempty"`
	Unit   string    `json:"unit,omitempty" bson:"unit,omitempty"`
	Values []float64 `json:"values" bson:"values"`
}

type Tables struct {
	Lambda        Table `json:"lambda" bson:"lambda"`
	Timing        Table `json:"timing" bson:"timing"`
	PredictedBSFC Table `json:"predicted_bsfc" bson:"predicted_bsfc"`
}

// OptimalMap is a 1D calibration map with RPM as the axis. Axis values and
// every table's values are equal length and index aligned.
type OptimalMap struct {
	Format string `json:"format" bson:"format"`
	Axis   Axis   `json:"axis" bson:"axis"`
	Tables Tables `json:"tables" bson:"tables"`
}

// OptimalPoint is the argmin of predicted BSFC at one valid bin's RPM.
type OptimalPoint struct {
	RPM           float64 `json:"rpm" bson:"rpm"`
	Lambda        float64 `json:"lambda" bson:"lambda"`
	Timing        float64 `json:"timing" bson:"timing"`
	PredictedBSFC float64 `json:"predicted_bsfc" bson:"predicted_bsfc"`
	Uncertainty   float64 `json:"uncertainty" bson:"uncertainty"`
}

// Suggestion is a ranked next-experiment candidate.
type Suggestion struct {
	RPM                 float64 `json:"rpm" bson:"rpm"`
	Lambda              float64 `json:"lambda" bson:"lambda"`
	Timing              float64 `json:"timing" bson:"timing"`
	PredictedBSFC       float64 `json:"predicted_bsfc" bson:"predicted_bsfc"`
	Uncertainty         float64 `json:"uncertainty" bson:"uncertainty"`
	ExpectedImprovement float64 `json:"expected_improvement" bson:"expected_improvement"`
}

type CurrentBest struct {
	OverallBSFC float64            `json:"overall_bsfc" bson:"overall_bsfc"`
	PerRPM      map[string]float64 `json:"per_rpm" bson:"per_rpm"`
}

// ResultRecord is the immutable per-run output, identified by its creation
// timestamp. Written once, never updated in place.
type ResultRecord struct {
	Metadata             Metadata     `json:"metadata" bson:"metadata"`
	DataSummary          DataSummary  `json:"data_summary" bson:"data_summary"`
	OptimalMap           OptimalMap   `json:"optimal_map" bson:"optimal_map"`
	SuggestedExperiments []Suggestion `json:"suggested_experiments" bson:"suggested_experiments"`
	CurrentBest          CurrentBest  `json:"current_best" bson:"current_best"`
}
