package types

var (
	DefaultMongodbUri        = "mongodb://127.0.0.1:27017/dynotune"
	DefaultLogLevel          = "info"
	DefaultTemporalHost      = "localhost"
	DefaultTemporalPort      = uint(7233)
	DefaultTemporalNamespace = "dynotune"
	DefaultTemporalTaskQueue = "optimizer"
)

const (
	DefaultBinWidth         = 50.0
	DefaultMinSamplesPerBin = 3
	DefaultNSuggestions     = 5
	DefaultSeed             = int64(42)
	DefaultFitRestarts      = 10
	DefaultSearchRestarts   = 10
)

// Mongo collection names.
const (
	SamplesCollection = "samples"
	ResultsCollection = "results"
)
