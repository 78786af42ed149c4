package types

// Pipeline stage names, in execution order.
const (
	StageIngest   = "ingest"
	StageBin      = "bin"
	StageFit      = "fit"
	StageOptimize = "optimize"
	StageAssemble = "assemble"
)

// ProgressEvent is one line of the run's one-way status stream. The
// pipeline only writes events; nothing is ever read back from the caller.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// EmitProgress sends ev without ever blocking the pipeline: if the caller
// is not draining the channel the event is dropped.
func EmitProgress(ch chan<- ProgressEvent, ev ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
