package activities

import (
	"context"
	"sync"

	"dynotune/logger"
	"dynotune/pipeline"
	"dynotune/types"
)

var RunOptimizationName = "run_optimization"

// RunOptimization executes the full batch pipeline over the provided rows.
// The pipeline's progress stream is drained into the activity log so the
// run's stages show up in the worker output.
func (aCtx *Ctx) RunOptimization(ctx context.Context, params types.RunOptimizationParams) (*types.RunOptimizationResults, error) {
	l := logger.GetActivityLogger(RunOptimizationName, ctx, params.Optimizer)
	l.Info("Starting optimization run.", "rows", len(params.Rows))

	progress := make(chan types.ProgressEvent, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range progress {
			l.Info(ev.Message, "stage", ev.Stage, "step", ev.Step, "total", ev.Total)
		}
	}()

	record, err := pipeline.Run(params.Optimizer, params.Rows, progress, aCtx.App.Logger)
	wg.Wait()
	if err != nil {
		l.Error("Optimization run failed.", "error", err)
		return nil, err
	}

	rejected := 0
	for _, w := range record.Metadata.Warnings {
		if w.Code == types.WarnRowsRejected {
			rejected = len(params.Rows) - record.Metadata.NTrainingSamples
		}
	}

	return &types.RunOptimizationResults{
		Record:   *record,
		Rejected: rejected,
	}, nil
}
