package workflows

import (
	"time"

	"dynotune/activities"
	"dynotune/logger"
	"dynotune/types"

	"go.temporal.io/sdk/workflow"
)

var OptimizeName = "Optimize"

// Optimize orchestrates one optimization run end to end. Stages run
// strictly in sequence because each depends on the full output of the
// previous one; the surrogate fit inside run_optimization dominates the
// latency, so that activity gets the long timeout. A failed run produces
// no result record.
func (wCtx *Ctx) Optimize(ctx workflow.Context, params types.OptimizeParams) (*types.OptimizeResults, error) {
	l := logger.GetWorkflowLogger(OptimizeName, ctx, params)
	l.Debug("Starting Optimize Workflow.")

	optCfg := wCtx.App.Config.Optimizer
	if params.Optimizer != nil {
		optCfg = *params.Optimizer
	}
	optCfg = optCfg.WithDefaults()

	// -------------------------------------------------------------------------
	// -------------------- Fetch accumulated samples --------------------------
	// -------------------------------------------------------------------------
	ctxTimeout := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		ScheduleToStartTimeout: time.Minute * 5,
		StartToCloseTimeout:    time.Minute * 5,
	})
	var fetched types.FetchSamplesResults
	err := workflow.ExecuteActivity(ctxTimeout, activities.FetchSamplesName, types.FetchSamplesParams{
		Source: params.Source,
	}).Get(ctx, &fetched)
	if err != nil {
		return nil, err
	}

	// -------------------------------------------------------------------------
	// -------------------- Run the optimization batch -------------------------
	// -------------------------------------------------------------------------
	ctxTimeout = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		ScheduleToStartTimeout: time.Minute * 5,
		StartToCloseTimeout:    time.Minute * 30,
	})
	var run types.RunOptimizationResults
	err = workflow.ExecuteActivity(ctxTimeout, activities.RunOptimizationName, types.RunOptimizationParams{
		Rows:      fetched.Rows,
		Optimizer: optCfg,
	}).Get(ctx, &run)
	if err != nil {
		return nil, err
	}

	// -------------------------------------------------------------------------
	// -------------------- Persist the result record --------------------------
	// -------------------------------------------------------------------------
	ctxTimeout = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		ScheduleToStartTimeout: time.Minute * 5,
		StartToCloseTimeout:    time.Minute * 5,
	})
	var saved types.SaveResultResults
	err = workflow.ExecuteActivity(ctxTimeout, activities.SaveResultName, types.SaveResultParams{
		Record: run.Record,
	}).Get(ctx, &saved)
	if err != nil {
		return nil, err
	}

	l.Info("Optimization workflow complete.", "record_id", saved.RecordID, "best_bsfc", run.Record.CurrentBest.OverallBSFC)

	return &types.OptimizeResults{
		RecordID:  saved.RecordID,
		Timestamp: run.Record.Metadata.Timestamp,
		NSamples:  run.Record.Metadata.NTrainingSamples,
		Rejected:  run.Rejected,
		NBins:     run.Record.DataSummary.NBins,
		BestBSFC:  run.Record.CurrentBest.OverallBSFC,
	}, nil
}
