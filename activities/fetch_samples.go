package activities

import (
	"context"

	"dynotune/logger"
	"dynotune/records"
	"dynotune/types"
)

var FetchSamplesName = "fetch_samples"

// FetchSamples loads the accumulated measurement rows for a run from the
// samples collection.
func (aCtx *Ctx) FetchSamples(ctx context.Context, params types.FetchSamplesParams) (*types.FetchSamplesResults, error) {
	l := logger.GetActivityLogger(FetchSamplesName, ctx, params)
	l.Debug("Fetching samples for optimization run.")

	rows, err := records.FetchSamples(aCtx.App.Mongodb, params.Source, aCtx.App.Logger)
	if err != nil {
		return nil, err
	}

	l.Debug("Samples fetched.", "rows", len(rows))
	return &types.FetchSamplesResults{Rows: rows}, nil
}
