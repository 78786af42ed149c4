package activities

import (
	"context"

	"dynotune/logger"
	"dynotune/records"
	"dynotune/types"
)

var SaveResultName = "save_result"

// SaveResult persists the run's result record as a new immutable document.
func (aCtx *Ctx) SaveResult(ctx context.Context, params types.SaveResultParams) (*types.SaveResultResults, error) {
	l := logger.GetActivityLogger(SaveResultName, ctx, nil)

	id, err := records.SaveResult(aCtx.App.Mongodb, params.Record, aCtx.App.Logger)
	if err != nil {
		return nil, err
	}

	l.Debug("Result record saved.", "record_id", id)
	return &types.SaveResultResults{RecordID: id}, nil
}
