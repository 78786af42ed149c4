package logger

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter bridges zerolog into the logger interface the Temporal SDK
// expects, so workflow and activity logs land in the same stream as the
// rest of the app.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new instance of ZerologAdapter with the provided logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug This is the adapter function for zerolog's Debug().
func (zl *ZerologAdapter) Debug(msg string, kvs ...interface{}) {
	zl.logger.Debug().Fields(KeyValToMap(kvs...)).Msg(msg)
}

// Info This is the adapter function for zerolog's Info().
func (zl *ZerologAdapter) Info(msg string, kvs ...interface{}) {
	zl.logger.Info().Fields(KeyValToMap(kvs...)).Msg(msg)
}

// Warn This is the adapter function for zerolog's Warn().
func (zl *ZerologAdapter) Warn(msg string, kvs ...interface{}) {
	zl.logger.Warn().Fields(KeyValToMap(kvs...)).Msg(msg)
}

// Error This is the adapter function for zerolog's Error(). A field named
// "error" or "err" carrying an error value is promoted to the event's Err.
func (zl *ZerologAdapter) Error(msg string, kvs ...interface{}) {
	var e error

	f := KeyValToMap(kvs...)

	if err, ok := f["error"].(error); ok {
		e = err
		delete(f, "error")
	}
	if err, ok := f["err"].(error); ok {
		e = err
		delete(f, "err")
	}

	logEvt := zl.logger.Error()
	if e != nil {
		logEvt = logEvt.Err(e)
	}

	logEvt.Fields(f).Msg(msg)
}

// WithContext returns a new adapter carrying extra context fields.
func (zl *ZerologAdapter) WithContext(name, componentType string, params ...interface{}) *ZerologAdapter {
	lCtx := zl.logger.With().
		Str("name", name).
		Str("component", componentType)

	if params != nil {
		lCtx = lCtx.Fields(KeyValToMap(params...))
	}

	return &ZerologAdapter{logger: lCtx.Logger()}
}
