package logger

import (
	"context"
	"encoding/json"

	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog/log"
	"go.temporal.io/sdk/activity"
	temporalLogger "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/workflow"
)

type Fields map[string]interface{}

func (f Fields) GetLoggerFields() []interface{} {
	loggerFields := make([]interface{}, 0)
	for k, v := range f {
		loggerFields = append(loggerFields, strcase.ToCamel(k))
		loggerFields = append(loggerFields, v)
	}
	return loggerFields
}

func NewFieldsFromStruct(s interface{}) *Fields {
	var fields Fields

	if v, ok := s.(*Fields); ok {
		return v
	}

	data, err := json.Marshal(s)
	if err != nil {
		log.Fatal().Err(err)
	}
	err = json.Unmarshal(data, &fields)
	if err != nil {
		log.Fatal().Err(err)
	}
	return &fields
}

// GetActivityLogger returns the activity's temporal logger with the
// params' JSON fields attached as camel-cased key/value pairs.
func GetActivityLogger(name string, ctx context.Context, params interface{}) temporalLogger.Logger {
	return temporalLogger.With(activity.GetLogger(ctx), NewFieldsFromStruct(params).GetLoggerFields()...)
}

// GetWorkflowLogger is GetActivityLogger for workflow contexts.
func GetWorkflowLogger(name string, ctx workflow.Context, params interface{}) temporalLogger.Logger {
	return temporalLogger.With(workflow.GetLogger(ctx), NewFieldsFromStruct(params).GetLoggerFields()...)
}

// KeyValToMap folds a temporal-style key/value vararg list into a map.
// Odd trailing keys are dropped.
func KeyValToMap(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		k, ok := kvs[i].(string)
		if !ok {
			continue
		}
		m[k] = kvs[i+1]
	}
	return m
}
