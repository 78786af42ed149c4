package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldsFromStructUsesJSONNames(t *testing.T) {
	params := struct {
		Source       string  `json:"source"`
		NSuggestions int     `json:"n_suggestions"`
		BinWidth     float64 `json:"bin_width"`
	}{Source: "run_1.csv", NSuggestions: 5, BinWidth: 50}

	fields := NewFieldsFromStruct(params)
	require.NotNil(t, fields)
	assert.Equal(t, "run_1.csv", (*fields)["source"])
	assert.Equal(t, float64(5), (*fields)["n_suggestions"])
	assert.Equal(t, 50.0, (*fields)["bin_width"])
}

func TestNewFieldsFromStructPassesFieldsThrough(t *testing.T) {
	f := &Fields{"stage": "fit"}
	assert.Same(t, f, NewFieldsFromStruct(f))
}

func TestGetLoggerFieldsCamelCasesKeys(t *testing.T) {
	f := Fields{"bin_width": 50.0}

	kvs := f.GetLoggerFields()
	require.Len(t, kvs, 2)
	assert.Equal(t, "BinWidth", kvs[0])
	assert.Equal(t, 50.0, kvs[1])
}

func TestKeyValToMap(t *testing.T) {
	m := KeyValToMap("stage", "fit", "step", 3)
	assert.Equal(t, map[string]interface{}{"stage": "fit", "step": 3}, m)

	// Odd trailing key and non-string keys are dropped.
	assert.Equal(t, map[string]interface{}{"a": 1}, KeyValToMap("a", 1, "dangling"))
	assert.Empty(t, KeyValToMap(42, "v"))
}
