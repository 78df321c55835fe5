// FILE: asynclog/src/internal/core/record_test.go
package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    Level
		expectError bool
	}{
		{name: "Debug", input: "debug", expected: LevelDebug},
		{name: "InfoUpper", input: "INFO", expected: LevelInfo},
		{name: "WarnAlias", input: "warn", expected: LevelWarning},
		{name: "Warning", input: "warning", expected: LevelWarning},
		{name: "Error", input: "error", expected: LevelError},
		{name: "Critical", input: "critical", expected: LevelCritical},
		{name: "Padded", input: "  Error ", expected: LevelError},
		{name: "Unknown", input: "verbose", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "CRITICAL", LevelCritical.String())
	assert.Equal(t, "LEVEL(42)", Level(42).String())
}

func TestFieldsMerge(t *testing.T) {
	base := Fields{"a": 1, "b": 2}
	merged := base.Merge(Fields{"a": 9, "c": 3})

	assert.Equal(t, Fields{"a": 9, "b": 2, "c": 3}, merged)
	// Inputs untouched
	assert.Equal(t, Fields{"a": 1, "b": 2}, base)
}

func TestFieldsMergeEmptyOverlay(t *testing.T) {
	base := Fields{"a": 1}
	merged := base.Merge(nil)

	assert.Equal(t, base, merged)
	merged["a"] = 2
	assert.Equal(t, 1, base["a"])
}

func TestNewRecordCopiesFields(t *testing.T) {
	fields := Fields{"request_id": "r-1"}
	rec := NewRecord("api", LevelInfo, "hello", fields)

	// Mutating the source map must not change the record
	fields["request_id"] = "r-2"
	assert.Equal(t, "r-1", rec.Fields["request_id"])
	assert.Equal(t, "api", rec.Logger)
	assert.Equal(t, LevelInfo, rec.Level)
	assert.False(t, rec.Time.IsZero())
}
