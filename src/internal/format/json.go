// FILE: asynclog/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter produces structured JSON output from LogRecord objects.
type JSONFormatter struct {
	config *config.JSONFormatterOptions
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration options.
func NewJSONFormatter(opts *config.JSONFormatterOptions, logger *log.Logger) (*JSONFormatter, error) {
	f := &JSONFormatter{
		config: opts,
		logger: logger,
	}

	return f, nil
}

// Format transforms a single LogRecord into a JSON byte slice.
func (f *JSONFormatter) Format(record core.LogRecord) ([]byte, error) {
	output := f.encode(record)

	var result []byte
	var err error
	if f.config.Pretty {
		result, err = json.MarshalIndent(output, "", "  ")
	} else {
		result, err = json.Marshal(output)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatBatch transforms a slice of LogRecord objects into a single JSON
// array byte slice.
func (f *JSONFormatter) FormatBatch(records []core.LogRecord) ([]byte, error) {
	batch := make([]map[string]any, 0, len(records))
	for _, record := range records {
		batch = append(batch, f.encode(record))
	}

	var result []byte
	var err error
	if f.config.Pretty {
		result, err = json.MarshalIndent(batch, "", "  ")
	} else {
		result, err = json.Marshal(batch)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON batch: %w", err)
	}

	return result, nil
}

func (f *JSONFormatter) encode(record core.LogRecord) map[string]any {
	output := make(map[string]any, len(record.Fields)+4)

	// Bound context first so record metadata wins on collision
	for k, v := range record.Fields {
		output[k] = NormalizeValue(v)
	}

	output[f.config.TimestampField] = record.Time.Format(time.RFC3339Nano)
	output[f.config.LevelField] = record.Level.String()
	output[f.config.LoggerField] = record.Logger
	output[f.config.MessageField] = record.Message

	return output
}
