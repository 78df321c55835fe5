// FILE: asynclog/src/internal/format/text.go
package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"

	"github.com/lixenwraith/log"
)

// Produces human-readable text output
type TextFormatter struct {
	config *config.TextFormatterOptions
	logger *log.Logger
}

// Creates a new text formatter
func NewTextFormatter(opts *config.TextFormatterOptions, logger *log.Logger) (*TextFormatter, error) {
	f := &TextFormatter{
		config: opts,
		logger: logger,
	}

	return f, nil
}

// Formats the record as "[ts] [LEVEL] logger - message key=value ..."
// Bound-context keys are sorted for stable output.
func (f *TextFormatter) Format(record core.LogRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "[%s] [%s] %s - %s",
		record.Time.Format(f.config.TimestampFormat),
		strings.ToUpper(record.Level.String()),
		record.Logger,
		record.Message)

	if len(record.Fields) > 0 {
		keys := make([]string, 0, len(record.Fields))
		for k := range record.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&buf, " %s=%v", k, NormalizeValue(record.Fields[k]))
		}
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Returns the formatter name
func (f *TextFormatter) Name() string {
	return "text"
}
