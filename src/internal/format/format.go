// FILE: asynclog/src/internal/format/format.go
package format

import (
	"fmt"

	"asynclog/src/internal/config"
	"asynclog/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter transforms a LogRecord into a byte slice ready for output.
type Formatter interface {
	// Format takes a LogRecord and returns the formatted record,
	// newline-terminated.
	Format(record core.LogRecord) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a Formatter from the format configuration.
func New(cfg *config.FormatConfig, logger *log.Logger) (Formatter, error) {
	name := cfg.Name
	if name == "" {
		name = "text"
	}

	switch name {
	case "json":
		return NewJSONFormatter(&cfg.JSON, logger)
	case "text":
		return NewTextFormatter(&cfg.Text, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
