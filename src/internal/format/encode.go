// FILE: asynclog/src/internal/format/encode.go
package format

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"asynclog/src/internal/core"
)

// NormalizeValue converts bound-context values that encoding/json cannot
// represent (or represents poorly) into plain serializable scalars.
// A value that still cannot be serialized is replaced with a placeholder
// instead of failing the whole record.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		if _, err := json.Marshal(val); err != nil {
			return fmt.Sprintf("<unserializable %T>", val)
		}
		return val
	}
}

// NormalizeFields applies NormalizeValue to every bound-context value,
// returning a new map.
func NormalizeFields(fields core.Fields) core.Fields {
	if len(fields) == 0 {
		return nil
	}
	out := make(core.Fields, len(fields))
	for k, v := range fields {
		out[k] = NormalizeValue(v)
	}
	return out
}
