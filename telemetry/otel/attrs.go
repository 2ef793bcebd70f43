package otel

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// keyvalsToAttributes converts a flat key/value slice (as passed to
// telemetry.Span.AddEvent) into otel attributes. Values of unsupported types
// are stringified with fmt.Sprint; a trailing unpaired key is dropped.
func keyvalsToAttributes(kv []any) []attribute.KeyValue {
	if len(kv) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		out = append(out, toAttribute(key, kv[i+1]))
	}
	return out
}

func toAttribute(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case bool:
		return attribute.Bool(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}
