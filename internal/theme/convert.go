package theme

import (
	"encoding/json"
	"fmt"
)

// RawConfig is a configuration payload as it crossed the persistence
// boundary: a JSON object with no guarantees about its contents.
type RawConfig map[string]any

// InvalidConfigurationError is returned when a persisted configuration is not
// a non-null JSON object.
type InvalidConfigurationError struct {
	Got string // Go type or parse failure description
	Err error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid theme configuration: %s: %v", e.Got, e.Err)
	}
	return fmt.Sprintf("invalid theme configuration: expected object, got %s", e.Got)
}

func (e *InvalidConfigurationError) Unwrap() error { return e.Err }

// ParseConfiguration converts a raw persisted configuration into a RawConfig.
// Strings and byte slices are parsed as JSON first; maps are used as-is.
func ParseConfiguration(raw any) (RawConfig, error) {
	switch v := raw.(type) {
	case string:
		return parseJSONObject([]byte(v))
	case []byte:
		return parseJSONObject(v)
	case json.RawMessage:
		return parseJSONObject(v)
	case RawConfig:
		if v == nil {
			return nil, &InvalidConfigurationError{Got: "null"}
		}
		return v, nil
	case map[string]any:
		if v == nil {
			return nil, &InvalidConfigurationError{Got: "null"}
		}
		return RawConfig(v), nil
	case nil:
		return nil, &InvalidConfigurationError{Got: "null"}
	default:
		return nil, &InvalidConfigurationError{Got: fmt.Sprintf("%T", raw)}
	}
}

func parseJSONObject(data []byte) (RawConfig, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &InvalidConfigurationError{Got: "unparsable JSON", Err: err}
	}
	obj, ok := parsed.(map[string]any)
	if !ok || obj == nil {
		return nil, &InvalidConfigurationError{Got: jsonKind(parsed)}
	}
	return RawConfig(obj), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Decode turns a RawConfig into the typed Configuration. Missing keys decode
// to zero values; CheckSchema reports them.
func Decode(raw RawConfig) (*Configuration, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode raw configuration: %w", err)
	}
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &InvalidConfigurationError{Got: "mistyped fields", Err: err}
	}
	return &cfg, nil
}

// Encode turns a typed Configuration back into a RawConfig.
func Encode(cfg *Configuration) (RawConfig, error) {
	if cfg == nil {
		return nil, &InvalidConfigurationError{Got: "null"}
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	return parseJSONObject(data)
}

// Clone returns a deep copy of the configuration.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	raw, err := Encode(c)
	if err != nil {
		return nil
	}
	out, err := Decode(raw)
	if err != nil {
		return nil
	}
	return out
}
