package theme

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Partial is a theme-shaped JSON object where absent keys mean "keep the base
// value". Top-level keys follow the Theme JSON tags; "configuration" nests.
type Partial map[string]any

// ErrNilBase is returned by Merge when there is nothing to merge onto.
var ErrNilBase = errors.New("merge: base theme is nil")

// Merge overlays override onto base and returns a new Theme. Objects are
// merged key by key at every depth; scalars and arrays in override replace
// the base value; nil override values are ignored. Neither input is modified.
func Merge(base *Theme, override Partial) (*Theme, error) {
	if base == nil {
		return nil, ErrNilBase
	}

	merged, err := toObject(base)
	if err != nil {
		return nil, fmt.Errorf("merge: encode base: %w", err)
	}
	if len(override) > 0 {
		ov, err := toObject(override)
		if err != nil {
			return nil, fmt.Errorf("merge: encode override: %w", err)
		}
		mergeObjects(merged, ov)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("merge: encode result: %w", err)
	}
	var out Theme
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &InvalidConfigurationError{Got: "mistyped fields after merge", Err: err}
	}
	return &out, nil
}

func mergeObjects(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			continue
		}
		srcObj, srcIsObj := v.(map[string]any)
		dstObj, dstIsObj := dst[k].(map[string]any)
		if srcIsObj && dstIsObj {
			mergeObjects(dstObj, srcObj)
			continue
		}
		dst[k] = v
	}
}

// toObject deep-copies any JSON-encodable value into a generic object.
func toObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = make(map[string]any)
	}
	return obj, nil
}

// PartialOf returns the full theme as an override.
func PartialOf(t *Theme) (Partial, error) {
	obj, err := toObject(t)
	if err != nil {
		return nil, fmt.Errorf("partial of theme %q: %w", t.ID, err)
	}
	return Partial(obj), nil
}

// ConfigurationPartial wraps a raw configuration as an override that only
// touches configuration leaves.
func ConfigurationPartial(raw RawConfig) Partial {
	if raw == nil {
		return Partial{}
	}
	return Partial{"configuration": map[string]any(raw)}
}

// PartialAt builds an override that sets a single configuration leaf, e.g.
// path ["colors","cyber","pink","hover"].
func PartialAt(path []string, value any) Partial {
	if len(path) == 0 {
		return Partial{}
	}
	var node any = value
	for i := len(path) - 1; i >= 0; i-- {
		node = map[string]any{path[i]: node}
	}
	return Partial{"configuration": node}
}

// PartialFromJSON parses a JSON object into a Partial.
func PartialFromJSON(data []byte) (Partial, error) {
	raw, err := parseJSONObject(data)
	if err != nil {
		return nil, err
	}
	return Partial(raw), nil
}
