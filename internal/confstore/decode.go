package confstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format names an input encoding accepted by Decode.
type Format string

const (
	FormatTOML  Format = "toml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// FormatFromPath guesses the input format from a file extension. Unknown
// extensions, including the .cfg files the store writes, are treated as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonc":
		return FormatJSONC
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatTOML, FormatJSON, FormatJSONC, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document format %q", value)
	}
}

// Decode parses data into a Document. Numbers are coerced to int64 or float64
// whatever the source encoding, so they are written back as TOML integers and
// floats. The top-level value must be a mapping.
func Decode(format Format, data []byte) (Document, error) {
	var raw any
	switch format {
	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		raw = doc
	case FormatJSON, FormatJSONC:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}

	if raw == nil {
		return Document{}, nil
	}
	coerced, err := coerce(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	doc, ok := coerced.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode %s: top-level value must be a mapping, got %T", format, raw)
	}
	return Document(doc), nil
}

// coerce converts decoder-specific values into the types TOML encodes.
// Integers must fit a signed 64-bit TOML integer.
func coerce(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, element := range v {
			c, err := coerce(element)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = c
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, element := range v {
			name := fmt.Sprint(key)
			c, err := coerce(element)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, element := range v {
			c, err := coerce(element)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
		return v.String(), nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return unsignedToInt64(uint64(v))
	case uint32:
		return int64(v), nil
	case uint64:
		return unsignedToInt64(v)
	case float32:
		return float64(v), nil
	default:
		return v, nil
	}
}

func unsignedToInt64(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows a 64-bit TOML integer", v)
	}
	return int64(v), nil
}
