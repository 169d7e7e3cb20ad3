package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that reads flag values from a YAML
// mapping:
//
//	log-level: debug
//	log:
//	  format: json
//	include-dir:
//	  - ./templates
//
// Nested mappings join their keys with '-', so the two log settings above
// set --log-level and --log-format. Keys may use '_' in place of '-'.
// Scalars are passed to kong as strings, sequences as lists of strings.
// An empty file yields an empty configuration.
func resolve(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg := config{}
	cfg.flatten("", raw)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened YAML mapping.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. It returns nil for flags the
// configuration does not set, leaving kong to apply their defaults.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}

// flatten adds the entries of m to c, prefixing nested keys with their
// parents.
func (c config) flatten(prefix string, m map[string]any) {
	for key, val := range m {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := val.(type) {
		case map[string]any:
			c.flatten(key, v)
		case []any:
			list := make([]any, len(v))
			for i, item := range v {
				list[i] = scalar(item)
			}

			c[key] = list
		case nil:
		default:
			c[key] = scalar(v)
		}
	}
}

// scalar formats a decoded YAML scalar for kong, which parses flag values
// from strings. Booleans are kept as-is.
func scalar(v any) any {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
