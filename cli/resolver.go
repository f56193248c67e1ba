package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/bindexpr/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML config files. Flag
// values are read from the mapping under the top-level key section:
//
//	config:
//	  log-level: debug
//	  log_format: text
//	  path: [/etc/bindexpr, ~/data]
//	  backend: source
//
// Keys may spell flag names with hyphens or underscores. Command-line flags
// override config file values. A file that cannot be decoded, or that has
// no section mapping, configures nothing.
func resolve(ctx context.Context, section string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnContext(ctx, "ignoring configuration file",
					slog.String("section", section),
					slog.Any("error", err),
				)
			}

			return config{}, nil
		}

		values, ok := doc[section].(map[string]any)
		if !ok {
			return config{}, nil
		}

		cfg := make(config, len(values))
		for key, value := range values {
			cfg[key] = flagString(value)
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagString converts decoded numbers to strings, which kong requires for
// parsing numeric flags. Sequences are converted element-wise.
func flagString(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagString(e)
		}

		return out
	default:
		return v
	}
}
