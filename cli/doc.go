// Package cli contains the command line interface for bindexpr.
//
// # Usage
//
// The default command evaluates an expression against YAML data:
//
//	bindexpr -c user.yaml 'user.address.city'
//	bindexpr eval -o json -c user.yaml -l locals.yaml '{name: user.first, n: $locals.n}'
//
// Other commands print the syntax tree of an expression (fmt), run a digest
// over a manifest of watch expressions (digest), evaluate interactively
// (repl) and write the current flag values to the configuration file
// (init).
//
// # Search Path
//
// Data and manifest files named by a relative path are looked up in the
// working directory, then in each --path directory, then in each directory
// listed in the BINDEXPR_PATH environment variable.
//
// # Configuration
//
// Flag values are read from the config mapping of config.yaml in the user
// configuration directory, and from config.yaml.json. BINDEXPR_CONFIG_DIR
// and BINDEXPR_CACHE_DIR replace the configuration and cache directories:
//
//	config:
//	  log-level: debug
//	  backend: source
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o bindexpr .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/bindexpr/pprof)
package cli
