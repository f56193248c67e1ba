// Package cmd implements the bindexpr subcommands: eval, fmt, digest, repl
// and init.
//
// Commands receive their shared state through the [context.Context] passed
// to Run. [WithContext], [WithSearchPath] and [WithBackend] store it.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)

// ConfigSection is the top-level key of the configuration file holding
// flag values.
const ConfigSection = "config"
