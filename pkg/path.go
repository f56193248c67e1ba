package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// debugBin matches the default output name of the dlv debugger.
var debugBin = regexp.MustCompile(`^__debug_bin\d*$`)

// Prefix is the directory name used under the user config and cache roots.
// It is the executable's base name without extension and leading dots, so a
// renamed binary keeps its own state. Debugger builds use [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			exe = os.Args[0]
		}

		return prefix(exe)
	},
)

// ConfigDir returns the directory holding the configuration file.
// The environment variable BINDEXPR_CONFIG_DIR replaces it entirely.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir("CONFIG_DIR", os.UserConfigDir, ".config") },
)

// CacheDir returns the directory holding REPL history and profiles.
// The environment variable BINDEXPR_CACHE_DIR replaces it entirely.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir("CACHE_DIR", os.UserCacheDir, ".cache") },
)

// EnvName returns the environment variable name for key, such as
// BINDEXPR_PATH for "PATH".
func EnvName(key string) string {
	return strings.ToUpper(Name) + "_" + key
}

func prefix(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if base == "" || base == string(filepath.Separator) || debugBin.MatchString(base) {
		return Name
	}

	return base
}

// userDir resolves a per-user directory: the override variable if set, else
// root()/Prefix, else $HOME/hidden/Prefix, else hidden/Prefix under the
// working directory.
func userDir(key string, root func() (string, error), hidden string) string {
	if dir := os.Getenv(EnvName(key)); dir != "" {
		return dir
	}

	if dir, err := root(); err == nil {
		return filepath.Join(dir, Prefix())
	}

	base, err := os.UserHomeDir()
	if err != nil {
		base = "."
	}

	return filepath.Join(base, hidden, Prefix())
}
