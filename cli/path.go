package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/bindexpr/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// PathEnv names the environment variable holding additional directories,
// separated by [os.PathListSeparator], searched for data and manifest files.
var PathEnv = pkg.EnvName("PATH")

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	err := os.MkdirAll(pkg.ConfigDir(), defaultDirMode)
	if err != nil {
		return err
	}

	return os.MkdirAll(pkg.CacheDir(), defaultDirMode)
}

// searchPath returns the directories searched for input files: those given
// on the command line followed by those in [PathEnv]. Entries that are not
// existing directories are dropped, as are repeats.
func searchPath(dirs []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(filepath.SplitList(os.Getenv(PathEnv))...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	var (
		path []string
		seen = make(map[string]struct{})
	)

	for _, dir := range filepath.SplitList(list) {
		if _, ok := seen[dir]; ok || dir == "" || !isDir(dir) {
			continue
		}

		seen[dir] = struct{}{}
		path = append(path, dir)
	}

	return path
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// commandDir returns the subdirectory of dir for a kong command path such as
// "fmt ast <expr>", which becomes dir/fmt-ast. Positional placeholders are
// dropped.
func commandDir(dir, command string) string {
	var words []string

	for word := range strings.FieldsSeq(command) {
		if !strings.HasPrefix(word, "<") {
			words = append(words, word)
		}
	}

	if len(words) == 0 {
		return dir
	}

	return filepath.Join(dir, strings.Join(words, "-"))
}
