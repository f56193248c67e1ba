package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/bindexpr/cli/data"
	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/log"
	"github.com/ardnew/bindexpr/pkg"
)

type (
	contextKey    struct{}
	searchPathKey struct{}
	backendKey    struct{}
	stdinKey      struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithSearchPath returns a new context.Context containing the directories
// searched for data and manifest files named by a relative path.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// WithBackend returns a new context.Context selecting the compile backend.
func WithBackend(ctx context.Context, b lang.Backend) context.Context {
	return context.WithValue(ctx, backendKey{}, b)
}

func backendFrom(ctx context.Context) lang.Backend {
	b, ok := ctx.Value(backendKey{}).(lang.Backend)
	if !ok {
		return lang.DefaultBackend
	}

	return b
}

// WithStdin returns a new context.Context whose "-" inputs read from r
// instead of os.Stdin.
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdinFrom(ctx context.Context) io.Reader {
	r, ok := ctx.Value(stdinKey{}).(io.Reader)
	if !ok || r == nil {
		return os.Stdin
	}

	return r
}

// stdout returns the writer commands print results to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// compileOptions returns the [lang.Compile] options selected on the command
// line.
func compileOptions(ctx context.Context) []lang.Option {
	return []lang.Option{
		lang.WithBackend(backendFrom(ctx)),
		lang.WithLogger(log.Default()),
	}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readText returns arg, or everything read from stdin when arg is "-".
func readText(ctx context.Context, arg string) (string, error) {
	if arg != stdinSource {
		return arg, nil
	}

	ra := readahead.NewReader(stdinFrom(ctx))
	defer ra.Close()

	text, err := io.ReadAll(ra)
	if err != nil {
		return "", lang.ErrReadInput.Wrap(err).
			With(slog.String("source", "stdin"))
	}

	return strings.TrimSpace(string(text)), nil
}

// compileArg compiles the expression given as a command argument.
func compileArg(ctx context.Context, arg string) (*lang.Expression, error) {
	text, err := readText(ctx, arg)
	if err != nil {
		return nil, err
	}

	return lang.Compile(ctx, text, compileOptions(ctx)...)
}

// locate returns the path of the file name. Names that exist relative to
// the working directory, absolute names and "-" are returned unchanged.
// Otherwise the search path directories are tried in order, and name is
// returned unchanged if none holds it.
func locate(ctx context.Context, name string) string {
	if name == stdinSource || filepath.IsAbs(name) || isFile(name) {
		return name
	}

	for _, dir := range searchPathFrom(ctx) {
		path := filepath.Join(dir, name)
		if isFile(path) {
			log.TraceContext(ctx, "located file",
				slog.String("name", name),
				slog.String("path", path),
			)

			return path
		}
	}

	return name
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// source is one opened input.
type source struct {
	io.Reader

	close func() error
	name  string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the named inputs in order, each at most once. All
// occurrences of "-" collapse into a single stdin source placed last.
func openSources(ctx context.Context, names []string) ([]source, error) {
	var (
		srcs     []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path := locate(ctx, name)

		file, err := openUniqueFile(path, seen)
		if err != nil {
			closeSources(srcs)

			return nil, pkg.ErrReadInput.Wrap(err)
		}

		if file == nil {
			log.TraceContext(ctx, "skipped duplicate input", slog.String("path", path))

			continue
		}

		srcs = append(srcs, source{Reader: file, close: file.Close, name: path})
	}

	if hasStdin {
		srcs = append(srcs, source{
			Reader: stdinFrom(ctx),
			close:  func() error { return nil },
			name:   stdinSource,
		})
	}

	return srcs, nil
}

func closeSources(srcs []source) {
	for _, src := range srcs {
		_ = src.close()
	}
}

// openUniqueFile opens the file at path unless a file with the same device
// and inode is already in seen. A duplicate yields a nil file and no error.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return os.Open(resolved)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// loadData decodes the named YAML files and merges them into one object.
// Properties of later files replace those of earlier ones.
func loadData(ctx context.Context, names []string) (map[string]any, error) {
	srcs, err := openSources(ctx, names)
	if err != nil {
		return nil, err
	}

	defer closeSources(srcs)

	merged := make(map[string]any)

	for _, src := range srcs {
		m, err := data.Decode(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.name, err)
		}

		log.TraceContext(ctx, "data loaded",
			slog.String("source", src.name),
			slog.Int("keys", len(m)),
		)

		maps.Copy(merged, m)
	}

	return merged, nil
}

// assign applies KEY=VALUE assignments to m.
func assign(m map[string]any, assignments []string) error {
	for _, text := range assignments {
		key, value, err := data.ParseAssignment(text)
		if err != nil {
			return err
		}

		data.Set(m, key, value)
	}

	return nil
}

// outputFormats are the formats accepted by [render].
var outputFormats = []string{"native", "json", "yaml"}

// render writes v to w in the named format.
func render(ctx context.Context, w io.Writer, v any, format string, indent int) error {
	var out []byte

	switch format {
	case "", "native":
		out = []byte(lang.FormatValue(v) + "\n")

	case "json":
		var err error
		if indent > 0 {
			out, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
		} else {
			out, err = json.Marshal(v)
		}

		if err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

		out = append(out, '\n')

	case "yaml":
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		var err error

		out, err = yaml.MarshalContext(ctx, v, opts...)
		if err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q (valid: %s)",
			format, strings.Join(outputFormats, ", "))
	}

	if _, err := w.Write(out); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}
