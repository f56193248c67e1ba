// Package data decodes the YAML documents that supply context, locals and
// scope properties to the command line tools.
//
// Decoded values are normalized to the shapes the expression language
// works with: objects are map[string]any, arrays are []any and every number
// is a float64.
package data

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/pkg"
)

// ErrAssignment is returned for a malformed KEY=VALUE assignment.
var ErrAssignment = lang.NewError("invalid assignment")

// Decode reads one YAML document from r. An empty document yields an empty
// map; a document that is not a mapping is an error.
func Decode(r io.Reader) (map[string]any, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	var doc any

	err := yaml.NewDecoder(ra).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}

	if err != nil {
		return nil, pkg.ErrDecodeData.Wrap(err)
	}

	if doc == nil {
		return map[string]any{}, nil
	}

	m, ok := Normalize(doc).(map[string]any)
	if !ok {
		return nil, pkg.ErrDecodeData.Wrapf("document is %T, not a mapping", doc)
	}

	return m, nil
}

// Normalize converts decoded YAML values recursively: mappings with
// non-string keys are rekeyed by their printed form and integers become
// float64.
func Normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = Normalize(e)
		}

		return v

	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = Normalize(e)
		}

		return m

	case []any:
		for i, e := range v {
			v[i] = Normalize(e)
		}

		return v

	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)

	default:
		return v
	}
}

// ParseValue decodes text as a YAML value, so "3" is a number and "[a, b]"
// an array. Text that is not valid YAML is returned as a string.
func ParseValue(text string) any {
	if strings.TrimSpace(text) == "" {
		return text
	}

	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return text
	}

	return Normalize(v)
}

// ParseAssignment splits text of the form KEY=VALUE. The key may be a
// dotted path; the value is decoded with [ParseValue].
func ParseAssignment(text string) (string, any, error) {
	key, value, ok := strings.Cut(text, "=")
	key = strings.TrimSpace(key)

	if !ok || key == "" || strings.HasPrefix(key, ".") ||
		strings.HasSuffix(key, ".") || strings.Contains(key, "..") {
		return "", nil, ErrAssignment.
			Wrap(fmt.Errorf("%q: expected KEY=VALUE", text)).
			With(slog.String("assignment", text))
	}

	return key, ParseValue(value), nil
}

// Set assigns value at the dotted path in m. Missing or non-object
// intermediate properties are replaced with new objects.
func Set(m map[string]any, path string, value any) {
	keys := strings.Split(path, ".")

	for _, key := range keys[:len(keys)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[key] = next
		}

		m = next
	}

	m[keys[len(keys)-1]] = value
}
