package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSearchPath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	fromEnv := t.TempDir()
	missing := filepath.Join(first, "missing")

	t.Setenv(PathEnv, strings.Join([]string{fromEnv, missing, first}, string(os.PathListSeparator)))

	got := searchPath([]string{first, missing, second, first})
	want := []string{first, second, fromEnv}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("searchPath() = %v, want %v", got, want)
	}
}

func TestSearchPath_Empty(t *testing.T) {
	t.Setenv(PathEnv, "")

	if got := searchPath(nil); len(got) != 0 {
		t.Errorf("searchPath(nil) = %v, want empty", got)
	}
}

func TestPathEnv(t *testing.T) {
	if PathEnv != "BINDEXPR_PATH" {
		t.Errorf("PathEnv = %q, want BINDEXPR_PATH", PathEnv)
	}
}

func TestCommandDir(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"eval <expr>", filepath.Join("out", "eval")},
		{"fmt ast <expr>", filepath.Join("out", "fmt-ast")},
		{"repl", filepath.Join("out", "repl")},
		{"", "out"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			if got := commandDir("out", tt.command); got != tt.want {
				t.Errorf("commandDir(%q) = %q, want %q", tt.command, got, tt.want)
			}
		})
	}
}
