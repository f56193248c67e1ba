package repl

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/bindexpr/cli/data"
	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/log"
	"github.com/ardnew/bindexpr/scope"
)

func testLogger() log.Logger { return log.Make(io.Discard) }

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(t.Context(), testScope(), NewHistory(""), testLogger())
}

func TestRun_NilScope(t *testing.T) {
	if err := Run(t.Context(), nil, "", testLogger()); !errors.Is(err, ErrNoScope) {
		t.Errorf("Run(nil) error = %v, want %v", err, ErrNoScope)
	}
}

func TestModel_Eval(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"user.first", `"Ada"`, nil},
		{"this.user.address.zip", `"N1"`, nil},
		{"[user.first, 1]", `["Ada", 1]`, nil},
		{"missing", "null", nil},
		{"[1,", "", lang.ErrParse},
	}

	m := testModel(t)

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := m.eval(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("eval(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("eval(%q) error = %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("eval(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestModel_Set(t *testing.T) {
	m := testModel(t)

	out, err := m.runCommand("set", "user.first=Grace")
	if err != nil {
		t.Fatalf("set error = %v", err)
	}

	if want := `user.first = "Grace"`; out != want {
		t.Errorf("set output = %q, want %q", out, want)
	}

	if got, _ := m.eval("user.first"); got != `"Grace"` {
		t.Errorf("user.first = %s after set, want \"Grace\"", got)
	}

	if _, err := m.runCommand("set", "novalue"); !errors.Is(err, data.ErrAssignment) {
		t.Errorf("set without '=' error = %v, want %v", err, data.ErrAssignment)
	}
}

func TestModel_WatchDigest(t *testing.T) {
	m := testModel(t)

	if _, err := m.runCommand("watch", ""); !errors.Is(err, ErrUsage) {
		t.Errorf("watch without expression error = %v, want %v", err, ErrUsage)
	}

	if _, err := m.runCommand("watch", "[1,"); err == nil {
		t.Error("watch with invalid expression: expected error")
	}

	out, err := m.runCommand("watch", "user.first")
	if err != nil {
		t.Fatalf("watch error = %v", err)
	}

	if out != "watching user.first" {
		t.Errorf("watch output = %q", out)
	}

	out, err = m.runCommand("digest", "")
	if err != nil {
		t.Fatalf("digest error = %v", err)
	}

	if !strings.Contains(out, `user.first: "Ada" -> "Ada"`) {
		t.Errorf("first digest output = %q, want initial firing", out)
	}

	if !strings.Contains(out, "digest settled: 1 watchers") {
		t.Errorf("first digest output = %q, want settled summary", out)
	}

	if _, err := m.runCommand("set", "user.first=Grace"); err != nil {
		t.Fatal(err)
	}

	out, _ = m.runCommand("digest", "")
	if !strings.Contains(out, `user.first: "Ada" -> "Grace"`) {
		t.Errorf("digest after set output = %q, want change", out)
	}

	out, _ = m.runCommand("digest", "")
	if strings.Contains(out, "->") {
		t.Errorf("digest with no change output = %q, want no firing", out)
	}
}

func TestModel_DigestNonConvergence(t *testing.T) {
	s := scope.New(scope.WithTTL(3))

	n := 0.0
	s.Watch(func(*scope.Scope) (any, error) {
		n++

		return n, nil
	}, nil)

	m := newModel(t.Context(), s, NewHistory(""), testLogger())

	out, err := m.runCommand("digest", "")
	if !errors.Is(err, scope.ErrNonConvergence) {
		t.Fatalf("digest error = %v, want %v", err, scope.ErrNonConvergence)
	}

	if strings.Contains(out, "settled") {
		t.Errorf("digest output = %q, should not report settled", out)
	}
}

func TestModel_List(t *testing.T) {
	m := testModel(t)

	out, _ := m.runCommand("list", "")
	for _, key := range []string{"nested", "user", "users"} {
		if !strings.Contains(out, key) {
			t.Errorf("list output %q missing %q", out, key)
		}
	}

	if strings.Contains(out, "watching:") {
		t.Errorf("list output %q lists watchers before any were added", out)
	}

	_, _ = m.runCommand("watch", "users")

	if out, _ := m.runCommand("list", ""); !strings.Contains(out, "watching:\n  users") {
		t.Errorf("list output %q missing watcher", out)
	}
}

func TestModel_UnknownCommand(t *testing.T) {
	m := testModel(t)

	if _, err := m.runCommand("bogus", ""); err == nil ||
		!strings.Contains(err.Error(), "unknown command: bogus") {
		t.Errorf("runCommand(bogus) error = %v", err)
	}

	if out, err := m.runCommand("help", ""); err != nil || !strings.Contains(out, "digest") {
		t.Errorf("runCommand(help) = (%q, %v)", out, err)
	}
}

func TestModel_SwitchMode(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("user")

	m = m.switchToMode(modeCtrl)
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after switch to ctrl: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m.input.SetValue("dig")

	m = m.switchToMode(modeEval)
	if m.input.Value() != "user" {
		t.Errorf("eval input restored = %q, want user", m.input.Value())
	}

	m = m.switchToMode(modeCtrl)
	if m.input.Value() != "dig" {
		t.Errorf("ctrl input restored = %q, want dig", m.input.Value())
	}
}

func TestModel_HistoryMove(t *testing.T) {
	h := NewHistory("")
	_ = h.Add("user", modeEval)
	_ = h.Add("list", modeCtrl)
	_ = h.Add("nested", modeEval)

	m := newModel(t.Context(), testScope(), h, testLogger())

	m = m.historyMove(-1, false)
	if m.input.Value() != "nested" || m.mode != modeEval {
		t.Fatalf("up: input = %q, mode = %v", m.input.Value(), m.mode)
	}

	m = m.historyMove(-1, false)
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Fatalf("up: input = %q, mode = %v", m.input.Value(), m.mode)
	}

	m = m.switchToMode(modeEval)
	m.historyIdx = h.Len()

	m = m.historyMove(-1, true)
	m = m.historyMove(-1, true)
	if m.input.Value() != "user" || m.mode != modeEval {
		t.Fatalf("in-mode up: input = %q, mode = %v", m.input.Value(), m.mode)
	}

	m = m.historyMove(1, true)
	m = m.historyMove(1, true)
	if m.input.Value() != "" || m.historyIdx != h.Len() {
		t.Errorf("down past newest: input = %q, idx = %d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_Cycle(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("use")
	m.input.SetCursor(3)
	refreshMatches(&m, false)

	m = m.cycle(1)
	if !m.tabActive || m.input.Value() != "user" {
		t.Fatalf("first tab: active = %v, input = %q", m.tabActive, m.input.Value())
	}

	m = m.cycle(1)
	if m.input.Value() != "users" {
		t.Fatalf("second tab: input = %q, want users", m.input.Value())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if m.tabActive || m.input.Value() != "use" {
		t.Errorf("esc while cycling: active = %v, input = %q", m.tabActive, m.input.Value())
	}
}

func TestModel_EditDone(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(editDoneMsg{props: map[string]any{"fresh": 1.0}})
	m = next.(model)

	if got := m.sess.scope.Keys(); len(got) != 1 || got[0] != "fresh" {
		t.Errorf("Keys() after edit = %v, want [fresh]", got)
	}
}
