package scope

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ardnew/bindexpr/lang"
	"github.com/ardnew/bindexpr/log"
)

type call struct {
	newValue, oldValue any
}

func TestDigest_ConstantFiresOnce(t *testing.T) {
	s := New()

	var calls []call

	s.Watch(
		func(*Scope) (any, error) { return 5, nil },
		func(n, o any, got *Scope) error {
			if got != s {
				t.Error("listener received a different scope")
			}

			calls = append(calls, call{n, o})

			return nil
		},
	)

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 listener call, got %d", len(calls))
	}

	if calls[0] != (call{5, 5}) {
		t.Errorf("expected first call (5, 5), got %v", calls[0])
	}

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	if len(calls) != 1 {
		t.Errorf("listener fired again without a change")
	}
}

func TestDigest_FirstFireWithNil(t *testing.T) {
	s := New()
	fired := 0

	s.Watch(
		func(*Scope) (any, error) { return nil, nil },
		func(n, o any, _ *Scope) error {
			fired++

			if n != nil || o != nil {
				t.Errorf("expected (nil, nil), got (%v, %v)", n, o)
			}

			return nil
		},
	)

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	if fired != 1 {
		t.Errorf("expected listener to fire once for nil, fired %d", fired)
	}
}

func TestDigest_OldValue(t *testing.T) {
	s := New()
	s.Set("n", 1)

	var calls []call

	s.Watch(
		func(s *Scope) (any, error) {
			v, _ := s.Get("n")

			return v, nil
		},
		func(n, o any, _ *Scope) error {
			calls = append(calls, call{n, o})

			return nil
		},
	)

	ctx := context.Background()

	if err := s.Digest(ctx); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	s.Set("n", 2)

	if err := s.Digest(ctx); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	want := []call{{1, 1}, {2, 1}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("expected %v, got %v", want, calls)
	}
}

func TestDigest_Propagation(t *testing.T) {
	s := New(WithData(map[string]any{"a": 1.0}))

	// registered in reverse dependency order to force a second pass
	s.Watch(
		func(s *Scope) (any, error) { v, _ := s.Get("b"); return v, nil },
		func(n, _ any, s *Scope) error { s.Set("c", n); return nil },
	)
	s.Watch(
		func(s *Scope) (any, error) { v, _ := s.Get("a"); return v, nil },
		func(n, _ any, s *Scope) error { s.Set("b", n); return nil },
	)

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	if c, _ := s.Get("c"); c != 1.0 {
		t.Errorf("expected c == 1, got %v", c)
	}
}

func TestDigest_NonConvergence(t *testing.T) {
	tests := []struct {
		name  string
		ttl   int
		watch WatchFunc
	}{
		{
			name:  "fresh map",
			ttl:   10,
			watch: func(*Scope) (any, error) { return map[string]any{}, nil },
		},
		{
			name:  "fresh slice",
			ttl:   3,
			watch: func(*Scope) (any, error) { return []any{1}, nil },
		},
		{
			name:  "fresh empty slice",
			ttl:   3,
			watch: func(*Scope) (any, error) { return make([]any, 0, 1), nil },
		},
		{
			name:  "NaN",
			ttl:   2,
			watch: func(*Scope) (any, error) { return math.NaN(), nil },
		},
		{
			name:  "uncomparable struct",
			ttl:   2,
			watch: func(*Scope) (any, error) { return struct{ m map[int]int }{}, nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithTTL(tt.ttl))
			s.Watch(func(*Scope) (any, error) { return "stable", nil }, nil)

			fired := 0

			s.Watch(tt.watch, func(any, any, *Scope) error {
				fired++

				return nil
			})

			err := s.Digest(context.Background())
			if !errors.Is(err, ErrNonConvergence) {
				t.Fatalf("expected ErrNonConvergence, got %v", err)
			}

			var nc *NonConvergenceError
			if !errors.As(err, &nc) {
				t.Fatalf("expected *NonConvergenceError, got %T", err)
			}

			if nc.TTL != tt.ttl || !reflect.DeepEqual(nc.Watchers, []string{"watch[1]"}) {
				t.Errorf("unexpected error fields %+v", nc)
			}

			if fired != tt.ttl {
				t.Errorf("expected %d passes, got %d", tt.ttl, fired)
			}

			if !strings.Contains(err.Error(), "watch[1]") {
				t.Errorf("error does not name the watcher: %v", err)
			}
		})
	}
}

func TestDigest_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("watch", func(t *testing.T) {
		s := New()
		later := false

		s.Watch(func(*Scope) (any, error) { return nil, boom }, nil)
		s.Watch(func(*Scope) (any, error) { later = true; return 1, nil }, nil)

		err := s.Digest(context.Background())
		if !errors.Is(err, ErrWatch) || !errors.Is(err, boom) {
			t.Fatalf("expected ErrWatch wrapping boom, got %v", err)
		}

		if !strings.Contains(err.Error(), "watch[0]") {
			t.Errorf("error does not name the watcher: %v", err)
		}

		if later {
			t.Error("digest continued after a watch error")
		}
	})

	t.Run("listener", func(t *testing.T) {
		s := New()

		s.Watch(
			func(*Scope) (any, error) { return 1, nil },
			func(any, any, *Scope) error { return boom },
		)

		err := s.Digest(context.Background())
		if !errors.Is(err, ErrListener) || !errors.Is(err, boom) {
			t.Fatalf("expected ErrListener wrapping boom, got %v", err)
		}

		if errors.Is(err, ErrWatch) {
			t.Error("listener error matches ErrWatch")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		s := New()
		s.Watch(func(*Scope) (any, error) { return 1, nil }, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := s.Digest(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestWatch_NilWatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()

	New().Watch(nil, nil)
}

func TestWatch_AddedDuringDigest(t *testing.T) {
	s := New()
	var order []string

	s.Watch(
		func(*Scope) (any, error) { order = append(order, "first"); return 1, nil },
		func(_, _ any, s *Scope) error {
			s.Watch(func(*Scope) (any, error) { order = append(order, "added"); return 2, nil }, nil)

			return nil
		},
	)

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	// pass 1 sees only the first watcher; the added one fires in pass 2
	want := []string{"first", "first", "added", "first", "added"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}

	if s.Len() != 2 {
		t.Errorf("expected 2 watchers, got %d", s.Len())
	}
}

func TestWatchExpr(t *testing.T) {
	s := New(WithData(map[string]any{
		"user": map[string]any{"name": "Ada"},
	}))

	var got []any

	err := s.WatchExpr("user.name", func(n, _ any, _ *Scope) error {
		got = append(got, n)

		return nil
	})
	if err != nil {
		t.Fatalf("watch error: %v", err)
	}

	if err := s.WatchExpr("user.", nil); !errors.Is(err, lang.ErrParse) {
		t.Errorf("expected lang.ErrParse, got %v", err)
	}

	ctx := context.Background()

	if err := s.Digest(ctx); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	s.Set("user", map[string]any{"name": "Grace"})

	if err := s.Digest(ctx); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	if !reflect.DeepEqual(got, []any{"Ada", "Grace"}) {
		t.Errorf("unexpected listener values %v", got)
	}

	if !reflect.DeepEqual(s.Names(), []string{"user.name"}) {
		t.Errorf("unexpected names %v", s.Names())
	}
}

func TestWatchExpr_FreshObjectNeverSettles(t *testing.T) {
	for _, backend := range []lang.Backend{lang.BackendClosure, lang.BackendSource} {
		for _, text := range []string{"{n: n}", "{}", "[]", "[[]]", "[1]"} {
			t.Run(backend.String()+"/"+text, func(t *testing.T) {
				s := New(WithTTL(4), WithCompileOptions(lang.WithBackend(backend)))

				if err := s.WatchExpr(text, nil); err != nil {
					t.Fatalf("watch error: %v", err)
				}

				var nc *NonConvergenceError
				if err := s.Digest(context.Background()); !errors.As(err, &nc) {
					t.Fatalf("expected *NonConvergenceError, got %v", err)
				}

				if len(nc.Watchers) != 1 || nc.Watchers[0] != text {
					t.Errorf("unexpected watchers %q", nc.Watchers)
				}
			})
		}
	}
}

func TestEval(t *testing.T) {
	s := New(WithData(map[string]any{"x": 1.0, "y": "ctx"}))

	got, err := s.Eval("{x: x, y: y}", map[string]any{"x": 2.0})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	want := map[string]any{"x": 2.0, "y": "ctx"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := s.Eval("1e", nil); !errors.Is(err, lang.ErrLex) {
		t.Errorf("expected lang.ErrLex, got %v", err)
	}
}

func TestScope_Properties(t *testing.T) {
	s := New(WithData(map[string]any{"b": 2, "a": 1}))

	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get reported a missing property")
	}

	s.Set("c", 3)

	if !reflect.DeepEqual(s.Keys(), []string{"a", "b", "c"}) {
		t.Errorf("unexpected keys %v", s.Keys())
	}

	if s.Data()["c"] != 3 {
		t.Error("Data does not reflect Set")
	}
}

func TestWithTTL(t *testing.T) {
	tests := []struct {
		ttl  int
		want int
	}{
		{ttl: 1, want: 1},
		{ttl: 25, want: 25},
		{ttl: 0, want: DefaultTTL},
		{ttl: -3, want: DefaultTTL},
	}

	for _, tt := range tests {
		if got := New(WithTTL(tt.ttl)).TTL(); got != tt.want {
			t.Errorf("WithTTL(%d): got %d, want %d", tt.ttl, got, tt.want)
		}
	}

	if New().TTL() != DefaultTTL {
		t.Errorf("unexpected default TTL %d", New().TTL())
	}
}

func TestDigest_TraceLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithTimeLayout("none"))
	s := New(WithLogger(logger))
	s.Watch(func(*Scope) (any, error) { return 1, nil }, nil)

	if err := s.Digest(context.Background()); err != nil {
		t.Fatalf("digest error: %v", err)
	}

	if got := strings.Count(buf.String(), "digest pass"); got != 2 {
		t.Errorf("expected 2 pass records, got %d:\n%s", got, buf.String())
	}

	if got := strings.Count(buf.String(), `"ttl":10`); got != 2 {
		t.Errorf("expected the ttl on every pass record, got %d:\n%s", got, buf.String())
	}
}

func TestIdentical(t *testing.T) {
	m := map[string]any{}
	sl := []int{1, 2, 3}
	p := new(int)
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "nil", a: nil, b: nil, want: true},
		{name: "nil and value", a: nil, b: 0, want: false},
		{name: "equal numbers", a: 1.0, b: 1.0, want: true},
		{name: "different types", a: 1, b: 1.0, want: false},
		{name: "strings", a: "a", b: "a", want: true},
		{name: "NaN", a: math.NaN(), b: math.NaN(), want: false},
		{name: "same map", a: m, b: m, want: true},
		{name: "equal maps", a: map[string]any{}, b: map[string]any{}, want: false},
		{name: "same slice", a: sl, b: sl, want: true},
		{name: "resliced", a: sl, b: sl[:2], want: false},
		{name: "same pointer", a: p, b: p, want: true},
		{name: "same func", a: fn, b: fn, want: true},
		{name: "comparable struct", a: struct{ A int }{1}, b: struct{ A int }{1}, want: true},
		{name: "array", a: [2]int{1, 2}, b: [2]int{1, 2}, want: true},
		{
			name: "uncomparable struct",
			a:    struct{ S []int }{sl},
			b:    struct{ S []int }{sl},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := identical(tt.a, tt.b); got != tt.want {
				t.Errorf("identical = %v, want %v", got, tt.want)
			}
		})
	}
}
