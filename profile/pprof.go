//go:build pprof

package profile

import (
	"slices"
	"sync"

	"github.com/pkg/profile"
)

// modes maps each mode name to the pkg/profile option selecting it.
//
//nolint:gochecknoglobals
var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the supported profiling modes, sorted.
//
//nolint:gochecknoglobals
var Modes = sync.OnceValue(
	func() []string {
		names := make([]string, 0, len(modes))
		for name := range modes {
			names = append(names, name)
		}

		slices.Sort(names)

		return names
	},
)

// start runs pkg/profile in the given mode. An unknown mode is a no-op.
func start(mode, path string, quiet bool) interface{ Stop() } {
	sel, ok := modes[mode]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){sel}

	if path != "" {
		opts = append(opts, profile.ProfilePath(path))
	}

	if quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...)
}
