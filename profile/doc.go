// Package profile provides optional runtime profiling for bindexpr.
//
// # Overview
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only when
// the "pprof" build tag is set. Without the tag every operation is a no-op and
// [Modes] is empty.
//
// # Modes
//
// With the tag, the supported modes are allocs, block, clock, cpu, goroutine,
// heap, mem, mutex, thread and trace. [Modes] returns them sorted.
//
// # Usage
//
//	var cfg profile.Config = func() (string, string, bool) { return "", "", false }
//
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath("/tmp/bindexpr")(cfg)
//	defer cfg.Start().Stop()
//
// The bindexpr command exposes the same settings as --pprof-mode and
// --pprof-dir. Profiles are written to the directory as <mode>.pprof and can
// be inspected with "go tool pprof". A useful target is the digest command on
// a large manifest, which stresses expression compilation and the dirty
// checking loop together.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
