// Package scope implements dirty-checking change detection.
//
// A [Scope] holds named properties and a list of watchers. Each watcher
// pairs a [WatchFunc], which reads a value, with a [ListenerFunc], which is
// told when that value changes. [Scope.Digest] evaluates every watcher in
// registration order and repeats until a full pass sees no change:
//
//	s := scope.New(scope.WithData(map[string]any{"first": "Ada"}))
//
//	_ = s.WatchExpr("first", func(v, _ any, s *scope.Scope) error {
//		s.Set("greeting", "Hello, "+v.(string))
//		return nil
//	})
//
//	err := s.Digest(ctx)
//
// Changes are detected by strict equality. Maps, slices and pointers compare
// by identity, so a watch function that builds a new container on every
// call never settles. Digest gives up after [WithTTL] passes and returns a
// [*NonConvergenceError] naming the watchers that were still changing.
package scope
