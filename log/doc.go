// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.InfoContext(ctx, "digest complete", slog.Int("passes", 2))
//	logger.ErrorContext(ctx, "compile failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The zero [Logger] discards everything, so library packages may hold one
// unconditionally and let callers opt in with their own logger.
//
// # Levels
//
// In addition to the four [log/slog] levels the package defines
// [LevelTrace], used by the expression compiler and digest engine for
// per-node and per-pass records.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText]. With [WithPretty], text output is
// colorized with lipgloss styles.
package log
