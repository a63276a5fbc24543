// Package logging provides a minimal logging interface and adapters for memquery.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that the resolver and the stores use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - QueryLogger with contextual helpers and resolution-specific records
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	r := resolver.New(store, refs, resolver.WithLogger(logger))
//
// All methods take slog-style alternating key/value arguments.
package logging
