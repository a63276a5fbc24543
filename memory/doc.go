// Package memory contains concrete working-memory implementations. The
// MemoryView and ReferenceResolver contracts reside in the core package.
// Import github.com/hupe1980/memquery/core and depend on core.MemoryView in
// your code; select an implementation (the in-memory store below, or the
// SQLite store in memory/sqlite) at wiring time.
//
// The package also provides:
//
//   - ReferenceResolver: a filter-matching core.ReferenceResolver over any Index
//   - Snapshot: a YAML description of a working memory that can be applied to
//     any Writer (used for fixtures and the CLI)
package memory
