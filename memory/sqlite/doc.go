// Package sqlite provides a persistent working memory on top of the pure-Go
// modernc.org/sqlite driver. Store implements core.MemoryView, memory.Writer
// and memory.Index, so it can back both the query resolver and the
// memory.ReferenceResolver.
//
// Use ":memory:" as path for an ephemeral database (tests, one-shot CLI runs).
package sqlite
