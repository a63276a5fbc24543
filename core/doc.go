// Package core provides the foundational domain types and collaborator
// contracts used by memquery. It defines:
//
//   - Entities (opaque handles into the agent's memory graph, in a closed set
//     of kinds: plain nodes, tasks and positioned reference objects)
//   - Tasks (the payload carried by a task node: build, move or generic)
//   - Triples (subject, predicate, value facts attached to entities)
//   - MemoryView / ReferenceResolver (the read-only surfaces a query resolver
//     consumes)
//   - Response (the text / payload pair returned to callers)
//
// The package keeps storage and resolution logic out of scope, exposing small
// interfaces so that stores and resolvers can be swapped and faked in tests.
package core
