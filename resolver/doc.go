// Package resolver answers GET_MEMORY query expressions against an agent's
// working memory.
//
// Resolution is a single pass:
//
//  1. The subject filter is dispatched. ACTION resolves the current (or a
//     named) task, AGENT answers directly with the agent's position, and
//     REFERENCE_OBJECT delegates to a core.ReferenceResolver.
//  2. The answer type is rendered over the candidate list. EXISTS checks for
//     emptiness, TAG inspects the first candidate (attribute lookup with
//     has_tag backoff, task verbs, build and move targets, locations).
//
// Faults are *Fault values classified by sentinel (ErrNoReferent,
// ErrUnsupportedTag, ...). Resolver.Resolve turns user-facing faults into
// polite responses and only returns errors for contract violations and
// collaborator failures. Render exposes the renderer without that
// conversion.
//
// A Resolver holds no mutable state and is safe for concurrent use.
package resolver
