package core

import "context"

// Descriptor is the opaque reference-object filter produced by the parser,
// e.g. {"filters": {"has_name": "house", "has_colour": "red"}}.
type Descriptor map[string]any

// ReferenceResolver maps a reference-object descriptor to candidate
// entities. The returned order is authoritative (best match first). An empty
// result is valid; a resolver may also return an error wrapping ErrNotFound.
type ReferenceResolver interface {
	ResolveReferenceObject(ctx context.Context, descriptor Descriptor) ([]Entity, error)
}

// ReferenceResolverFunc adapts a plain function to ReferenceResolver.
type ReferenceResolverFunc func(ctx context.Context, descriptor Descriptor) ([]Entity, error)

// ResolveReferenceObject implements ReferenceResolver.
func (f ReferenceResolverFunc) ResolveReferenceObject(ctx context.Context, d Descriptor) ([]Entity, error) {
	return f(ctx, d)
}
