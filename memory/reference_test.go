package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memquery/core"
)

func referenceFixture(t *testing.T) *InMemoryStore {
	t.Helper()

	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.AddEntity(ctx, &core.ReferenceObjectNode{ID: "hut1"}))
	require.NoError(t, s.AddTriple(ctx, "hut1", "has_name", "hut"))
	require.NoError(t, s.AddTriple(ctx, "hut1", "has_colour", "red"))

	require.NoError(t, s.AddEntity(ctx, &core.Node{ID: "plain"}))
	require.NoError(t, s.AddTriple(ctx, "plain", "has_name", "hut"))

	require.NoError(t, s.AddEntity(ctx, &core.ReferenceObjectNode{ID: "hut2"}))
	require.NoError(t, s.AddTriple(ctx, "hut2", "has_name", "Hut"))
	require.NoError(t, s.AddTriple(ctx, "hut2", "has_colour", "blue"))

	return s
}

func ids(entities []core.Entity) []core.MemID {
	out := make([]core.MemID, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.MemID())
	}

	return out
}

func TestReferenceResolver(t *testing.T) {
	ctx := context.Background()
	rr := NewReferenceResolver(referenceFixture(t))

	t.Run("matches name newest first, reference objects only", func(t *testing.T) {
		got, err := rr.ResolveReferenceObject(ctx, core.Descriptor{"filters": map[string]any{"has_name": "hut"}})
		require.NoError(t, err)
		assert.Equal(t, []core.MemID{"hut2", "hut1"}, ids(got))
	})

	t.Run("every filter must match", func(t *testing.T) {
		got, err := rr.ResolveReferenceObject(ctx, core.Descriptor{"filters": map[string]any{"has_name": "hut", "has_colour": "red"}})
		require.NoError(t, err)
		assert.Equal(t, []core.MemID{"hut1"}, ids(got))
	})

	t.Run("list values are alternatives", func(t *testing.T) {
		got, err := rr.ResolveReferenceObject(ctx, core.Descriptor{"filters": map[string]any{"has_colour": []any{"green", "blue"}}})
		require.NoError(t, err)
		assert.Equal(t, []core.MemID{"hut2"}, ids(got))
	})

	t.Run("no match is empty", func(t *testing.T) {
		got, err := rr.ResolveReferenceObject(ctx, core.Descriptor{"filters": map[string]any{"has_name": "castle"}})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty descriptor lists all reference objects", func(t *testing.T) {
		got, err := rr.ResolveReferenceObject(ctx, core.Descriptor{})
		require.NoError(t, err)
		assert.Equal(t, []core.MemID{"hut2", "hut1"}, ids(got))
	})

	t.Run("unsupported descriptors", func(t *testing.T) {
		for _, d := range []core.Descriptor{
			{"special": "AGENT"},
			{"filters": map[string]any{"contains_coreference": "yes"}},
			{"filters": map[string]any{"has_name": 3}},
			{"filters": "hut"},
		} {
			_, err := rr.ResolveReferenceObject(ctx, d)
			assert.True(t, errors.Is(err, core.ErrNotFound), "descriptor %v: %v", d, err)
		}
	})

	t.Run("limit", func(t *testing.T) {
		limited := NewReferenceResolver(referenceFixture(t), func(o *ReferenceResolverOptions) { o.Limit = 1 })
		got, err := limited.ResolveReferenceObject(ctx, core.Descriptor{})
		require.NoError(t, err)
		assert.Equal(t, []core.MemID{"hut2"}, ids(got))
	})
}
