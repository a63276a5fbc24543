package query

import (
	"errors"
	"testing"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromActionDict(t *testing.T) {
	t.Run("reference object tag", func(t *testing.T) {
		expr, err := FromActionDict(map[string]any{
			"dialogue_type": "GET_MEMORY",
			"filters": map[string]any{
				"type":             "REFERENCE_OBJECT",
				"reference_object": map[string]any{"filters": map[string]any{"has_name": "hut"}},
			},
			"answer_type": "TAG",
			"tag_name":    "has_colour",
		})
		require.NoError(t, err)

		ref, ok := expr.Subject.(ReferenceObjectFilter)
		require.True(t, ok)
		assert.Equal(t, core.Descriptor{"filters": map[string]any{"has_name": "hut"}}, ref.Descriptor)
		assert.Equal(t, TagAnswer{TagName: "has_colour"}, expr.Answer)
	})

	t.Run("action with target type", func(t *testing.T) {
		expr, err := FromActionDict(map[string]any{
			"filters":     map[string]any{"type": "ACTION", "target_action_type": "build"},
			"answer_type": "EXISTS",
		})
		require.NoError(t, err)
		assert.Equal(t, ActionFilter{TargetActionType: "build"}, expr.Subject)
		assert.Equal(t, ExistsAnswer{}, expr.Answer)
	})

	t.Run("agent", func(t *testing.T) {
		expr, err := FromActionDict(map[string]any{
			"filters":     map[string]any{"type": "AGENT"},
			"answer_type": "TAG",
			"tag_name":    "location",
		})
		require.NoError(t, err)
		assert.Equal(t, AgentFilter{}, expr.Subject)
	})
}

func TestFromActionDict_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		dict      map[string]any
		wantField string
	}{
		{"nil", nil, ""},
		{"wrong dialogue type", map[string]any{"dialogue_type": "PUT_MEMORY", "filters": map[string]any{"type": "AGENT"}, "answer_type": "EXISTS"}, "dialogue_type"},
		{"missing filters", map[string]any{"answer_type": "EXISTS"}, "filters"},
		{"missing filter type", map[string]any{"filters": map[string]any{}, "answer_type": "EXISTS"}, "filters.type"},
		{"unknown filter type", map[string]any{"filters": map[string]any{"type": "SPEAKER"}, "answer_type": "EXISTS"}, "filters.type"},
		{"unknown answer type", map[string]any{"filters": map[string]any{"type": "AGENT"}, "answer_type": "COUNT"}, "answer_type"},
		{"tag without name", map[string]any{"filters": map[string]any{"type": "AGENT"}, "answer_type": "TAG"}, ""},
		{"reference object without descriptor", map[string]any{"filters": map[string]any{"type": "REFERENCE_OBJECT"}, "answer_type": "EXISTS"}, ""},
		{"filters not an object", map[string]any{"filters": "ACTION", "answer_type": "EXISTS"}, "filters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromActionDict(tt.dict)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)

			if tt.wantField != "" {
				var vErr *util.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	expr, err := ParseJSON([]byte(`{"dialogue_type":"GET_MEMORY","filters":{"type":"ACTION"},"answer_type":"TAG","tag_name":"action_name"}`))
	require.NoError(t, err)
	assert.Equal(t, Expression{Subject: ActionFilter{}, Answer: TagAnswer{TagName: "action_name"}}, expr)

	_, err = ParseJSON([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSchema_DescribesFilters(t *testing.T) {
	schema := Schema()
	props := schema["properties"].(map[string]any)

	filters := props["filters"].(map[string]any)
	assert.Equal(t, "object", filters["type"])
	assert.Contains(t, filters["properties"], "reference_object")

	answer := props["answer_type"].(map[string]any)
	assert.Equal(t, []string{"TAG", "EXISTS"}, answer["enum"])
	assert.ElementsMatch(t, []string{"filters", "answer_type"}, schema["required"])
}
