package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
	D string `json:"d,omitempty" enum:"X,Y"`
	e string
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleSchema{e: "unexported"})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	assert.NotContains(t, props, "e")

	// Required only includes non-pointer, non-omitempty exported fields
	assert.ElementsMatch(t, []string{"a"}, schema["required"])

	d, _ := props["d"].(map[string]any)
	assert.Equal(t, []string{"X", "Y"}, d["enum"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")
}

func TestValidateParameters_NestedAndEnum(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{"type": "string", "enum": []string{"TAG", "EXISTS"}},
			"filters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{"type": "string"},
				},
				"required": []string{"type"},
			},
		},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"kind": "TAG", "filters": map[string]any{"type": "AGENT"}}, schema))

	var vErr *ValidationError

	err := ValidateParameters(map[string]any{"kind": "COUNT"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "kind", vErr.Field)

	err = ValidateParameters(map[string]any{"filters": map[string]any{}}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "filters.type", vErr.Field)

	err = ValidateParameters(map[string]any{"filters": map[string]any{"type": 3}}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "filters.type", vErr.Field)
}
