package query

import (
	"testing"

	"github.com/hupe1980/memquery/core"
	"github.com/stretchr/testify/assert"
)

func TestExpression_Validate(t *testing.T) {
	tests := []struct {
		name    string
		expr    Expression
		wantErr bool
	}{
		{"action tag", Expression{Subject: ActionFilter{}, Answer: TagAnswer{TagName: "action_name"}}, false},
		{"agent exists", Expression{Subject: AgentFilter{}, Answer: ExistsAnswer{}}, false},
		{"reference object", Expression{Subject: ReferenceObjectFilter{Descriptor: core.Descriptor{}}, Answer: ExistsAnswer{}}, false},
		{"missing subject", Expression{Answer: ExistsAnswer{}}, true},
		{"missing answer", Expression{Subject: AgentFilter{}}, true},
		{"empty tag name", Expression{Subject: AgentFilter{}, Answer: TagAnswer{}}, true},
		{"pointer subject variant", Expression{Subject: &ActionFilter{}, Answer: ExistsAnswer{}}, true},
		{"pointer answer variant", Expression{Subject: AgentFilter{}, Answer: &ExistsAnswer{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expr.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExpression_String(t *testing.T) {
	assert.Equal(t, "ACTION/TAG(action_name)", Expression{Subject: ActionFilter{}, Answer: TagAnswer{TagName: "action_name"}}.String())
	assert.Equal(t, "REFERENCE_OBJECT/EXISTS", Expression{Subject: ReferenceObjectFilter{}, Answer: ExistsAnswer{}}.String())
	assert.Equal(t, "<nil>/<nil>", Expression{}.String())
}
