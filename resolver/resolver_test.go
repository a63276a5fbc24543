package resolver

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/internal/testutil"
	"github.com/hupe1980/memquery/logging"
	"github.com/hupe1980/memquery/memory"
	"github.com/hupe1980/memquery/query"
)

func actionQuery(target, tagName string) query.Expression {
	return query.Expression{Subject: query.ActionFilter{TargetActionType: target}, Answer: query.TagAnswer{TagName: tagName}}
}

// taskChain builds T1 <- T2 <- T3 with T3 on top.
func taskChain() *testutil.WorldBuilder {
	return testutil.NewWorldBuilder().
		Agent(core.Position{0, 63, 0}).
		Task("T1", "Build", &core.BuildTask{SchematicTags: []core.Tag{{Predicate: "has_name", Value: "hut"}}}, "").
		Task("T2", "Move", &core.MoveTask{Target: core.Position{4, 5, 6}}, "T1").
		Task("T3", "Dig", &core.GenericTask{}, "T2")
}

func TestResolve_ActionIdle(t *testing.T) {
	store := testutil.NewWorldBuilder().Build(t)
	r := New(store, nil)

	answers := []query.AnswerType{query.ExistsAnswer{}, tag(TagActionName), tag(TagLocation), tag("has_name")}
	for _, a := range answers {
		resp, err := r.Resolve(context.Background(), query.Expression{Subject: query.ActionFilter{}, Answer: a})
		require.NoError(t, err)
		assert.Equal(t, core.TextResponse(MsgNotDoingAnything), resp)
	}

	resp, err := r.Resolve(context.Background(), actionQuery("Build", TagActionName))
	require.NoError(t, err)
	assert.Equal(t, core.TextResponse(MsgNotDoingAnything), resp)
}

func TestResolve_ActionRootTask(t *testing.T) {
	r := New(taskChain().Build(t), nil)

	resp, err := r.Resolve(context.Background(), actionQuery("", TagActionName))
	require.NoError(t, err)
	assert.Equal(t, core.TextResponse("I am building"), resp)

	resp, err = r.Resolve(context.Background(), actionQuery("", TagActionReferenceObjectName))
	require.NoError(t, err)
	assert.Equal(t, core.TextResponse("I am building a hut"), resp)
}

func TestResolve_ActionTargetType(t *testing.T) {
	r := New(taskChain().Build(t), nil)

	resp, err := r.Resolve(context.Background(), actionQuery("move", TagMoveTarget))
	require.NoError(t, err)
	assert.Equal(t, core.TextResponse("I am going to (4, 5, 6)"), resp)

	resp, err = r.Resolve(context.Background(), actionQuery("Dig", TagActionName))
	require.NoError(t, err)
	assert.Equal(t, core.TextResponse("I am digging"), resp)

	resp, err = r.Resolve(context.Background(), query.Expression{Subject: query.ActionFilter{TargetActionType: "Build"}, Answer: query.ExistsAnswer{}})
	require.NoError(t, err)
	assert.Equal(t, core.TextResponse("Yes"), resp)
}

func TestResolve_MoveTargetOnNonMove(t *testing.T) {
	expr := actionQuery("", TagMoveTarget)

	t.Run("softened by default", func(t *testing.T) {
		resp, err := New(taskChain().Build(t), nil).Resolve(context.Background(), expr)
		require.NoError(t, err)
		assert.Equal(t, core.TextResponse(MsgNotUnderstood), resp)
	})

	t.Run("strict propagates", func(t *testing.T) {
		resp, err := New(taskChain().Build(t), nil, WithStrictShapes()).Resolve(context.Background(), expr)
		assert.ErrorIs(t, err, ErrPrecondition)
		assert.False(t, resp.HasText())
	})
}

func TestResolve_Agent(t *testing.T) {
	r := New(taskChain().Build(t), nil)

	for _, a := range []query.AnswerType{query.ExistsAnswer{}, tag("has_name")} {
		resp, err := r.Resolve(context.Background(), query.Expression{Subject: query.AgentFilter{}, Answer: a})
		require.NoError(t, err)
		assert.Equal(t, core.TextResponse("I am at (0, 63, 0)"), resp)
	}
}

func TestResolve_ReferenceObject(t *testing.T) {
	store := testutil.NewWorldBuilder().
		Object("hut1", core.Position{1, 2, 3}).
		Triple("hut1", "has_name", "hut").
		Triple("hut1", "has_tag", "red").
		Triple("hut1", "has_tag", "shiny").
		Build(t)

	r := New(store, memory.NewReferenceResolver(store))

	hut := core.Descriptor{"filters": map[string]any{"has_name": "hut"}}
	castle := core.Descriptor{"filters": map[string]any{"has_name": "castle"}}

	tests := []struct {
		name string
		expr query.Expression
		want string
	}{
		{"exists", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: hut}, Answer: query.ExistsAnswer{}}, "Yes"},
		{"does not exist", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: castle}, Answer: query.ExistsAnswer{}}, "No"},
		{"name", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: hut}, Answer: tag("has_name")}, "It is a 'hut'"},
		{"backoff", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: hut}, Answer: tag("has_color")}, "That has tags red shiny"},
		{"location", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: hut}, Answer: tag(TagLocation)}, "(1, 2, 3)"},
		{"no referent", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: castle}, Answer: tag("has_name")}, MsgNoReferent},
		{"unsupported descriptor", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: core.Descriptor{"special": "SPEAKER"}}, Answer: query.ExistsAnswer{}}, "No"},
		{"unsupported tag", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: hut}, Answer: tag("colour")}, MsgNotUnderstood},
		{"type mismatch", query.Expression{Subject: query.ReferenceObjectFilter{Descriptor: hut}, Answer: tag(TagActionName)}, MsgNotUnderstood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := r.Resolve(context.Background(), tt.expr)
			require.NoError(t, err)
			assert.Equal(t, core.TextResponse(tt.want), resp)
		})
	}
}

func TestResolve_LocationIsHardFault(t *testing.T) {
	r := New(taskChain().Build(t), nil)

	_, err := r.Resolve(context.Background(), actionQuery("", TagLocation))
	assert.ErrorIs(t, err, ErrNotPositionable)
}

func TestResolve_Idempotent(t *testing.T) {
	store := taskChain().Triple("T1", "has_tag", "urgent").Build(t)
	r := New(store, memory.NewReferenceResolver(store))

	exprs := []query.Expression{
		actionQuery("", TagActionName),
		actionQuery("", "has_priority"),
		actionQuery("Move", TagMoveTarget),
		{Subject: query.AgentFilter{}, Answer: query.ExistsAnswer{}},
		{Subject: query.ReferenceObjectFilter{Descriptor: core.Descriptor{}}, Answer: query.ExistsAnswer{}},
	}

	for _, expr := range exprs {
		first, err1 := r.Resolve(context.Background(), expr)
		second, err2 := r.Resolve(context.Background(), expr)
		assert.Equal(t, first, second, expr.String())
		assert.Equal(t, err1, err2, expr.String())
	}
}

func TestResolve_InvalidQuery(t *testing.T) {
	r := New(testutil.NewWorldBuilder().Build(t), nil)

	for _, expr := range []query.Expression{
		{},
		{Subject: query.AgentFilter{}},
		{Subject: query.AgentFilter{}, Answer: query.TagAnswer{}},
		{Subject: &query.AgentFilter{}, Answer: query.ExistsAnswer{}},
	} {
		_, err := r.Resolve(context.Background(), expr)
		assert.ErrorIs(t, err, query.ErrInvalidQuery, expr.String())
	}
}

func TestResolve_Collaborators(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New(testutil.NewWorldBuilder().Build(t), nil).Resolve(cctx, actionQuery("", TagActionName))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("missing memory", func(t *testing.T) {
		_, err := New(nil, nil).Resolve(ctx, actionQuery("", TagActionName))
		assert.Error(t, err)
	})

	t.Run("missing reference resolver", func(t *testing.T) {
		_, err := New(testutil.NewWorldBuilder().Build(t), nil).Resolve(ctx, query.Expression{Subject: query.ReferenceObjectFilter{}, Answer: query.ExistsAnswer{}})
		assert.Error(t, err)
	})

	t.Run("reference resolver failure propagates", func(t *testing.T) {
		boom := errors.New("index offline")
		refs := core.ReferenceResolverFunc(func(context.Context, core.Descriptor) ([]core.Entity, error) { return nil, boom })

		_, err := New(testutil.NewWorldBuilder().Build(t), refs).Resolve(ctx, query.Expression{Subject: query.ReferenceObjectFilter{}, Answer: query.ExistsAnswer{}})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("task stack not found is idle", func(t *testing.T) {
		m := &MockMemoryView{}
		m.On("Peek", mock.Anything).Return(nil, false, core.ErrNotFound)

		resp, err := New(m, nil).Resolve(ctx, actionQuery("", TagActionName))
		require.NoError(t, err)
		assert.Equal(t, core.TextResponse(MsgNotDoingAnything), resp)
		m.AssertExpectations(t)
	})

	t.Run("task stack failure propagates", func(t *testing.T) {
		boom := errors.New("stack corrupted")
		m := &MockMemoryView{}
		m.On("FindLowestInstance", mock.Anything, "Build").Return(nil, false, boom)

		_, err := New(m, nil).Resolve(ctx, actionQuery("Build", TagActionName))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cyclic parent chain", func(t *testing.T) {
		a := &core.TaskNode{ID: "a", ActionName: "Build"}
		b := &core.TaskNode{ID: "b", ActionName: "Move", Parent: a}
		a.Parent = b

		m := &MockMemoryView{}
		m.On("Peek", mock.Anything).Return(b, true, nil)

		_, err := New(m, nil).Resolve(ctx, actionQuery("", TagActionName))
		assert.ErrorIs(t, err, core.ErrCyclicTask)
	})

	t.Run("agent position not found", func(t *testing.T) {
		m := &MockMemoryView{}
		m.On("AgentPosition", mock.Anything).Return(core.Position{}, core.ErrNotFound)

		resp, err := New(m, nil).Resolve(ctx, query.Expression{Subject: query.AgentFilter{}, Answer: query.ExistsAnswer{}})
		require.NoError(t, err)
		assert.Equal(t, core.TextResponse(MsgDontKnow), resp)
	})
}

func TestResolve_LogsResolution(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json", Output: &buf})
	r := New(taskChain().Build(t), nil, WithLogger(logger))

	_, err := r.Resolve(context.Background(), actionQuery("", TagActionName))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Resolution completed")
	assert.Contains(t, out, `"subject":"ACTION"`)
	assert.Contains(t, out, `"answer":"TAG(action_name)"`)
}
