package resolver

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/memquery/core"
)

// MockMemoryView for testing collaborator failures.
type MockMemoryView struct{ mock.Mock }

func (m *MockMemoryView) Triples(ctx context.Context, subject core.MemID, predicate string) ([]core.Triple, error) {
	args := m.Called(ctx, subject, predicate)
	triples, _ := args.Get(0).([]core.Triple)
	return triples, args.Error(1)
}

func (m *MockMemoryView) Peek(ctx context.Context) (*core.TaskNode, bool, error) {
	args := m.Called(ctx)
	task, _ := args.Get(0).(*core.TaskNode)
	return task, args.Bool(1), args.Error(2)
}

func (m *MockMemoryView) FindLowestInstance(ctx context.Context, actionType string) (*core.TaskNode, bool, error) {
	args := m.Called(ctx, actionType)
	task, _ := args.Get(0).(*core.TaskNode)
	return task, args.Bool(1), args.Error(2)
}

func (m *MockMemoryView) AgentPosition(ctx context.Context) (core.Position, error) {
	args := m.Called(ctx)
	pos, _ := args.Get(0).(core.Position)
	return pos, args.Error(1)
}

var _ core.MemoryView = (*MockMemoryView)(nil)
