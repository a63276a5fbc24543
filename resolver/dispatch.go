package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/query"
)

// outcome is the result of dispatching a subject filter: either a direct
// answer that bypasses rendering, or candidates for the renderer.
type outcome struct {
	direct     *core.Response
	candidates []core.Entity
}

func directOutcome(text string) outcome {
	resp := core.TextResponse(text)
	return outcome{direct: &resp}
}

func (r *Resolver) dispatch(ctx context.Context, subject query.SubjectFilter) (outcome, error) {
	switch s := subject.(type) {
	case query.ActionFilter:
		return r.dispatchAction(ctx, s)
	case query.AgentFilter:
		return r.dispatchAgent(ctx)
	case query.ReferenceObjectFilter:
		return r.dispatchReferenceObject(ctx, s)
	default:
		return outcome{}, fmt.Errorf("%w: unknown subject filter %T", query.ErrInvalidQuery, subject)
	}
}

func (r *Resolver) dispatchAction(ctx context.Context, f query.ActionFilter) (outcome, error) {
	var (
		task  *core.TaskNode
		found bool
		err   error
	)

	if f.TargetActionType != "" {
		task, found, err = r.memory.FindLowestInstance(ctx, f.TargetActionType)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return outcome{}, fmt.Errorf("find lowest instance of %q: %w", f.TargetActionType, err)
		}
	} else {
		task, found, err = r.memory.Peek(ctx)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return outcome{}, fmt.Errorf("peek task stack: %w", err)
		}

		if err == nil && found && task != nil {
			if task, err = task.Root(); err != nil {
				return outcome{}, fmt.Errorf("root task: %w", err)
			}
		}
	}

	if err != nil || !found || task == nil {
		r.logger.Debug("resolver.dispatch.idle", "target_action_type", f.TargetActionType)
		return directOutcome(MsgNotDoingAnything), nil
	}

	r.logger.Debug("resolver.dispatch.task", "task", task.ID.String(), "action", task.ActionName)

	return outcome{candidates: []core.Entity{task}}, nil
}

// dispatchAgent answers directly; the answer type is not consulted.
func (r *Resolver) dispatchAgent(ctx context.Context) (outcome, error) {
	pos, err := r.memory.AgentPosition(ctx)
	if err != nil {
		return outcome{}, fmt.Errorf("agent position: %w", err)
	}

	return directOutcome("I am at " + pos.String()), nil
}

func (r *Resolver) dispatchReferenceObject(ctx context.Context, f query.ReferenceObjectFilter) (outcome, error) {
	if r.refs == nil {
		return outcome{}, errors.New("reference resolver not configured")
	}

	mems, err := r.refs.ResolveReferenceObject(ctx, f.Descriptor)
	if errors.Is(err, core.ErrNotFound) {
		r.logger.Debug("resolver.dispatch.no_reference", "error", err.Error())
		return outcome{}, nil
	}

	if err != nil {
		return outcome{}, fmt.Errorf("resolve reference object: %w", err)
	}

	r.logger.Debug("resolver.dispatch.reference", "candidates", len(mems))

	return outcome{candidates: mems}, nil
}
