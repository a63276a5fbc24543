package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/query"
)

// Tag names with dedicated renderers. Any other name starting with "has_" is
// an attribute lookup.
const (
	TagActionName                = "action_name"
	TagActionReferenceObjectName = "action_reference_object_name"
	TagMoveTarget                = "move_target"
	TagLocation                  = "location"
)

// Render extracts the answer for answer from candidates. Only the first
// candidate is inspected for TAG answers; EXISTS only checks for emptiness.
//
// Render returns *Fault errors unconverted; Resolver.Resolve is the place
// where soft faults become responses.
func Render(ctx context.Context, triples core.TripleReader, candidates []core.Entity, answer query.AnswerType) (core.Response, error) {
	switch a := answer.(type) {
	case query.ExistsAnswer:
		return renderExists(candidates), nil
	case query.TagAnswer:
		return renderTag(ctx, triples, candidates, a.TagName)
	default:
		return core.Response{}, fmt.Errorf("%w: bad answer type %T", query.ErrInvalidQuery, answer)
	}
}

func renderExists(candidates []core.Entity) core.Response {
	if len(candidates) > 0 {
		return core.TextResponse("Yes")
	}

	return core.TextResponse("No")
}

func renderTag(ctx context.Context, triples core.TripleReader, candidates []core.Entity, tag string) (core.Response, error) {
	if len(candidates) == 0 {
		return core.Response{}, newFault(ErrNoReferent, MsgNoReferent, "no candidates for tag %q", tag)
	}

	mem := candidates[0]
	if mem == nil {
		return core.Response{}, newFault(ErrNoReferent, MsgNoReferent, "nil candidate for tag %q", tag)
	}

	switch {
	case core.IsAttribute(tag):
		return renderAttribute(ctx, triples, mem, tag)
	case tag == TagActionName:
		return renderActionName(mem)
	case tag == TagActionReferenceObjectName:
		return renderBuildTarget(mem)
	case tag == TagMoveTarget:
		return renderMoveTarget(mem)
	case tag == TagLocation:
		return renderLocation(mem)
	default:
		return core.Response{}, newFault(ErrUnsupportedTag, MsgNotUnderstood, "tag %q", tag)
	}
}

// renderAttribute looks up (mem, tag) and backs off to (mem, has_tag). The
// "all values" join is only used on the has_tag branch.
func renderAttribute(ctx context.Context, triples core.TripleReader, mem core.Entity, tag string) (core.Response, error) {
	pred := tag

	found, err := lookup(ctx, triples, mem.MemID(), pred)
	if err != nil {
		return core.Response{}, err
	}

	if len(found) == 0 {
		pred = core.PredicateHasTag

		found, err = lookup(ctx, triples, mem.MemID(), pred)
		if err != nil {
			return core.Response{}, err
		}

		if len(found) == 0 {
			return core.TextResponse(MsgDontKnow), nil
		}
	}

	values := core.Values(found)

	switch pred {
	case core.PredicateHasName:
		return core.TextResponse("It is a " + quote(values[0])), nil
	case core.PredicateHasTag:
		return core.TextResponse("That has tags " + strings.Join(values, " ")), nil
	default:
		return core.TextResponse("It is " + quote(values[0])), nil
	}
}

// lookup reads triples, folding a not-found collaborator error into "no
// triples".
func lookup(ctx context.Context, triples core.TripleReader, subject core.MemID, pred string) ([]core.Triple, error) {
	if triples == nil {
		return nil, errors.New("triple reader not configured")
	}

	found, err := triples.Triples(ctx, subject, pred)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get triples (%s, %s): %w", subject, pred, err)
	}

	return found, nil
}

func renderActionName(mem core.Entity) (core.Response, error) {
	task, ok := mem.(*core.TaskNode)
	if !ok {
		return core.Response{}, newFault(ErrTypeMismatch, MsgNotUnderstood, "%s: %s %s is not a task", TagActionName, mem.Kind(), mem.MemID())
	}

	verb, ok := Progressive(task.ActionName)
	if !ok {
		return core.Response{}, newFault(ErrUnmappedAction, MsgNotUnderstood, "action %q of task %s", task.ActionName, task.ID)
	}

	return core.TextResponse("I am " + verb), nil
}

func renderBuildTarget(mem core.Entity) (core.Response, error) {
	task, ok := mem.(*core.TaskNode)
	if !ok {
		return core.Response{}, newFault(ErrTypeMismatch, MsgNotUnderstood, "%s: %s %s is not a task", TagActionReferenceObjectName, mem.Kind(), mem.MemID())
	}

	build, ok := task.Task.(*core.BuildTask)
	if !ok {
		return core.Response{}, newFault(ErrTypeMismatch, MsgNotUnderstood, "%s: task %s is not a build task", TagActionReferenceObjectName, task.ID)
	}

	tags := build.SchematicTags
	if len(tags) == 0 {
		return core.TextResponse("I am building something"), nil
	}

	for _, t := range tags {
		if t.Predicate == core.PredicateHasName {
			return core.TextResponse("I am building a " + t.Value), nil
		}
	}

	return core.TextResponse("I am building something that is " + tags[len(tags)-1].Value), nil
}

func renderMoveTarget(mem core.Entity) (core.Response, error) {
	task, ok := mem.(*core.TaskNode)
	if !ok {
		return core.Response{}, newFault(ErrTypeMismatch, MsgNotUnderstood, "%s: %s %s is not a task", TagMoveTarget, mem.Kind(), mem.MemID())
	}

	// exact match, unlike the lexicon lookup
	if task.ActionName != "Move" {
		return core.Response{}, newFault(ErrPrecondition, MsgNotUnderstood, "%s: task %s is a %q, not a Move", TagMoveTarget, task.ID, task.ActionName)
	}

	move, ok := task.Task.(*core.MoveTask)
	if !ok {
		return core.Response{}, newFault(ErrTypeMismatch, MsgNotUnderstood, "%s: task %s carries no move target", TagMoveTarget, task.ID)
	}

	return core.TextResponse("I am going to " + move.Target.String()), nil
}

func renderLocation(mem core.Entity) (core.Response, error) {
	switch m := mem.(type) {
	case *core.ReferenceObjectNode:
		return core.TextResponse(m.Position.String()), nil
	case *core.TaskNode, *core.Node:
		return core.Response{}, newFault(ErrNotPositionable, MsgNotUnderstood, "can't get location of %s %s", m.Kind(), m.MemID())
	default:
		return core.Response{}, newFault(ErrNotPositionable, MsgNotUnderstood, "can't get location of %T", mem)
	}
}
