package query

import (
	"errors"
	"fmt"

	"github.com/hupe1980/memquery/core"
)

// ErrInvalidQuery marks a malformed query expression or logical form. It is a
// contract violation by the caller, never a user-facing answer.
var ErrInvalidQuery = errors.New("invalid query")

// Subject filter type names as they appear in logical forms.
const (
	SubjectAction          = "ACTION"
	SubjectAgent           = "AGENT"
	SubjectReferenceObject = "REFERENCE_OBJECT"
)

// Answer type names as they appear in logical forms.
const (
	AnswerTag    = "TAG"
	AnswerExists = "EXISTS"
)

// SubjectFilter selects what a query is about. Implementations:
// ActionFilter, AgentFilter, ReferenceObjectFilter.
type SubjectFilter interface {
	// Type returns the logical-form name of the filter.
	Type() string

	subjectFilter()
}

// ActionFilter asks about the agent's current task. An empty TargetActionType
// means "whatever the agent is doing".
type ActionFilter struct {
	TargetActionType string
}

// Type implements SubjectFilter.
func (ActionFilter) Type() string { return SubjectAction }

func (ActionFilter) subjectFilter() {}

// AgentFilter asks about the agent itself.
type AgentFilter struct{}

// Type implements SubjectFilter.
func (AgentFilter) Type() string { return SubjectAgent }

func (AgentFilter) subjectFilter() {}

// ReferenceObjectFilter asks about objects matching Descriptor.
type ReferenceObjectFilter struct {
	Descriptor core.Descriptor
}

// Type implements SubjectFilter.
func (ReferenceObjectFilter) Type() string { return SubjectReferenceObject }

func (ReferenceObjectFilter) subjectFilter() {}

// AnswerType selects the shape of the answer. Implementations: TagAnswer,
// ExistsAnswer.
type AnswerType interface {
	// Type returns the logical-form name of the answer type.
	Type() string

	answerType()
}

// TagAnswer asks for a named attribute of the first candidate.
type TagAnswer struct {
	TagName string
}

// Type implements AnswerType.
func (TagAnswer) Type() string { return AnswerTag }

func (TagAnswer) answerType() {}

// String returns e.g. "TAG(has_name)".
func (a TagAnswer) String() string { return fmt.Sprintf("%s(%s)", AnswerTag, a.TagName) }

// ExistsAnswer asks whether any candidate exists.
type ExistsAnswer struct{}

// Type implements AnswerType.
func (ExistsAnswer) Type() string { return AnswerExists }

func (ExistsAnswer) answerType() {}

// Expression is one immutable GET_MEMORY query.
type Expression struct {
	Subject SubjectFilter
	Answer  AnswerType
}

// Validate checks the structural invariants of the expression.
func (e Expression) Validate() error {
	switch e.Subject.(type) {
	case ActionFilter, AgentFilter, ReferenceObjectFilter:
	case nil:
		return fmt.Errorf("%w: missing subject filter", ErrInvalidQuery)
	default:
		return fmt.Errorf("%w: unknown subject filter %T", ErrInvalidQuery, e.Subject)
	}

	switch a := e.Answer.(type) {
	case TagAnswer:
		if a.TagName == "" {
			return fmt.Errorf("%w: tag_name is required for %s", ErrInvalidQuery, AnswerTag)
		}
	case ExistsAnswer:
	case nil:
		return fmt.Errorf("%w: missing answer type", ErrInvalidQuery)
	default:
		return fmt.Errorf("%w: unknown answer type %T", ErrInvalidQuery, e.Answer)
	}

	return nil
}

// String renders the expression for logs, e.g. "ACTION/TAG(action_name)".
func (e Expression) String() string {
	subject, answer := "<nil>", "<nil>"
	if e.Subject != nil {
		subject = e.Subject.Type()
	}

	switch a := e.Answer.(type) {
	case TagAnswer:
		answer = a.String()
	case nil:
	default:
		answer = a.Type()
	}

	return subject + "/" + answer
}
