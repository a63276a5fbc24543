package resolver

import (
	"errors"
	"fmt"
)

// Fault sentinels. Match with errors.Is.
var (
	// ErrNoReferent is raised when a TAG query has no candidate to inspect.
	ErrNoReferent = errors.New("no referent")
	// ErrUnsupportedTag is raised for tag names the renderer does not know.
	ErrUnsupportedTag = errors.New("unsupported tag")
	// ErrTypeMismatch is raised when the candidate is not the kind of entity
	// the tag requires (e.g. action_name on a non-task).
	ErrTypeMismatch = errors.New("entity type mismatch")
	// ErrPrecondition is raised when the candidate has the right kind but not
	// the required state (e.g. move_target on a task that is not a Move).
	ErrPrecondition = errors.New("precondition failed")
	// ErrUnmappedAction is raised when a task's action has no progressive form.
	ErrUnmappedAction = errors.New("unmapped action")
	// ErrNotPositionable is raised when location is asked of an entity without
	// a position. It is never softened.
	ErrNotPositionable = errors.New("entity has no position")
)

// User-facing messages.
const (
	MsgNoReferent       = "I don't know what you're referring to"
	MsgNotUnderstood    = "I don't understand what you're asking"
	MsgDontKnow         = "I don't know"
	MsgNotDoingAnything = "I am not doing anything right now"
)

// Fault is a classified resolution failure. Err is one of the package
// sentinels; Message is what a user would be told; Detail explains the
// failure for logs.
type Fault struct {
	Err     error
	Message string
	Detail  string
}

func newFault(sentinel error, msg, format string, args ...any) *Fault {
	return &Fault{Err: sentinel, Message: msg, Detail: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (f *Fault) Error() string {
	if f.Detail == "" {
		return f.Err.Error()
	}
	return fmt.Sprintf("%s: %s", f.Err, f.Detail)
}

// Unwrap returns the sentinel.
func (f *Fault) Unwrap() error { return f.Err }

// Soft reports whether the fault is an ordinary, user-facing outcome.
func (f *Fault) Soft() bool {
	return errors.Is(f.Err, ErrNoReferent) || errors.Is(f.Err, ErrUnsupportedTag)
}

// Shape reports whether the fault means the query's assumptions about the
// entity's shape did not hold.
func (f *Fault) Shape() bool {
	return errors.Is(f.Err, ErrTypeMismatch) || errors.Is(f.Err, ErrPrecondition) || errors.Is(f.Err, ErrUnmappedAction)
}
