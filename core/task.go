package core

// Tag is a (predicate, value) pair attached to a build schematic.
type Tag struct {
	Predicate string `json:"predicate" yaml:"predicate"`
	Value     string `json:"value" yaml:"value"`
}

// Task is the payload of a TaskNode. The set of implementations is closed:
// *BuildTask, *MoveTask and *GenericTask.
type Task interface {
	// Name returns the task type name ("build", "move", "generic").
	Name() string

	task()
}

// BuildTask builds a schematic described by ordered tags.
type BuildTask struct {
	SchematicTags []Tag `json:"schematic_tags,omitempty"`
}

// Name implements Task.
func (*BuildTask) Name() string { return "build" }

func (*BuildTask) task() {}

// MoveTask moves the agent to Target.
type MoveTask struct {
	Target Position `json:"target"`
}

// Name implements Task.
func (*MoveTask) Name() string { return "move" }

func (*MoveTask) task() {}

// GenericTask is any task whose payload carries nothing the resolver reads
// (dig, destroy, dance, ...).
type GenericTask struct{}

// Name implements Task.
func (*GenericTask) Name() string { return "generic" }

func (*GenericTask) task() {}

var (
	_ Task = (*BuildTask)(nil)
	_ Task = (*MoveTask)(nil)
	_ Task = (*GenericTask)(nil)
)
