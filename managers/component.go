package managers

import (
	"time"

	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/tasks"
)

// Component is what the manager needs from a component.
type Component interface {
	Name() string
	Context() *interfaces.Context
	Provided(name string) *interfaces.Provided
	Required(name string) *interfaces.Required
	ProvidedNames() []string
	RequiredNames() []string
}

var (
	_ Component = (*tasks.Component)(nil)
	_ Component = (*tasks.Task)(nil)
)

// Lifecycle is implemented by components with a thread.
type Lifecycle interface {
	Create() error
	Start()
	Suspend()
	Kill()
	State() tasks.State
	WaitForState(state tasks.State, timeout time.Duration) bool
	Join(timeout time.Duration) bool
}

var _ Lifecycle = (*tasks.Task)(nil)

// releaser drops the data registration of a removed task.
type releaser interface {
	Release() error
}

var _ releaser = (*tasks.Task)(nil)

type binderAdder interface {
	AddBinder(func() error)
}
