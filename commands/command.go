package commands

import (
	"errors"
	"sync/atomic"

	"github.com/reusee/mts/values"
)

// Action is the untyped bound action. Typed constructors adapt user
// functions to it after the prototypes have been checked.
type Action func(arg values.Value, result *values.Value) error

var errCast = errors.New("cast")

// Command is a named, type-checked unit of invocation. It is immutable after
// creation except for the enabled flag.
type Command struct {
	name           string
	kind           Kind
	argument       values.Prototype
	result         values.Prototype
	action         Action
	concurrentRead bool
	enabled        atomic.Bool
}

type Option func(*Command)

// ConcurrentRead marks a read command as safe to execute on the caller's
// goroutine, bypassing the owner's mailbox.
func ConcurrentRead() Option {
	return func(c *Command) {
		c.concurrentRead = true
	}
}

func New(name string, kind Kind, argument, result values.Prototype, action Action, options ...Option) *Command {
	ret := &Command{
		name:     name,
		kind:     kind,
		argument: argument,
		result:   result,
		action:   action,
	}
	ret.enabled.Store(true)
	for _, option := range options {
		option(ret)
	}
	return ret
}

func NewVoid(name string, fn func() error, options ...Option) *Command {
	return New(name, Void, values.Prototype{}, values.Prototype{},
		func(values.Value, *values.Value) error {
			return fn()
		},
		options...,
	)
}

func NewRead[R any](name string, fn func(*R) error, options ...Option) *Command {
	return New(name, Read, values.Prototype{}, values.PrototypeOf[R](),
		func(_ values.Value, result *values.Value) error {
			var r R
			if err := fn(&r); err != nil {
				return err
			}
			values.Store(result, r)
			return nil
		},
		options...,
	)
}

// NewReadValue builds a read command whose action produces a complete value,
// timestamp included.
func NewReadValue(name string, proto values.Prototype, fn func() (values.Value, error), options ...Option) *Command {
	return New(name, Read, values.Prototype{}, proto,
		func(_ values.Value, result *values.Value) error {
			v, err := fn()
			if err != nil {
				return err
			}
			if !values.StoreValue(result, v) {
				return errCast
			}
			return nil
		},
		options...,
	)
}

func NewWrite[A any](name string, fn func(A) error, options ...Option) *Command {
	return New(name, Write, values.PrototypeOf[A](), values.Prototype{},
		func(arg values.Value, _ *values.Value) error {
			a, ok := values.Cast[A](arg)
			if !ok {
				return errCast
			}
			return fn(a)
		},
		options...,
	)
}

func NewQualifiedRead[A, R any](name string, fn func(A, *R) error, options ...Option) *Command {
	return New(name, QualifiedRead, values.PrototypeOf[A](), values.PrototypeOf[R](),
		func(arg values.Value, result *values.Value) error {
			a, ok := values.Cast[A](arg)
			if !ok {
				return errCast
			}
			var r R
			if err := fn(a, &r); err != nil {
				return err
			}
			values.Store(result, r)
			return nil
		},
		options...,
	)
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) Kind() Kind {
	return c.kind
}

func (c *Command) ArgumentPrototype() values.Prototype {
	return c.argument
}

func (c *Command) ResultPrototype() values.Prototype {
	return c.result
}

// ConcurrentRead reports whether the command may run on a caller goroutine.
func (c *Command) ConcurrentRead() bool {
	return c.concurrentRead && c.kind.HasResult()
}

func (c *Command) Enable() {
	c.enabled.Store(true)
}

func (c *Command) Disable() {
	c.enabled.Store(false)
}

func (c *Command) Enabled() bool {
	return c.enabled.Load()
}

// Check validates argument and result slot against the prototypes without
// invoking anything.
func (c *Command) Check(arg values.Value, result *values.Value) Result {
	switch c.kind {
	case Void:
		if !arg.IsVoid() {
			return InvalidInputType
		}
	case Read:
		if !arg.IsVoid() || !c.resultSlotOK(result) {
			return InvalidInputType
		}
	case Write:
		if !c.argumentOK(arg) {
			return InvalidInputType
		}
	case QualifiedRead:
		if !c.argumentOK(arg) || !c.resultSlotOK(result) {
			return InvalidInputType
		}
	default:
		return Failed
	}
	return Succeeded
}

func (c *Command) argumentOK(arg values.Value) bool {
	return arg.Usable() && arg.Prototype().Compatible(c.argument)
}

func (c *Command) resultSlotOK(result *values.Value) bool {
	return result != nil && result.Usable() && result.Prototype().Compatible(c.result)
}

// Execute runs the bound action once if the command is enabled and the
// argument and result slot match the prototypes.
func (c *Command) Execute(arg values.Value, result *values.Value) Result {
	if !c.enabled.Load() {
		return Disabled
	}
	if r := c.Check(arg, result); r != Succeeded {
		return r
	}
	if err := c.action(arg, result); err != nil {
		if errors.Is(err, errCast) {
			return InvalidInputType
		}
		return Failed
	}
	return Succeeded
}
