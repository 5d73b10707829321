package interfaces

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
)

// Context is the execution context of an interface owner. Interfaces of the
// same component share one Context; calls across different contexts go
// through mailboxes.
type Context struct {
	id      uuid.UUID
	name    string
	wake    atomic.Pointer[func()]
	logger  *slog.Logger
	metrics tally.Scope
}

func NewContext(name string, logger *slog.Logger, metrics tally.Scope) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = tally.NoopScope
	}
	return &Context{
		id:      uuid.New(),
		name:    name,
		logger:  logger.With("component", name),
		metrics: metrics,
	}
}

func (c *Context) ID() uuid.UUID {
	return c.id
}

func (c *Context) Name() string {
	return c.name
}

func (c *Context) Logger() *slog.Logger {
	return c.logger
}

func (c *Context) Metrics() tally.Scope {
	return c.metrics
}

// SetWake installs the function that wakes the owner's thread.
func (c *Context) SetWake(fn func()) {
	c.wake.Store(&fn)
}

func (c *Context) Wake() {
	if fn := c.wake.Load(); fn != nil && *fn != nil {
		(*fn)()
	}
}
