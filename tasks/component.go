package tasks

import (
	"fmt"
	"slices"
	"sync"

	"github.com/reusee/mts/interfaces"
)

// Component owns provided and required interfaces. A bare Component has no
// thread: its provided commands run on the caller's goroutine.
type Component struct {
	name   string
	ctx    *interfaces.Context
	config config
	policy interfaces.QueueingPolicy

	mu            sync.RWMutex
	provided      map[string]*interfaces.Provided
	providedOrder []string
	required      map[string]*interfaces.Required
	requiredOrder []string
}

func NewComponent(name string, options ...Option) *Component {
	return newComponent(name, interfaces.NotQueued, options)
}

func newComponent(name string, policy interfaces.QueueingPolicy, options []Option) *Component {
	c := defaultConfig()
	for _, option := range options {
		option(&c)
	}
	return &Component{
		name:     name,
		ctx:      interfaces.NewContext(name, c.logger, c.metrics),
		config:   c,
		policy:   policy,
		provided: make(map[string]*interfaces.Provided),
		required: make(map[string]*interfaces.Required),
	}
}

func (c *Component) Name() string {
	return c.name
}

func (c *Component) Context() *interfaces.Context {
	return c.ctx
}

func (c *Component) AddProvided(name string) (*interfaces.Provided, error) {
	return c.AddProvidedWithPolicy(name, c.policy)
}

func (c *Component) AddProvidedWithPolicy(name string, policy interfaces.QueueingPolicy) (*interfaces.Provided, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.provided[name]; ok {
		return nil, fmt.Errorf("%w: provided %s of %s", interfaces.ErrDuplicate, name, c.name)
	}
	p := interfaces.NewProvided(name, c.ctx, policy)
	p.SetMailboxSize(c.config.mailboxSize)
	c.provided[name] = p
	c.providedOrder = append(c.providedOrder, name)
	return p, nil
}

func (c *Component) AddRequired(name string, options ...interfaces.RequiredOption) (*interfaces.Required, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.required[name]; ok {
		return nil, fmt.Errorf("%w: required %s of %s", interfaces.ErrDuplicate, name, c.name)
	}
	options = append([]interfaces.RequiredOption{
		interfaces.EventMailboxSize(c.config.mailboxSize),
	}, options...)
	if c.policy == interfaces.NotQueued {
		options = append(options, interfaces.DirectEvents())
	}
	r := interfaces.NewRequired(name, c.ctx, options...)
	c.required[name] = r
	c.requiredOrder = append(c.requiredOrder, name)
	return r, nil
}

func (c *Component) Provided(name string) *interfaces.Provided {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provided[name]
}

func (c *Component) Required(name string) *interfaces.Required {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.required[name]
}

func (c *Component) ProvidedNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.providedOrder)
}

func (c *Component) RequiredNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.requiredOrder)
}

func (c *Component) providedList() []*interfaces.Provided {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]*interfaces.Provided, 0, len(c.providedOrder))
	for _, name := range c.providedOrder {
		ret = append(ret, c.provided[name])
	}
	return ret
}

func (c *Component) requiredList() []*interfaces.Required {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]*interfaces.Required, 0, len(c.requiredOrder))
	for _, name := range c.requiredOrder {
		ret = append(ret, c.required[name])
	}
	return ret
}

// checkRequired reports mandatory required interfaces left unconnected.
func (c *Component) checkRequired() error {
	for _, r := range c.requiredList() {
		if !r.IsOptional() && !r.IsConnected() {
			return fmt.Errorf("%w: required %s of %s", interfaces.ErrNotConnected, r.Name(), c.name)
		}
	}
	return nil
}
