package interfaces

import (
	"fmt"
	"slices"
	"sync"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/mailboxes"
	"github.com/reusee/mts/values"
)

type QueueingPolicy uint8

const (
	Queued QueueingPolicy = iota
	NotQueued
)

func (q QueueingPolicy) String() string {
	if q == NotQueued {
		return "not-queued"
	}
	return "queued"
}

const DefaultMailboxSize = 64

// Provided is a named set of commands and events offered by a component.
type Provided struct {
	name   string
	owner  *Context
	policy QueueingPolicy
	table  *commands.Table

	mu          sync.RWMutex
	mailboxSize int
	format      string
	commands    map[string]*commands.Command
	handles     map[string]commands.Handle
	order       []string
	events      map[string]*event
	eventOrder  []string
	resources   []*Resources
}

// Resources are the per-caller execution resources. Mailbox is nil when
// calls execute directly.
type Resources struct {
	CallerID string
	Mailbox  *mailboxes.Mailbox
}

func NewProvided(name string, owner *Context, policy QueueingPolicy) *Provided {
	return &Provided{
		name:        name,
		owner:       owner,
		policy:      policy,
		table:       commands.NewTable(),
		mailboxSize: DefaultMailboxSize,
		format:      values.FormatJSON,
		commands:    make(map[string]*commands.Command),
		handles:     make(map[string]commands.Handle),
		events:      make(map[string]*event),
	}
}

func (p *Provided) Name() string {
	return p.name
}

func (p *Provided) Owner() *Context {
	return p.owner
}

func (p *Provided) Policy() QueueingPolicy {
	return p.policy
}

// SetMailboxSize sets the capacity of mailboxes allocated afterwards.
func (p *Provided) SetMailboxSize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mailboxSize = n
}

// SetFormat sets the codec format advertised to remote peers.
func (p *Provided) SetFormat(format string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.format = format
}

func (p *Provided) AddCommand(cmd *commands.Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := cmd.Name()
	if _, ok := p.commands[name]; ok {
		return fmt.Errorf("%w: command %s in %s", ErrDuplicate, name, p.name)
	}
	if _, ok := p.events[name]; ok {
		return fmt.Errorf("%w: command %s in %s", ErrDuplicate, name, p.name)
	}
	p.commands[name] = cmd
	p.handles[name] = p.table.Add(cmd)
	p.order = append(p.order, name)
	return nil
}

func (p *Provided) AddVoid(name string, fn func() error, options ...commands.Option) error {
	return p.AddCommand(commands.NewVoid(name, fn, options...))
}

func AddRead[R any](p *Provided, name string, fn func(*R) error, options ...commands.Option) error {
	return p.AddCommand(commands.NewRead(name, fn, options...))
}

func AddWrite[A any](p *Provided, name string, fn func(A) error, options ...commands.Option) error {
	return p.AddCommand(commands.NewWrite(name, fn, options...))
}

func AddQualifiedRead[A, R any](p *Provided, name string, fn func(A, *R) error, options ...commands.Option) error {
	return p.AddCommand(commands.NewQualifiedRead(name, fn, options...))
}

// StateReader is a state-table column readable from any goroutine.
type StateReader interface {
	Prototype() values.Prototype
	LatestValue() (values.Value, error)
}

// AddReadState exposes the latest committed row of a state-table column.
func (p *Provided) AddReadState(name string, reader StateReader) error {
	return p.AddCommand(commands.NewReadValue(
		name,
		reader.Prototype(),
		reader.LatestValue,
		commands.ConcurrentRead(),
	))
}

func (p *Provided) Command(name string) *commands.Command {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.commands[name]
}

func (p *Provided) handle(name string) commands.Handle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handles[name]
}

func (p *Provided) CommandNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.order)
}

func (p *Provided) EventNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.eventOrder)
}

// AllocateResources creates the execution resources of one caller.
func (p *Provided) AllocateResources(callerID string) (*Resources, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.resources {
		if r.CallerID == callerID {
			return nil, fmt.Errorf("%w: %s for %s", ErrAlreadyAllocated, p.name, callerID)
		}
	}
	ret := &Resources{
		CallerID: callerID,
	}
	if p.policy == Queued {
		ret.Mailbox = mailboxes.New(
			p.owner.Name()+"."+p.name+"/"+callerID,
			p.mailboxSize,
			p.table,
			mailboxes.OnEnqueue(p.owner.Wake),
			mailboxes.WithMetrics(p.owner.Metrics()),
		)
	}
	p.resources = append(p.resources, ret)
	return ret, nil
}

// ReleaseResources drops the caller's resources. Pending blocking entries
// complete as disconnected.
func (p *Provided) ReleaseResources(callerID string) bool {
	p.mu.Lock()
	i := slices.IndexFunc(p.resources, func(r *Resources) bool {
		return r.CallerID == callerID
	})
	if i < 0 {
		p.mu.Unlock()
		return false
	}
	r := p.resources[i]
	p.resources = slices.Delete(p.resources, i, i+1)
	p.mu.Unlock()
	if r.Mailbox != nil {
		r.Mailbox.Discard()
	}
	return true
}

func (p *Provided) CallerIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ret := make([]string, 0, len(p.resources))
	for _, r := range p.resources {
		ret = append(ret, r.CallerID)
	}
	return ret
}

// ProcessMailboxes drains each caller's mailbox once, in allocation order.
// Must be called from the owner's thread.
func (p *Provided) ProcessMailboxes() (int, error) {
	p.mu.RLock()
	resources := slices.Clone(p.resources)
	p.mu.RUnlock()
	total := 0
	for _, r := range resources {
		if r.Mailbox == nil {
			continue
		}
		n, err := r.Mailbox.DrainOnce()
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
