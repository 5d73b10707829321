package interfaces

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/mailboxes"
	"github.com/reusee/mts/values"
)

const DefaultTimeout = time.Second

// Required is a named set of function placeholders and event handlers a
// component needs from a provider.
type Required struct {
	name       string
	owner      *Context
	optional   bool
	direct     bool
	eventTable *commands.Table
	events     *mailboxes.Mailbox

	mu            sync.RWMutex
	functions     map[string]*Function
	order         []string
	handlers      map[string]*EventHandler
	handlerOrder  []string
	provided      *Provided
	resources     *Resources
	subscriptions []subscription
}

type subscription struct {
	event   *event
	handler *EventHandler
}

type RequiredOption func(*Required)

// Optional marks an interface that may stay unconnected.
func Optional() RequiredOption {
	return func(r *Required) {
		r.optional = true
	}
}

// DirectEvents runs event handlers on the thread raising the event. Used by
// components without a thread of their own.
func DirectEvents() RequiredOption {
	return func(r *Required) {
		r.direct = true
	}
}

// EventMailboxSize sets the capacity of the event mailbox.
func EventMailboxSize(n int) RequiredOption {
	return func(r *Required) {
		r.events = r.newEventMailbox(n)
	}
}

func NewRequired(name string, owner *Context, options ...RequiredOption) *Required {
	ret := &Required{
		name:       name,
		owner:      owner,
		eventTable: commands.NewTable(),
		functions:  make(map[string]*Function),
		handlers:   make(map[string]*EventHandler),
	}
	ret.events = ret.newEventMailbox(DefaultMailboxSize)
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (r *Required) newEventMailbox(n int) *mailboxes.Mailbox {
	return mailboxes.New(
		r.owner.Name()+"."+r.name+"/events",
		n,
		r.eventTable,
		mailboxes.OnEnqueue(r.owner.Wake),
		mailboxes.WithMetrics(r.owner.Metrics()),
	)
}

func (r *Required) Name() string {
	return r.name
}

func (r *Required) Owner() *Context {
	return r.owner
}

func (r *Required) IsOptional() bool {
	return r.optional
}

// CallerID identifies this interface to providers.
func (r *Required) CallerID() string {
	return r.owner.Name() + "." + r.name
}

// AddPlaceholder declares a function to be bound at Connect.
func (r *Required) AddPlaceholder(name string, kind commands.Kind, argument, result values.Prototype) (*Function, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.functions[name]; ok {
		return nil, fmt.Errorf("%w: function %s in %s", ErrDuplicate, name, r.name)
	}
	f := &Function{
		name:     name,
		kind:     kind,
		argument: argument,
		result:   result,
		timeout:  DefaultTimeout,
	}
	r.functions[name] = f
	r.order = append(r.order, name)
	return f, nil
}

func (r *Required) AddFunctionVoid(name string) (*Function, error) {
	return r.AddPlaceholder(name, commands.Void, values.Prototype{}, values.Prototype{})
}

func AddFunctionRead[R any](r *Required, name string) (*Function, error) {
	return r.AddPlaceholder(name, commands.Read, values.Prototype{}, values.PrototypeOf[R]())
}

func AddFunctionWrite[A any](r *Required, name string) (*Function, error) {
	return r.AddPlaceholder(name, commands.Write, values.PrototypeOf[A](), values.Prototype{})
}

func AddFunctionQualifiedRead[A, R any](r *Required, name string) (*Function, error) {
	return r.AddPlaceholder(name, commands.QualifiedRead, values.PrototypeOf[A](), values.PrototypeOf[R]())
}

func (r *Required) Function(name string) *Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.functions[name]
}

func (r *Required) FunctionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// EventHandler receives events of the connected provider. Handlers run on
// the owner's thread.
type EventHandler struct {
	name     string
	command  *commands.Command
	handle   commands.Handle
	required *Required
}

func (r *Required) addHandler(cmd *commands.Command) (*EventHandler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[cmd.Name()]; ok {
		return nil, fmt.Errorf("%w: event handler %s in %s", ErrDuplicate, cmd.Name(), r.name)
	}
	h := &EventHandler{
		name:     cmd.Name(),
		command:  cmd,
		handle:   r.eventTable.Add(cmd),
		required: r,
	}
	r.handlers[h.name] = h
	r.handlerOrder = append(r.handlerOrder, h.name)
	return h, nil
}

func (r *Required) AddEventHandlerVoid(name string, fn func() error) (*EventHandler, error) {
	return r.addHandler(commands.NewVoid(name, fn))
}

func AddEventHandlerWrite[T any](r *Required, name string, fn func(T) error) (*EventHandler, error) {
	return r.addHandler(commands.NewWrite(name, fn))
}

func (h *EventHandler) Name() string {
	return h.name
}

func (h *EventHandler) deliver(arg values.Value, source *Context) {
	if h.required.owner == source || h.required.direct {
		if res := h.command.Execute(arg, nil); !res.OK() {
			h.required.owner.Logger().Warn("event handler",
				"interface", h.required.name,
				"event", h.name,
				"result", res.String(),
			)
		}
		return
	}
	if res := h.required.events.Enqueue(mailboxes.NewEntry(h.handle, arg, nil)); !res.OK() {
		h.required.owner.Logger().Warn("event dropped",
			"interface", h.required.name,
			"event", h.name,
			"result", res.String(),
		)
	}
}

// ProcessEventMailbox runs queued event handlers. Must be called from the
// owner's thread.
func (r *Required) ProcessEventMailbox() (int, error) {
	return r.events.DrainOnce()
}

func (r *Required) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.provided != nil
}

// Provided returns the connected provided interface or nil.
func (r *Required) Provided() *Provided {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.provided
}
