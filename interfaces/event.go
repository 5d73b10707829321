package interfaces

import (
	"fmt"
	"slices"
	"sync"

	"github.com/reusee/mts/commands"
	"github.com/reusee/mts/values"
)

type event struct {
	name     string
	kind     commands.Kind
	proto    values.Prototype
	provided *Provided

	mu       sync.RWMutex
	handlers []*EventHandler
}

func (p *Provided) addEvent(name string, kind commands.Kind, proto values.Prototype) (*event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.events[name]; ok {
		return nil, fmt.Errorf("%w: event %s in %s", ErrDuplicate, name, p.name)
	}
	if _, ok := p.commands[name]; ok {
		return nil, fmt.Errorf("%w: event %s in %s", ErrDuplicate, name, p.name)
	}
	ev := &event{
		name:     name,
		kind:     kind,
		proto:    proto,
		provided: p,
	}
	p.events[name] = ev
	p.eventOrder = append(p.eventOrder, name)
	return ev, nil
}

func (p *Provided) event(name string) *event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.events[name]
}

// AddEventVoid declares a void event and returns its trigger.
func (p *Provided) AddEventVoid(name string) (func(), error) {
	ev, err := p.addEvent(name, commands.Void, values.Prototype{})
	if err != nil {
		return nil, err
	}
	return func() {
		ev.trigger(values.Void())
	}, nil
}

// AddEventWrite declares an event carrying a payload and returns its trigger.
func AddEventWrite[T any](p *Provided, name string) (func(T), error) {
	ev, err := p.addEvent(name, commands.Write, values.PrototypeOf[T]())
	if err != nil {
		return nil, err
	}
	return func(v T) {
		ev.trigger(values.New(v))
	}, nil
}

func (e *event) subscribe(h *EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, h)
}

func (e *event) unsubscribe(h *EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = slices.DeleteFunc(e.handlers, func(x *EventHandler) bool {
		return x == h
	})
}

func (e *event) trigger(arg values.Value) {
	e.mu.RLock()
	handlers := slices.Clone(e.handlers)
	e.mu.RUnlock()
	for _, h := range handlers {
		h.deliver(arg, e.provided.owner)
	}
}
