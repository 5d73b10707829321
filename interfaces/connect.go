package interfaces

import (
	"fmt"

	"github.com/reusee/mts/commands"
)

// Connect binds every function of required to the same-named command of
// provided and subscribes its event handlers. Either all bindings are made
// or none.
func Connect(required *Required, provided *Provided) error {
	required.mu.Lock()
	defer required.mu.Unlock()
	if required.provided != nil {
		return fmt.Errorf("%w: %s to %s", ErrAlreadyConnected, required.name, required.provided.name)
	}

	type pending struct {
		function *Function
		command  *commands.Command
		handle   commands.Handle
	}
	var bindings []pending
	for _, name := range required.order {
		f := required.functions[name]
		cmd := provided.Command(name)
		if cmd == nil {
			return fmt.Errorf("%w: command %s in %s", ErrInterfaceNotFound, name, provided.name)
		}
		if cmd.Kind() != f.kind {
			return fmt.Errorf("%w: %s is %s, required %s", ErrKindMismatch, name, cmd.Kind(), f.kind)
		}
		if !cmd.ArgumentPrototype().Compatible(f.argument) ||
			!cmd.ResultPrototype().Compatible(f.result) {
			return fmt.Errorf("%w: %s", ErrPrototypeMismatch, name)
		}
		bindings = append(bindings, pending{
			function: f,
			command:  cmd,
			handle:   provided.handle(name),
		})
	}

	var subscriptions []subscription
	for _, name := range required.handlerOrder {
		h := required.handlers[name]
		ev := provided.event(name)
		if ev == nil {
			required.owner.Logger().Warn("no event for handler",
				"interface", required.name,
				"provided", provided.name,
				"event", name,
			)
			continue
		}
		if ev.kind != h.command.Kind() {
			return fmt.Errorf("%w: event %s", ErrKindMismatch, name)
		}
		if !ev.proto.Compatible(h.command.ArgumentPrototype()) {
			return fmt.Errorf("%w: event %s", ErrPrototypeMismatch, name)
		}
		subscriptions = append(subscriptions, subscription{
			event:   ev,
			handler: h,
		})
	}

	// resources are allocated only when every binding is valid
	resources, err := provided.AllocateResources(required.CallerID())
	if err != nil {
		return err
	}

	mailbox := resources.Mailbox
	if required.owner == provided.owner {
		mailbox = nil
	}
	for _, b := range bindings {
		b.function.binding.Store(&binding{
			command: b.command,
			handle:  b.handle,
			mailbox: mailbox,
		})
	}
	for _, s := range subscriptions {
		s.event.subscribe(s.handler)
	}
	required.subscriptions = subscriptions
	required.provided = provided
	required.resources = resources

	required.owner.Logger().Debug("connected",
		"interface", required.name,
		"provider", provided.owner.Name(),
		"provided", provided.name,
	)
	return nil
}

// Disconnect unbinds required and releases its resources on the provider.
func Disconnect(required *Required) error {
	required.mu.Lock()
	defer required.mu.Unlock()
	if required.provided == nil {
		return fmt.Errorf("%w: %s", ErrNotConnected, required.name)
	}
	for _, f := range required.functions {
		f.binding.Store(nil)
	}
	for _, s := range required.subscriptions {
		s.event.unsubscribe(s.handler)
	}
	required.subscriptions = nil
	required.provided.ReleaseResources(required.resources.CallerID)
	required.provided = nil
	required.resources = nil
	return nil
}
