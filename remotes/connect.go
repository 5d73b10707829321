package remotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/managers"
)

// ConnectRemote records a connection from a local required interface to a
// provided interface of a peer. The peer allocates resources for the caller
// and both sides are told the outcome.
func ConnectRemote(ctx context.Context, m *managers.Manager, client *Client, consumer, required, provider, provided string) (uuid.UUID, error) {
	c, ok := m.GetComponent(consumer)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", managers.ErrComponentNotFound, consumer)
	}
	r := c.Required(required)
	if r == nil {
		return uuid.Nil, fmt.Errorf("%w: required %s of %s", interfaces.ErrInterfaceNotFound, required, consumer)
	}

	info, err := client.GetProvidedInterfaceAccessInfo(ctx, provider, provided)
	if err != nil {
		return uuid.Nil, err
	}
	if err := CheckCompatible(r, info); err != nil {
		return uuid.Nil, err
	}

	id, err := client.AllocateRemoteResources(ctx, AllocateRequest{
		ClientProcess: m.Process(),
		Consumer:      consumer,
		Required:      required,
		Component:     provider,
		Provided:      provided,
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := m.AddRemoteConnection(id, consumer, required, info.Process, provider, provided); err != nil {
		return uuid.Nil, errors.Join(err, client.NotifyInterfaceConnectionResult(ctx, true, false, id, consumer, required, provider, provided))
	}
	if err := client.NotifyInterfaceConnectionResult(ctx, true, true, id, consumer, required, provider, provided); err != nil {
		return uuid.Nil, errors.Join(err, m.NotifyInterfaceConnectionResult(false, false, id, consumer, required, provider, provided))
	}
	if err := m.NotifyInterfaceConnectionResult(false, true, id, consumer, required, provider, provided); err != nil {
		return uuid.Nil, err
	}

	m.Logger().InfoContext(ctx, "remote connection",
		"id", id.String(),
		"consumer", consumer,
		"required", required,
		"server", info.Process,
		"provider", provider,
		"provided", provided,
	)
	return id, nil
}

// CheckCompatible reports whether every function of r has a command of the
// same kind and prototypes in info.
func CheckCompatible(r *interfaces.Required, info interfaces.AccessInfo) error {
	byName := make(map[string]interfaces.CommandInfo, len(info.Commands))
	for _, cmd := range info.Commands {
		byName[cmd.Name] = cmd
	}
	var errs []error
	for _, name := range r.FunctionNames() {
		f := r.Function(name)
		cmd, ok := byName[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: no command %s in %s.%s", ErrIncompatible, name, info.Component, info.Interface))
			continue
		}
		if cmd.Kind != f.Kind().String() ||
			cmd.Argument != f.ArgumentPrototype().Name() ||
			cmd.Result != f.ResultPrototype().Name() {
			errs = append(errs, fmt.Errorf("%w: command %s is %s(%s) %s, expecting %s(%s) %s",
				ErrIncompatible, name,
				cmd.Kind, cmd.Argument, cmd.Result,
				f.Kind(), f.ArgumentPrototype().Name(), f.ResultPrototype().Name(),
			))
		}
	}
	return errors.Join(errs...)
}
