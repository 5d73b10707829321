package interfaces

// CommandInfo describes one command for remote peers.
type CommandInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Argument string `json:"argument"`
	Result   string `json:"result"`
}

type EventInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Argument string `json:"argument"`
}

// AccessInfo is what a peer needs to create a proxy of a provided interface.
type AccessInfo struct {
	Process   string        `json:"process"`
	Component string        `json:"component"`
	Interface string        `json:"interface"`
	Policy    string        `json:"policy"`
	Format    string        `json:"format"`
	Commands  []CommandInfo `json:"commands"`
	Events    []EventInfo   `json:"events"`
}

func (p *Provided) AccessInfo() AccessInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	info := AccessInfo{
		Component: p.owner.Name(),
		Interface: p.name,
		Policy:    p.policy.String(),
		Format:    p.format,
	}
	for _, name := range p.order {
		cmd := p.commands[name]
		info.Commands = append(info.Commands, CommandInfo{
			Name:     name,
			Kind:     cmd.Kind().String(),
			Argument: cmd.ArgumentPrototype().Name(),
			Result:   cmd.ResultPrototype().Name(),
		})
	}
	for _, name := range p.eventOrder {
		ev := p.events[name]
		info.Events = append(info.Events, EventInfo{
			Name:     name,
			Kind:     ev.kind.String(),
			Argument: ev.proto.Name(),
		})
	}
	return info
}
