package managers

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/mts/interfaces"
)

// RemoteConnection is the bookkeeping of a connection that crosses the
// process boundary. On the provider side it owns resources allocated for a
// remote caller.
type RemoteConnection struct {
	ID            uuid.UUID `json:"id"`
	IsProvider    bool      `json:"is_provider"`
	ClientProcess string    `json:"client_process"`
	Consumer      string    `json:"consumer"`
	Required      string    `json:"required"`
	ServerProcess string    `json:"server_process"`
	Provider      string    `json:"provider"`
	Provided      string    `json:"provided"`
	CallerID      string    `json:"caller_id"`
	Established   bool      `json:"established"`
	CreatedAt     time.Time `json:"created_at"`
}

func (m *Manager) IsRegisteredProvidedInterface(component, provided string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[component]
	if !ok {
		return false
	}
	return c.Provided(provided) != nil
}

// GetProvidedInterfaceAccessInfo describes a provided interface for a peer
// that builds a proxy of it.
func (m *Manager) GetProvidedInterfaceAccessInfo(component, provided string) (interfaces.AccessInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[component]
	if !ok {
		return interfaces.AccessInfo{}, fmt.Errorf("%w: %s", ErrComponentNotFound, component)
	}
	p := c.Provided(provided)
	if p == nil {
		return interfaces.AccessInfo{}, fmt.Errorf("%w: provided %s of %s", interfaces.ErrInterfaceNotFound, provided, component)
	}
	info := p.AccessInfo()
	info.Process = m.process
	return info, nil
}

// AllocateRemoteResources is the provider side of a remote connection: it
// allocates execution resources for a remote caller. The connection stays
// tentative until NotifyInterfaceConnectionResult.
func (m *Manager) AllocateRemoteResources(clientProcess, consumer, required, component, provided string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inited {
		return uuid.Nil, ErrNotInitialized
	}
	c, ok := m.components[component]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrComponentNotFound, component)
	}
	p := c.Provided(provided)
	if p == nil {
		return uuid.Nil, fmt.Errorf("%w: provided %s of %s", interfaces.ErrInterfaceNotFound, provided, component)
	}
	callerID := clientProcess + ":" + consumer + "." + required
	if _, err := p.AllocateResources(callerID); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		p.ReleaseResources(callerID)
		return uuid.Nil, err
	}
	m.remotes = append(m.remotes, &RemoteConnection{
		ID:            id,
		IsProvider:    true,
		ClientProcess: clientProcess,
		Consumer:      consumer,
		Required:      required,
		ServerProcess: m.process,
		Provider:      component,
		Provided:      provided,
		CallerID:      callerID,
		CreatedAt:     time.Now(),
	})
	return id, nil
}

// AddRemoteConnection records the consumer side of a remote connection.
func (m *Manager) AddRemoteConnection(id uuid.UUID, consumer, required, serverProcess, provider, provided string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inited {
		return ErrNotInitialized
	}
	m.remotes = append(m.remotes, &RemoteConnection{
		ID:            id,
		ClientProcess: m.process,
		Consumer:      consumer,
		Required:      required,
		ServerProcess: serverProcess,
		Provider:      provider,
		Provided:      provided,
		CreatedAt:     time.Now(),
	})
	return nil
}

// NotifyInterfaceConnectionResult settles a tentative remote connection.
// The endpoint names must match the ones recorded for id.
// A failure drops the bookkeeping and releases the resources allocated on
// the provider side.
func (m *Manager) NotifyInterfaceConnectionResult(isProvider, success bool, id uuid.UUID, consumer, required, provider, provided string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.remotes, func(r *RemoteConnection) bool {
		return r.ID == id && r.IsProvider == isProvider
	})
	if i < 0 {
		return fmt.Errorf("%w: remote %s", ErrConnectionNotFound, id)
	}
	r := m.remotes[i]
	if r.Consumer != consumer || r.Required != required ||
		r.Provider != provider || r.Provided != provided {
		return fmt.Errorf("%w: remote %s is %s.%s -> %s.%s, got %s.%s -> %s.%s",
			ErrRemoteMismatch, id,
			r.Consumer, r.Required, r.Provider, r.Provided,
			consumer, required, provider, provided,
		)
	}
	if success {
		if r.Established {
			return fmt.Errorf("%w: %s", ErrRemoteAlreadyDecided, id)
		}
		r.Established = true
		m.logger.Info("remote connection established",
			"id", id.String(),
			"provider", isProvider,
		)
		return nil
	}
	if isProvider {
		if c, ok := m.components[r.Provider]; ok {
			if p := c.Provided(r.Provided); p != nil {
				p.ReleaseResources(r.CallerID)
			}
		}
	}
	m.remotes = slices.Delete(m.remotes, i, i+1)
	m.logger.Warn("remote connection failed",
		"id", id.String(),
		"provider", isProvider,
	)
	return nil
}

func (m *Manager) RemoteConnections() []RemoteConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]RemoteConnection, 0, len(m.remotes))
	for _, r := range m.remotes {
		ret = append(ret, *r)
	}
	return ret
}
