package managers

import (
	"fmt"
	"sort"
)

// Config is the per-component configuration handed to factories.
type Config interface {
	Decode(target any) error
}

type noConfig struct{}

func (noConfig) Decode(any) error {
	return nil
}

// NoConfig leaves every factory default in place.
var NoConfig Config = noConfig{}

// Factory creates a component of a registered type.
type Factory func(m *Manager, name string, config Config) (Component, error)

func (m *Manager) Register(typeName string, factory Factory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.factories[typeName]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, typeName)
	}
	m.factories[typeName] = factory
	return nil
}

func (m *Manager) TypeNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]string, 0, len(m.factories))
	for name := range m.factories {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func (m *Manager) HasType(typeName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.factories[typeName]
	return ok
}

// CreateComponent builds a component from a registered type and adds it.
func (m *Manager) CreateComponent(typeName, name string, config Config) (Component, error) {
	m.mu.RLock()
	factory, ok := m.factories[typeName]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %v)", ErrUnknownType, typeName, m.TypeNames())
	}
	if config == nil {
		config = NoConfig
	}
	c, err := factory(m, name, config)
	if err != nil {
		return nil, fmt.Errorf("create %s of type %s: %w", name, typeName, err)
	}
	if err := m.AddComponent(c); err != nil {
		return nil, err
	}
	return c, nil
}
