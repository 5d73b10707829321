package components

import (
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/tasks"
)

func options(m *managers.Manager) []tasks.Option {
	return []tasks.Option{
		tasks.Logger(m.Logger()),
		tasks.Metrics(m.Metrics()),
	}
}

// Register adds the stock component types to m.
func Register(m *managers.Manager) error {
	if err := m.Register(SineType, func(m *managers.Manager, name string, config managers.Config) (managers.Component, error) {
		var c SineConfig
		if err := config.Decode(&c); err != nil {
			return nil, err
		}
		return NewSine(name, c, options(m)...)
	}); err != nil {
		return err
	}
	return m.Register(WatcherType, func(m *managers.Manager, name string, config managers.Config) (managers.Component, error) {
		var c WatcherConfig
		if err := config.Decode(&c); err != nil {
			return nil, err
		}
		return NewWatcher(name, c, options(m)...)
	})
}
