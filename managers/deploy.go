package managers

import (
	"fmt"

	"github.com/reusee/mts/configs"
)

// Deploy creates the components of d from registered types and makes its
// connections. Deferred connections are bound when their consumer is
// created.
func (m *Manager) Deploy(d *configs.Deployment) error {
	for _, spec := range d.Components {
		if _, err := m.CreateComponent(spec.Type, spec.Name, spec.Config); err != nil {
			return err
		}
	}
	for _, conn := range d.Connections {
		if conn.Deferred {
			if err := m.RequestConnection(conn.Consumer, conn.Required, conn.Provider, conn.Provided); err != nil {
				return err
			}
			continue
		}
		if _, err := m.Connect(conn.Consumer, conn.Required, conn.Provider, conn.Provided); err != nil {
			return fmt.Errorf("connect %s.%s to %s.%s: %w", conn.Consumer, conn.Required, conn.Provider, conn.Provided, err)
		}
	}
	m.logger.Info("deployed",
		"components", len(d.Components),
		"connections", len(d.Connections),
	)
	return nil
}
