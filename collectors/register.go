package collectors

import (
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/storages"
	"github.com/reusee/mts/tasks"
)

const TypeName = "collector"

// Register adds the collector type to m. The database is opened on first
// use.
func Register(m *managers.Manager, getDB storages.GetDB) error {
	return m.Register(TypeName, func(m *managers.Manager, name string, config managers.Config) (managers.Component, error) {
		var cfg Config
		if err := config.Decode(&cfg); err != nil {
			return nil, err
		}
		db, err := getDB()
		if err != nil {
			return nil, err
		}
		return New(name, m.Process(), db, cfg,
			tasks.Logger(m.Logger()),
			tasks.Metrics(m.Metrics()),
		)
	})
}
