package storages

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}

type DBPath string

func (Module) DBPath(
	loader configs.Loader,
) DBPath {
	if path := configs.First[string](loader, "collector_db"); path != "" {
		return DBPath(path)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return DBPath(filepath.Join(dir, "mts", "samples.db"))
}

type GetDB func() (*DB, error)

func (Module) GetDB(
	path DBPath,
	logger logs.Logger,
) GetDB {
	return sync.OnceValues(func() (*DB, error) {
		db, err := Open(string(path))
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "path", path)
		return db, nil
	})
}
