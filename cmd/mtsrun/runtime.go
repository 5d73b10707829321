package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/reusee/mts/collectors"
	"github.com/reusee/mts/components"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/debugs"
	"github.com/reusee/mts/logs"
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/remotes"
	"github.com/reusee/mts/storages"
	"github.com/spf13/viper"
)

// deployed is a running deployment handed to commands.
type deployed struct {
	deployment *configs.Deployment
	manager    *managers.Manager
	console    *debugs.Console
	logger     logs.Logger
}

func loadDeployment(loader configs.Loader, settings *viper.Viper) (*configs.Deployment, error) {
	d, err := configs.LoadDeployment(loader)
	if err != nil {
		return nil, err
	}
	level := d.LogLevel
	if l := settings.GetString(keyLogLevel); l != "" {
		level = l
	}
	if err := logs.SetLevel(level); err != nil {
		return nil, err
	}
	return d, nil
}

func register(manager *managers.Manager, getDB storages.GetDB) error {
	if err := components.Register(manager); err != nil {
		return err
	}
	return collectors.Register(manager, getDB)
}

// withDeployment deploys, creates and starts the components of the
// configured deployment, serves the remote surface if a listen address is
// set, and calls fn. Everything is torn down after fn returns.
func withDeployment(ctx context.Context, settings *viper.Viper, fn func(*deployed) error) (err error) {
	newScope(settings).Call(func(
		loader configs.Loader,
		manager *managers.Manager,
		getDB storages.GetDB,
		server *remotes.Server,
		listen remotes.ListenAddr,
		maxConns remotes.MaxConns,
		peers remotes.Peers,
		getPeer remotes.GetPeer,
		console *debugs.Console,
		logger logs.Logger,
	) {
		err = func() (err error) {
			d, err := loadDeployment(loader, settings)
			if err != nil {
				return err
			}
			if err := manager.Init(); err != nil {
				return err
			}

			var opened atomic.Bool
			defer func() {
				if !opened.Load() {
					return
				}
				if db, e := getDB(); e == nil {
					err = errors.Join(err, db.Close())
				}
			}()
			if err := register(manager, func() (*storages.DB, error) {
				opened.Store(true)
				return getDB()
			}); err != nil {
				return err
			}

			defer func() {
				if e := manager.Shutdown(settings.GetDuration(keyShutdown)); e != nil {
					err = errors.Join(err, e)
				}
			}()
			if err := manager.Deploy(d); err != nil {
				return err
			}
			if err := manager.CreateAll(); err != nil {
				return err
			}
			manager.StartAll()

			if listen != "" {
				listener, e := net.Listen("tcp", string(listen))
				if e != nil {
					return fmt.Errorf("listen %s: %w", listen, e)
				}
				serveCtx, stop := context.WithCancel(ctx)
				done := make(chan error, 1)
				go func() {
					done <- server.Serve(serveCtx, listener, int(maxConns))
				}()
				defer func() {
					stop()
					err = errors.Join(err, <-done)
				}()
			}

			for name := range peers {
				client, e := getPeer(name)
				if e != nil {
					logger.Warn("peer", "name", name, "error", e)
					continue
				}
				process, e := client.Process(ctx)
				if e != nil {
					logger.Warn("peer unreachable", "name", name, "base", client.Base(), "error", e)
					continue
				}
				logger.Info("peer reachable", "name", name, "process", process)
			}

			return fn(&deployed{
				deployment: d,
				manager:    manager,
				console:    console,
				logger:     logger,
			})
		}()
	})
	return
}
