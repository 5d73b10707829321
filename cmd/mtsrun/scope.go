package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/debugs"
	"github.com/reusee/mts/modes"
	"github.com/reusee/mts/remotes"
	"github.com/reusee/mts/storages"
	"github.com/spf13/viper"
)

type Module struct {
	dscope.Module
	Remotes  remotes.Module
	Debugs   debugs.Module
	Storages storages.Module
}

func newScope(settings *viper.Viper) dscope.Scope {
	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	if files := settings.GetStringSlice(keyConfig); len(files) > 0 {
		scope = scope.Fork(func() configs.Files {
			return files
		})
	}
	if path := settings.GetString(keyDB); path != "" {
		scope = scope.Fork(func() storages.DBPath {
			return storages.DBPath(path)
		})
	}
	if addr := settings.GetString(keyListen); addr != "" {
		scope = scope.Fork(func() remotes.ListenAddr {
			return remotes.ListenAddr(addr)
		})
	}
	return scope
}
