package debugs

import (
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/mts/logs"
	"github.com/reusee/mts/managers"
)

type Module struct {
	dscope.Module
	Logs     logs.Module
	Managers managers.Module
}

func (Module) Console(
	manager *managers.Manager,
	tap Tap,
) *Console {
	return NewConsole(manager, tap, os.Stdout)
}
