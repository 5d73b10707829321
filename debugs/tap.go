package debugs

import (
	"context"
	"maps"
	"slices"

	"github.com/reusee/mts/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
)

// Tap opens an interactive starlark session over globals, reading from
// stdin until EOF. Builtins reach ctx through the "context" thread local.
type Tap func(ctx context.Context, what string, globals map[string]any)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) {
		names := slices.Sorted(maps.Keys(globals))
		logger.InfoContext(ctx, "tap: "+what,
			"globals", names,
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		mappings := make(starlark.StringDict, len(globals))
		for name, value := range globals {
			mappings[name] = toStarlarkValue(value)
		}

		thread := &starlark.Thread{
			Name: what,
		}
		thread.SetLocal("context", ctx)
		repl.REPLOptions(fileOptions, thread, mappings)
	}
}
