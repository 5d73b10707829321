package debugs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/tasks"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Console exposes manager operations to Starlark scripts.
type Console struct {
	manager *managers.Manager
	tap     Tap
	out     io.Writer
}

func NewConsole(manager *managers.Manager, tap Tap, out io.Writer) *Console {
	return &Console{
		manager: manager,
		tap:     tap,
		out:     out,
	}
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Exec runs a script. src is as for starlark.ExecFile.
func (c *Console) Exec(ctx context.Context, filename string, src any) error {
	thread := &starlark.Thread{
		Name: "console",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(c.out, msg)
		},
	}
	thread.SetLocal("context", ctx)
	_, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, c.Builtins())
	return err
}

// REPL reads statements from stdin until EOF.
func (c *Console) REPL(ctx context.Context) {
	globals := make(map[string]any)
	for name, value := range c.Builtins() {
		globals[name] = value
	}
	globals["process"] = c.manager.Process
	globals["types"] = c.manager.TypeNames
	c.tap(ctx, "console", globals)
}

type builtinFunc = func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

func (c *Console) Builtins() starlark.StringDict {
	ret := make(starlark.StringDict)
	for name, fn := range map[string]builtinFunc{
		"components":  c.components,
		"state":       c.state,
		"connect":     c.connect,
		"disconnect":  c.disconnect,
		"connections": c.connections,
		"create":      c.create,
		"create_all":  c.createAll,
		"start_all":   c.startAll,
		"kill_all":    c.killAll,
		"wait":        c.wait,
		"access_info": c.accessInfo,
		"tick":        c.tick,
		"latest":      c.latest,
		"columns":     c.columns,
		"sleep":       c.sleep,
	} {
		ret[name] = starlark.NewBuiltin(name, fn)
	}
	return ret
}

func stringList(ss []string) *starlark.List {
	elems := make([]starlark.Value, 0, len(ss))
	for _, s := range ss {
		elems = append(elems, starlark.String(s))
	}
	return starlark.NewList(elems)
}

func (c *Console) component(name string) (managers.Component, error) {
	comp, ok := c.manager.GetComponent(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", managers.ErrComponentNotFound, name)
	}
	return comp, nil
}

func (c *Console) components(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return stringList(c.manager.ComponentNames()), nil
}

func (c *Console) state(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	comp, err := c.component(name)
	if err != nil {
		return nil, err
	}
	l, ok := comp.(managers.Lifecycle)
	if !ok {
		return starlark.String("passive"), nil
	}
	return starlark.String(l.State().String()), nil
}

func (c *Console) connect(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var consumer, required, provider, provided string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"consumer", &consumer,
		"required", &required,
		"provider", &provider,
		"provided", &provided,
	); err != nil {
		return nil, err
	}
	id, err := c.manager.Connect(consumer, required, provider, provided)
	if err != nil {
		return nil, err
	}
	return starlark.String(id.String()), nil
}

func (c *Console) disconnect(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &s); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	if err := c.manager.Disconnect(id); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (c *Console) connections(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	var ret []string
	for _, conn := range c.manager.Connections() {
		ret = append(ret, conn.String())
	}
	return stringList(ret), nil
}

func (c *Console) create(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var typeName, name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "type", &typeName, "name", &name); err != nil {
		return nil, err
	}
	if _, err := c.manager.CreateComponent(typeName, name, managers.NoConfig); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (c *Console) createAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	if err := c.manager.CreateAll(); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (c *Console) startAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	c.manager.StartAll()
	return starlark.None, nil
}

func (c *Console) killAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	c.manager.KillAll()
	return starlark.None, nil
}

func (c *Console) wait(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var stateName string
	timeoutMS := 1000
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "state", &stateName, "timeout_ms?", &timeoutMS); err != nil {
		return nil, err
	}
	state, err := tasks.ParseState(stateName)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(c.manager.WaitForStateAll(state, time.Duration(timeoutMS)*time.Millisecond)), nil
}

func (c *Console) accessInfo(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var component, provided string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "component", &component, "provided", &provided); err != nil {
		return nil, err
	}
	info, err := c.manager.GetProvidedInterfaceAccessInfo(component, provided)
	if err != nil {
		return nil, err
	}
	return convertToStarlark(info)
}

func (c *Console) tick(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	comp, err := c.component(name)
	if err != nil {
		return nil, err
	}
	t, ok := comp.(interface{ Tick() uint64 })
	if !ok {
		return nil, fmt.Errorf("%s has no thread", name)
	}
	return starlark.MakeUint64(t.Tick()), nil
}

func (c *Console) table(name string) (*statetables.Table, error) {
	comp, err := c.component(name)
	if err != nil {
		return nil, err
	}
	t, ok := comp.(interface{ StateTable() *statetables.Table })
	if !ok {
		return nil, fmt.Errorf("%s has no state table", name)
	}
	return t.StateTable(), nil
}

func (c *Console) latest(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, column string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "component", &name, "column", &column); err != nil {
		return nil, err
	}
	table, err := c.table(name)
	if err != nil {
		return nil, err
	}
	index, ok := table.ReaderIndex()
	if !ok {
		return starlark.None, nil
	}
	v, err := table.ReadColumn(column, uint64(index))
	if err != nil {
		return nil, err
	}
	return convertToStarlark(v)
}

func (c *Console) columns(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "component", &name); err != nil {
		return nil, err
	}
	table, err := c.table(name)
	if err != nil {
		return nil, err
	}
	return stringList(table.ColumnNames()), nil
}

func (c *Console) sleep(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ms int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ms", &ms); err != nil {
		return nil, err
	}
	ctx, _ := thread.Local("context").(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return starlark.None, nil
}
