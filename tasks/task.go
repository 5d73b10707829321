package tasks

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/syncs"
	"github.com/uber-go/tally/v4"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrStartupFailed     = errors.New("startup failed")
	ErrPanic             = errors.New("panic in task thread")
)

// Task is a component with its own thread. Provided interfaces of a task
// are queued: commands from other threads run inside the task's cycle.
type Task struct {
	*Component

	guard         sync.Mutex
	state         atomic.Int32
	changed       chan struct{}
	done          chan struct{}
	threadRunning bool
	binders       []func() error

	startRequested atomic.Bool
	wake           syncs.Signal
	control        syncs.Signal

	tablesMu sync.RWMutex
	table    *statetables.Table
	tables   []*statetables.Table

	ticks    atomic.Uint64
	overruns atomic.Uint64

	cycles         tally.Counter
	overrunCounter tally.Counter
	runErrors      tally.Counter
	cycleTime      tally.Timer

	logger *slog.Logger
}

func New(name string, options ...Option) *Task {
	comp := newComponent(name, interfaces.Queued, options)
	t := &Task{
		Component: comp,
		changed:   make(chan struct{}),
		done:      make(chan struct{}),
		binders:   slices.Clone(comp.config.binders),
		wake:      syncs.NewSignal(),
		control:   syncs.NewSignal(),
		logger:    comp.ctx.Logger(),
	}

	var tableOptions []statetables.Option
	if comp.config.clock != nil {
		tableOptions = append(tableOptions, statetables.WithClock(comp.config.clock))
	}
	t.table = statetables.New(name, comp.config.stateTableSize, tableOptions...)
	t.tables = []*statetables.Table{t.table}

	scope := comp.config.metrics.Tagged(map[string]string{
		"task": name,
	})
	t.cycles = scope.Counter("cycles")
	t.overrunCounter = scope.Counter("overruns")
	t.runErrors = scope.Counter("run_errors")
	t.cycleTime = scope.Timer("cycle_time")

	if comp.config.schedule == SignalDrivenSchedule {
		comp.ctx.SetWake(t.wake.Raise)
	}
	return t
}

func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) Schedule() Schedule {
	return t.config.schedule
}

func (t *Task) Period() time.Duration {
	return t.config.period
}

func (t *Task) setStateLocked(state State) {
	prev := t.State()
	t.state.Store(int32(state))
	close(t.changed)
	t.changed = make(chan struct{})
	t.logger.Debug("state",
		"from", prev.String(),
		"to", state.String(),
	)
}

func (t *Task) transitionLocked(req Request) error {
	cur := t.State()
	next, ok := Next(cur, req)
	if !ok {
		return fmt.Errorf("%w: %s in %s of %s", ErrInvalidTransition, req, cur, t.name)
	}
	t.setStateLocked(next)
	return nil
}

func (t *Task) transition(req Request) error {
	t.guard.Lock()
	defer t.guard.Unlock()
	return t.transitionLocked(req)
}

// AddBinder adds a function run by Create before the thread starts.
func (t *Task) AddBinder(fn func() error) {
	t.guard.Lock()
	defer t.guard.Unlock()
	t.binders = append(t.binders, fn)
}

// Create binds required interfaces, starts the thread and waits for the
// startup hook. On failure the task stays initializing and Create may be
// called again.
func (t *Task) Create() error {
	t.guard.Lock()
	if t.threadRunning {
		t.guard.Unlock()
		return fmt.Errorf("%w: %s already has a thread", ErrInvalidTransition, t.name)
	}
	if err := t.transitionLocked(RequestCreate); err != nil {
		t.guard.Unlock()
		return err
	}
	binders := slices.Clone(t.binders)
	t.guard.Unlock()

	for _, bind := range binders {
		if err := bind(); err != nil {
			t.logger.Error("bind", "error", err)
			return fmt.Errorf("bind %s: %w", t.name, err)
		}
	}
	if err := t.checkRequired(); err != nil {
		t.logger.Error("bind", "error", err)
		return err
	}

	t.guard.Lock()
	if t.State() != Initializing {
		t.guard.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, t.name, t.State())
	}
	t.threadRunning = true
	t.guard.Unlock()

	startup := make(chan error, 1)
	go t.run(startup)
	return <-startup
}

// Start requests activation. The thread performs the transition at its next
// iteration.
func (t *Task) Start() {
	switch t.State() {
	case Finishing, Finished:
		t.logger.Warn("start ignored", "state", t.State().String())
		return
	}
	t.startRequested.Store(true)
	t.control.Raise()
}

func (t *Task) Suspend() {
	t.guard.Lock()
	defer t.guard.Unlock()
	t.startRequested.Store(false)
	if t.State() != Active {
		return
	}
	if err := t.transitionLocked(RequestSuspend); err != nil {
		t.logger.Warn("suspend", "error", err)
		return
	}
	t.control.Raise()
}

// Kill is cooperative: a running thread finishes its cycle, runs the cleanup
// hook and then reaches FINISHED.
func (t *Task) Kill() {
	t.guard.Lock()
	defer t.guard.Unlock()
	t.startRequested.Store(false)
	switch state := t.State(); state {
	case Finishing, Finished:
		return
	case Constructed:
		_ = t.transitionLocked(RequestKill)
		close(t.done)
	case Initializing:
		_ = t.transitionLocked(RequestKill)
		if !t.threadRunning {
			_ = t.transitionLocked(RequestCleanupDone)
			close(t.done)
		}
	default:
		_ = t.transitionLocked(RequestKill)
		t.control.Raise()
	}
}

// Reset brings a finished task back to INITIALIZING.
func (t *Task) Reset() error {
	t.guard.Lock()
	defer t.guard.Unlock()
	if err := t.transitionLocked(RequestReset); err != nil {
		return err
	}
	t.done = make(chan struct{})
	t.ticks.Store(0)
	t.overruns.Store(0)
	t.startRequested.Store(false)
	t.wake.Clear()
	t.control.Clear()
	for _, table := range t.StateTables() {
		table.Reset()
	}
	return nil
}

// Release clears the data registration of every state table. Only a task
// that never ran or has finished can be released.
func (t *Task) Release() error {
	t.guard.Lock()
	defer t.guard.Unlock()
	if s := t.State(); s != Constructed && s != Finished {
		return fmt.Errorf("%w: release %s in %s", ErrInvalidTransition, t.Name(), s)
	}
	for _, table := range t.StateTables() {
		table.Cleanup()
	}
	return nil
}

// Done is closed when the task reaches FINISHED.
func (t *Task) Done() <-chan struct{} {
	t.guard.Lock()
	defer t.guard.Unlock()
	return t.done
}

func (t *Task) Join(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.Done():
		return true
	case <-timer.C:
		return false
	}
}

func (t *Task) WaitForState(state State, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		t.guard.Lock()
		cur := t.State()
		changed := t.changed
		t.guard.Unlock()
		if cur == state {
			return true
		}
		select {
		case <-changed:
		case <-timer.C:
			return t.State() == state
		}
	}
}

// Signal wakes a signal-driven task.
func (t *Task) Signal() {
	t.wake.Raise()
}

// Tick is the number of cycles run since creation or reset.
func (t *Task) Tick() uint64 {
	return t.ticks.Load()
}

func (t *Task) Overruns() uint64 {
	return t.overruns.Load()
}

// StateTable is the default state table, advanced every cycle.
func (t *Task) StateTable() *statetables.Table {
	return t.table
}

func (t *Task) AddStateTable(table *statetables.Table) {
	t.tablesMu.Lock()
	defer t.tablesMu.Unlock()
	t.tables = append(t.tables, table)
}

func (t *Task) StateTables() []*statetables.Table {
	t.tablesMu.RLock()
	defer t.tablesMu.RUnlock()
	return slices.Clone(t.tables)
}
