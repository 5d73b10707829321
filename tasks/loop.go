package tasks

import (
	"fmt"
	"time"

	"github.com/reusee/mts/procs"
)

type loop struct {
	task     *Task
	deadline time.Time
}

type proc = procs.Proc[*loop]

func (t *Task) run(startup chan<- error) {
	if err := protect(func() error {
		if t.config.onStartup == nil {
			return nil
		}
		return t.config.onStartup(t)
	}); err != nil {
		t.logger.Error("startup", "error", err)
		t.guard.Lock()
		t.threadRunning = false
		if t.State() == Finishing {
			_ = t.transitionLocked(RequestCleanupDone)
			close(t.done)
		}
		t.guard.Unlock()
		startup <- fmt.Errorf("%w: %s: %w", ErrStartupFailed, t.name, err)
		return
	}

	if err := t.transition(RequestStartupDone); err != nil {
		// killed during startup
		startup <- err
		t.cleanup()
		return
	}
	startup <- nil

	l := &loop{
		task: t,
	}
	if err := procs.Loop(l, proc(procs.Func[*loop](idle))); err != nil {
		t.logger.Error("task stopped", "error", err)
		t.guard.Lock()
		if t.State() != Finishing {
			_ = t.transitionLocked(RequestKill)
		}
		t.guard.Unlock()
	}
	t.cleanup()
}

func protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return fn()
}

func (t *Task) cleanup() {
	if t.config.onCleanup != nil {
		if err := protect(func() error {
			return t.config.onCleanup(t)
		}); err != nil {
			t.logger.Warn("cleanup", "error", err)
		}
	}
	for _, table := range t.StateTables() {
		table.StopCollection()
	}
	t.guard.Lock()
	defer t.guard.Unlock()
	t.threadRunning = false
	if err := t.transitionLocked(RequestCleanupDone); err != nil {
		t.logger.Error("cleanup", "error", err)
	}
	close(t.done)
}

// idle waits in READY for a start request.
func idle(l *loop) (proc, error) {
	t := l.task
	switch t.State() {
	case Finishing:
		return nil, nil
	case Active:
		l.deadline = time.Now()
		return procs.Func[*loop](active), nil
	}
	if t.startRequested.Swap(false) {
		t.guard.Lock()
		err := t.transitionLocked(RequestStart)
		t.guard.Unlock()
		if err != nil {
			return procs.Func[*loop](idle), nil
		}
		l.deadline = time.Now()
		return procs.Func[*loop](active), nil
	}
	t.control.Wait(0)
	return procs.Func[*loop](idle), nil
}

// active runs one cycle and waits for the next one.
func active(l *loop) (proc, error) {
	t := l.task
	if t.State() != Active {
		return procs.Func[*loop](idle), nil
	}
	if err := protect(t.runCycle); err != nil {
		return nil, err
	}
	switch t.config.schedule {
	case PeriodicSchedule:
		l.waitPeriod()
	case SignalDrivenSchedule:
		select {
		case <-t.wake:
		case <-t.control:
		}
	}
	return procs.Func[*loop](active), nil
}

func (l *loop) waitPeriod() {
	t := l.task
	l.deadline = l.deadline.Add(t.config.period)
	now := time.Now()
	if !now.Before(l.deadline) {
		t.overruns.Add(1)
		t.overrunCounter.Inc(1)
		l.deadline = now
		return
	}
	timer := time.NewTimer(l.deadline.Sub(now))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.control:
	}
}

// runCycle is one iteration of an active task: queued commands and events
// first, then the run hook, then the state tables advance.
func (t *Task) runCycle() error {
	start := time.Now()
	tables := t.StateTables()
	for _, table := range tables {
		table.StartIfAutomatic()
	}
	for _, p := range t.providedList() {
		if _, err := p.ProcessMailboxes(); err != nil {
			return err
		}
	}
	for _, r := range t.requiredList() {
		if _, err := r.ProcessEventMailbox(); err != nil {
			return err
		}
	}
	if t.config.onRun != nil {
		if err := t.config.onRun(t); err != nil {
			t.runErrors.Inc(1)
			t.logger.Warn("run", "error", err)
		}
	}
	for _, table := range tables {
		table.AdvanceIfAutomatic()
	}
	t.ticks.Add(1)
	t.cycles.Inc(1)
	t.cycleTime.Record(time.Since(start))
	return nil
}
