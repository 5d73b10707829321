package tasks

import (
	"log/slog"
	"time"

	"github.com/uber-go/tally/v4"
)

type Schedule uint8

const (
	SignalDrivenSchedule Schedule = iota
	PeriodicSchedule
	ContinuousSchedule
)

func (s Schedule) String() string {
	switch s {
	case PeriodicSchedule:
		return "periodic"
	case ContinuousSchedule:
		return "continuous"
	}
	return "signal-driven"
}

type Hook func(*Task) error

type config struct {
	schedule       Schedule
	period         time.Duration
	stateTableSize int
	mailboxSize    int
	onStartup      Hook
	onRun          Hook
	onCleanup      Hook
	logger         *slog.Logger
	metrics        tally.Scope
	clock          func() time.Duration
	binders        []func() error
}

func defaultConfig() config {
	return config{
		schedule:       SignalDrivenSchedule,
		stateTableSize: 256,
		mailboxSize:    64,
		logger:         slog.Default(),
		metrics:        tally.NoopScope,
	}
}

// Option configures components and tasks. Options about threads are ignored
// by passive components.
type Option func(*config)

// Periodic runs the task cycle every d. Late cycles are counted as overruns.
func Periodic(d time.Duration) Option {
	return func(c *config) {
		c.schedule = PeriodicSchedule
		c.period = d
	}
}

// SignalDriven runs a cycle whenever a mailbox receives an entry or the
// task is signaled.
func SignalDriven() Option {
	return func(c *config) {
		c.schedule = SignalDrivenSchedule
	}
}

// Continuous runs cycles back to back.
func Continuous() Option {
	return func(c *config) {
		c.schedule = ContinuousSchedule
	}
}

func StateTableSize(n int) Option {
	return func(c *config) {
		c.stateTableSize = n
	}
}

func MailboxSize(n int) Option {
	return func(c *config) {
		c.mailboxSize = n
	}
}

func OnStartup(fn Hook) Option {
	return func(c *config) {
		c.onStartup = fn
	}
}

func OnRun(fn Hook) Option {
	return func(c *config) {
		c.onRun = fn
	}
}

func OnCleanup(fn Hook) Option {
	return func(c *config) {
		c.onCleanup = fn
	}
}

func Logger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func Metrics(scope tally.Scope) Option {
	return func(c *config) {
		c.metrics = scope
	}
}

func Clock(fn func() time.Duration) Option {
	return func(c *config) {
		c.clock = fn
	}
}

// Binder adds a function run by Create before the thread starts. A binder
// error keeps the task initializing.
func Binder(fn func() error) Option {
	return func(c *config) {
		c.binders = append(c.binders, fn)
	}
}
