package components

import (
	"sync/atomic"
	"time"

	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/tasks"
)

const (
	WatcherType = "watcher"
)

type WatcherConfig struct {
	PeriodMS int    `json:"period_ms"`
	Command  string `json:"command"`
	// LogEvery logs one observation every n cycles, never when zero.
	LogEvery int `json:"log_every"`
}

func (c *WatcherConfig) setDefaults() {
	if c.PeriodMS <= 0 {
		c.PeriodMS = 100
	}
	if c.Command == "" {
		c.Command = "Value"
	}
}

// Watcher reads a float64 from its Signal interface every cycle and counts
// the zero crossings it is told about.
type Watcher struct {
	*tasks.Task
	config WatcherConfig

	read     *interfaces.Function
	observed float64
	column   *statetables.Accessor[float64]

	crossings atomic.Int64
	misses    atomic.Int64
	reads     atomic.Int64
}

func NewWatcher(name string, config WatcherConfig, options ...tasks.Option) (*Watcher, error) {
	config.setDefaults()
	w := &Watcher{
		config: config,
	}
	w.Task = tasks.New(name, append(options,
		tasks.Periodic(time.Duration(config.PeriodMS)*time.Millisecond),
		tasks.OnRun(w.run),
	)...)

	var err error
	w.column, err = statetables.AddData(w.StateTable(), "Observed", &w.observed)
	if err != nil {
		return nil, err
	}

	r, err := w.AddRequired(SignalInterface)
	if err != nil {
		return nil, err
	}
	if w.read, err = interfaces.AddFunctionRead[float64](r, config.Command); err != nil {
		return nil, err
	}
	if _, err := r.AddEventHandlerVoid("ZeroCrossing", func() error {
		w.crossings.Add(1)
		return nil
	}); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Watcher) run(*tasks.Task) error {
	v, res := interfaces.Get[float64](w.read)
	if !res.OK() {
		// the provider may not have committed a row yet
		w.misses.Add(1)
		w.Context().Logger().Debug("read", "result", res.String())
		return nil
	}
	w.observed = v
	n := w.reads.Add(1)
	if w.config.LogEvery > 0 && n%int64(w.config.LogEvery) == 0 {
		w.Context().Logger().Info("observed",
			"value", v,
			"crossings", w.crossings.Load(),
		)
	}
	return nil
}

func (w *Watcher) Crossings() int64 {
	return w.crossings.Load()
}

func (w *Watcher) Reads() int64 {
	return w.reads.Load()
}

func (w *Watcher) Misses() int64 {
	return w.misses.Load()
}

func (w *Watcher) Observed() *statetables.Accessor[float64] {
	return w.column
}
