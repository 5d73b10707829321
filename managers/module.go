package managers

import (
	"io"
	"os"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/logs"
	"github.com/reusee/mts/modes"
	"github.com/uber-go/tally/v4"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}

type ProcessName string

func (Module) ProcessName(
	loader configs.Loader,
) ProcessName {
	if name := configs.First[string](loader, "process"); name != "" {
		return ProcessName(name)
	}
	if host, err := os.Hostname(); err == nil {
		return ProcessName(host)
	}
	return "mts"
}

type MetricsInterval time.Duration

func (Module) MetricsInterval(
	loader configs.Loader,
) MetricsInterval {
	if s := configs.First[string](loader, "metrics_interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return MetricsInterval(d)
		}
	}
	return MetricsInterval(time.Minute)
}

// Metrics is the root scope of a manager. Development mode uses an
// in-memory scope that tests can snapshot.
type Metrics struct {
	Scope  tally.Scope
	Closer io.Closer
}

func (Module) Metrics(
	mode modes.Mode,
	process ProcessName,
	interval MetricsInterval,
	logger logs.Logger,
) Metrics {
	tags := map[string]string{
		"process": string(process),
	}
	if mode == modes.ModeDevelopment {
		return Metrics{
			Scope: tally.NewTestScope("mts", tags),
		}
	}
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "mts",
		Tags:     tags,
		Reporter: logReporter{logger: logger},
	}, time.Duration(interval))
	return Metrics{
		Scope:  scope,
		Closer: closer,
	}
}

func (Module) Manager(
	process ProcessName,
	logger logs.Logger,
	metrics Metrics,
) *Manager {
	return New(string(process), logger, metrics.Scope, metrics.Closer)
}
