package components

import (
	"fmt"
	"math"
	"time"

	"github.com/reusee/mts/collectors"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/statetables"
	"github.com/reusee/mts/tasks"
)

const (
	SineType        = "sine"
	SignalInterface = "Signal"
)

type SineConfig struct {
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
	PeriodMS  int     `json:"period_ms"`
}

func (c *SineConfig) setDefaults() {
	if c.Amplitude == 0 {
		c.Amplitude = 1
	}
	if c.Frequency == 0 {
		c.Frequency = 1
	}
	if c.PeriodMS <= 0 {
		c.PeriodMS = 10
	}
}

// Sine is a periodic task producing amplitude*sin(2*pi*frequency*t), with t
// advancing by one period per cycle.
type Sine struct {
	*tasks.Task
	config SineConfig
	period time.Duration

	step      uint64
	value     float64
	amplitude float64
	wave      *statetables.Accessor[float64]

	zeroCrossing     func()
	amplitudeChanged func(float64)
}

func NewSine(name string, config SineConfig, options ...tasks.Option) (*Sine, error) {
	config.setDefaults()
	s := &Sine{
		config:    config,
		period:    time.Duration(config.PeriodMS) * time.Millisecond,
		amplitude: config.Amplitude,
	}
	s.Task = tasks.New(name, append(options,
		tasks.Periodic(s.period),
		tasks.OnRun(s.run),
	)...)

	var err error
	s.wave, err = statetables.AddData(s.StateTable(), "SineData", &s.value)
	if err != nil {
		return nil, err
	}

	p, err := s.AddProvided(SignalInterface)
	if err != nil {
		return nil, err
	}
	if err := p.AddReadState("Value", s.wave); err != nil {
		return nil, err
	}
	if err := interfaces.AddRead(p, "Amplitude", func(ret *float64) error {
		*ret = s.amplitude
		return nil
	}); err != nil {
		return nil, err
	}
	if err := interfaces.AddWrite(p, "SetAmplitude", func(v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bad amplitude: %v", v)
		}
		s.amplitude = v
		s.amplitudeChanged(v)
		return nil
	}); err != nil {
		return nil, err
	}
	if s.zeroCrossing, err = p.AddEventVoid("ZeroCrossing"); err != nil {
		return nil, err
	}
	if s.amplitudeChanged, err = interfaces.AddEventWrite[float64](p, "AmplitudeChanged"); err != nil {
		return nil, err
	}

	if _, err := collectors.AddSource(s.Task); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sine) run(*tasks.Task) error {
	prev := s.value
	t := float64(s.step) * s.period.Seconds()
	s.value = s.amplitude * math.Sin(2*math.Pi*s.config.Frequency*t)
	s.step++
	if s.step > 1 && (prev < 0) != (s.value < 0) {
		s.zeroCrossing()
	}
	return nil
}

func (s *Sine) Wave() *statetables.Accessor[float64] {
	return s.wave
}
