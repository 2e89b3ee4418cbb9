package ranging

import (
	"time"

	"github.com/catminator/catminator"
)

// Clock is the part of clockwork.Clock the ranger needs
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Config has the sensor's timing parameters
type Config struct {
	TriggerPulse time.Duration `yaml:"trigger_pulse"`
	PollInterval time.Duration `yaml:"poll_interval"`
	EchoTimeout  time.Duration `yaml:"echo_timeout"`
	PowerSettle  time.Duration `yaml:"power_settle"`
}

// DefaultConfig is tuned for an HC-SR04 style sensor
func DefaultConfig() Config {
	return Config{
		TriggerPulse: 11 * time.Microsecond,
		PollInterval: time.Microsecond,
		EchoTimeout:  100 * time.Millisecond,
		PowerSettle:  10 * time.Millisecond,
	}
}

// Ranger measures echo pulse widths by polling the echo line. It does not use interrupts,
// so it should run on its own goroutine behind a Channel.
type Ranger struct {
	trigger catminator.OutputPin
	echo    catminator.InputPin
	clock   Clock
	cfg     Config
}

func NewRanger(trigger catminator.OutputPin, echo catminator.InputPin, clock Clock, cfg Config) *Ranger {
	trigger.Set(false)
	return &Ranger{
		trigger: trigger,
		echo:    echo,
		clock:   clock,
		cfg:     cfg,
	}
}

// Measure sends a trigger pulse and returns the width of the echo pulse, or
// catminator.NoEcho if the echo did not rise and fall before the timeout
func (r *Ranger) Measure() catminator.Sample {
	r.trigger.Set(true)
	r.clock.Sleep(r.cfg.TriggerPulse)
	r.trigger.Set(false)

	deadline := r.clock.Now().Add(r.cfg.EchoTimeout)

	var start time.Time
	var prev bool
	for {
		now := r.clock.Now()
		if !now.Before(deadline) {
			return catminator.NoEcho
		}

		current := r.echo.Get()
		switch {
		case current && !prev:
			start = now
		case !current && prev:
			return catminator.Sample(now.Sub(start).Microseconds())
		}
		prev = current

		r.clock.Sleep(r.cfg.PollInterval)
	}
}

// PowerSwitch powers the sensor only while it is needed
type PowerSwitch struct {
	pin    catminator.OutputPin
	clock  Clock
	settle time.Duration
}

func NewPowerSwitch(pin catminator.OutputPin, clock Clock, settle time.Duration) *PowerSwitch {
	pin.Set(false)
	return &PowerSwitch{pin: pin, clock: clock, settle: settle}
}

// On powers the sensor and waits for it to start up
func (p *PowerSwitch) On() {
	p.pin.Set(true)
	p.clock.Sleep(p.settle)
}

// Off cuts power and waits for the sensor to discharge
func (p *PowerSwitch) Off() {
	p.pin.Set(false)
	p.clock.Sleep(p.settle)
}
