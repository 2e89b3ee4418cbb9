// Package pi runs the deterrent on a Raspberry Pi using periph.io drivers.
package pi

import (
	"context"
	"fmt"
	"time"

	"github.com/catminator/catminator"
	"github.com/catminator/catminator/gate"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Output adapts a periph output pin to catminator.OutputPin
type Output struct {
	pin gpio.PinOut
	log catminator.Logger
}

func NewOutput(pin gpio.PinOut, log catminator.Logger) Output {
	return Output{pin: pin, log: log}
}

func (o Output) Set(high bool) {
	err := o.pin.Out(gpio.Level(high))
	if err != nil {
		o.log.Log(fmt.Sprintf("error setting %s: %v", o.pin.Name(), err))
	}
}

// Input adapts a periph input pin to catminator.InputPin
type Input struct {
	pin gpio.PinIn
}

// NewInput configures pin as a pulled-down input without edge detection
func NewInput(pin gpio.PinIn) (Input, error) {
	err := pin.In(gpio.PullDown, gpio.NoEdge)
	if err != nil {
		return Input{}, fmt.Errorf("error configuring %s: %w", pin.Name(), err)
	}
	return Input{pin: pin}, nil
}

func (i Input) Get() bool {
	return i.pin.Read() == gpio.High
}

// Button feeds the rising edges of a pin into a gate
type Button struct {
	pin   gpio.PinIn
	gate  *gate.Gate
	clock clockwork.Clock
}

// NewButton configures pin for rising edge detection
func NewButton(pin gpio.PinIn, g *gate.Gate, clock clockwork.Clock) (*Button, error) {
	err := pin.In(gpio.PullDown, gpio.RisingEdge)
	if err != nil {
		return nil, fmt.Errorf("error configuring %s: %w", pin.Name(), err)
	}
	return &Button{pin: pin, gate: g, clock: clock}, nil
}

// Run waits for edges until ctx is done
func (b *Button) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if b.pin.WaitForEdge(100 * time.Millisecond) {
			b.gate.Edge(b.clock.Now())
		}
	}
}

// PinNames are the periph names of the pins, like "GPIO17"
type PinNames struct {
	Trigger       string `yaml:"trigger"`
	Echo          string `yaml:"echo"`
	SensorPower   string `yaml:"sensor_power"`
	Forward       string `yaml:"forward"`
	Reverse       string `yaml:"reverse"`
	CancelButton  string `yaml:"cancel_button"`
	TriggerButton string `yaml:"trigger_button"`
	StatusLED     string `yaml:"status_led"`
}

// Pins are the resolved pins. TriggerButton may be nil
type Pins struct {
	Trigger       gpio.PinIO
	Echo          gpio.PinIO
	SensorPower   gpio.PinIO
	Forward       gpio.PinIO
	Reverse       gpio.PinIO
	CancelButton  gpio.PinIO
	TriggerButton gpio.PinIO
	StatusLED     gpio.PinIO
}

// ResolvePins looks up every named pin in the gpio registry
func ResolvePins(names PinNames) (Pins, error) {
	var pins Pins
	for _, p := range []struct {
		name     string
		dst      *gpio.PinIO
		optional bool
	}{
		{names.Trigger, &pins.Trigger, false},
		{names.Echo, &pins.Echo, false},
		{names.SensorPower, &pins.SensorPower, false},
		{names.Forward, &pins.Forward, false},
		{names.Reverse, &pins.Reverse, false},
		{names.CancelButton, &pins.CancelButton, false},
		{names.TriggerButton, &pins.TriggerButton, true},
		{names.StatusLED, &pins.StatusLED, false},
	} {
		if p.name == "" && p.optional {
			continue
		}
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			return Pins{}, fmt.Errorf("unknown pin %q", p.name)
		}
		*p.dst = pin
	}
	return pins, nil
}
