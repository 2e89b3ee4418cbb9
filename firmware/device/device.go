//go:build rp2040

package device

import (
	"context"
	"errors"
	"machine"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/catminator/catminator/battery"
	"github.com/catminator/catminator/control"
	"github.com/catminator/catminator/gate"
	"github.com/catminator/catminator/motor"
	"github.com/catminator/catminator/ranging"
	"github.com/jonboulle/clockwork"
)

var errNoData = errors.New("no data")

// Device wires the deterrent's components to the Pico's pins
type Device struct {
	pins    PinConfig
	cfg     Config
	motor   *motor.Controller
	channel *ranging.Channel
	ranger  *ranging.Ranger
	battery *battery.ADCMonitor
	cancel  *gate.Gate
	trigger *gate.Gate
	loop    *control.Loop

	startTime time.Time
	verbose   atomic.Bool
}

// New configures the pins and builds every component
func New(pins PinConfig, cfg Config) (*Device, error) {
	d := &Device{pins: pins, cfg: cfg}

	for _, p := range []machine.Pin{pins.Trigger, pins.SensorPower, pins.Forward, pins.Reverse, pins.StatusLED} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	for _, p := range []machine.Pin{pins.Echo, pins.CancelButton, pins.TriggerButton} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	}

	machine.InitADC()
	adc := machine.ADC{Pin: pins.Battery}
	adc.Configure(machine.ADCConfig{})

	clock := clockwork.NewRealClock()
	log := deviceLog{d}

	d.cancel = gate.New(gate.DefaultDebounce)
	d.trigger = gate.New(gate.DefaultDebounce)
	d.battery = battery.NewADCMonitor(adc, cfg.Battery, log)
	// the status LED is also the running indicator
	d.motor = motor.New(pins.Forward, pins.Reverse, pins.StatusLED, motor.NewAlarmPool(clock, cfg.Motor.AlarmSlots), cfg.Motor, log)
	d.channel = ranging.NewChannel()
	d.ranger = ranging.NewRanger(pins.Trigger, pins.Echo, clock, cfg.Ranging)
	d.loop = control.New(control.Components{
		Motor:     d.motor,
		Ranger:    d.channel,
		Power:     ranging.NewPowerSwitch(pins.SensorPower, clock, cfg.Ranging.PowerSettle),
		Safety:    d.battery,
		Cancel:    d.cancel,
		Trigger:   d.trigger,
		StatusLED: pins.StatusLED,
	}, cfg.Control, clock, log)
	d.motor.OnComplete(d.loop.DriveCompleted)

	err := pins.CancelButton.SetInterrupt(machine.PinRising, func(machine.Pin) {
		d.cancel.Edge(time.Now())
	})
	if err != nil {
		return nil, errors.New("error setting cancel interrupt: " + err.Error())
	}

	err = pins.TriggerButton.SetInterrupt(machine.PinRising, func(machine.Pin) {
		d.trigger.Edge(time.Now())
	})
	if err != nil {
		return nil, errors.New("error setting trigger interrupt: " + err.Error())
	}

	return d, nil
}

// Run starts the ranging worker and runs the control loop until the battery runs low
func (d *Device) Run(ctx context.Context) error {
	d.startTime = time.Now()
	println(d.ts(), "Started...")

	go func() {
		err := d.channel.Serve(ctx, d.ranger)
		if err != nil && !errors.Is(err, context.Canceled) {
			println(d.ts(), "error serving measurements:", err.Error())
		}
	}()

	return d.loop.Run(ctx)
}

// Debug prints the status line
func (d *Device) Debug() {
	println(d.ts(), d.loop.Status().String())
}

// Verbose toggles verbose mode
func (d *Device) Verbose() {
	v := !d.verbose.Load()
	d.verbose.Store(v)
	println(d.ts(), "Verbose:", v)
}

// Battery prints the current battery voltage
func (d *Device) Battery() {
	println(d.ts(), "Battery:", strconv.FormatFloat(float64(d.battery.Voltage()), 'f', 2, 32)+"V")
}

// Cancel presses the cancel button in software
func (d *Device) Cancel() {
	d.cancel.Edge(time.Now())
}

// TestDrive schedules a drive without waiting for a target
func (d *Device) TestDrive() error {
	return d.motor.ScheduleDrive(d.cfg.Control.DriveDelay)
}

func (d *Device) SetThreshold(cm int) {
	d.loop.SetThreshold(cm)
}

func (d *Device) SetHysteresisBand(cm int) {
	d.loop.SetHysteresisBand(cm)
}

// deviceLog prints log lines behind the device's uptime
type deviceLog struct {
	d *Device
}

func (l deviceLog) Log(msg string) {
	println(l.d.ts(), msg)
}

// Debug lines are only printed in verbose mode
func (l deviceLog) Debug(msg string) {
	if l.d.verbose.Load() {
		println(l.d.ts(), msg)
	}
}

// ReadByte reads from the USB serial console. It sleeps when nothing is buffered so other goroutines can run
func (d *Device) ReadByte() (byte, error) {
	if machine.Serial.Buffered() == 0 {
		time.Sleep(10 * time.Millisecond)
		return 0, errNoData
	}
	return machine.Serial.ReadByte()
}

// ts returns the duration timestamp for logging
func (d *Device) ts() string {
	if d.startTime.IsZero() {
		return "[-]"
	}
	return "[" + time.Since(d.startTime).String() + "]"
}
