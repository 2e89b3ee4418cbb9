package pi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/catminator/catminator"
	"github.com/catminator/catminator/control"
	"github.com/catminator/catminator/gate"
	"github.com/catminator/catminator/motor"
	"github.com/catminator/catminator/ranging"
	"github.com/jonboulle/clockwork"
)

// BatteryMonitor is satisfied by *battery.INA219Monitor
type BatteryMonitor interface {
	BatteryLow() bool
	Voltage() (float32, error)
}

// Device wires the deterrent's components to periph pins
type Device struct {
	cfg     Config
	clock   clockwork.Clock
	in      *bufio.Reader
	out     io.Writer
	outMu   sync.Mutex
	battery BatteryMonitor
	power   Output
	motor   *motor.Controller
	channel *ranging.Channel
	ranger  *ranging.Ranger
	cancel  *gate.Gate
	trigger *gate.Gate
	buttons []*Button
	loop    *control.Loop

	startTime time.Time
	verbose   atomic.Bool
}

// New configures the pins and builds every component. Commands are read from in and
// log lines are written to out
func New(pins Pins, bat BatteryMonitor, cfg Config, clock clockwork.Clock, in io.Reader, out io.Writer) (*Device, error) {
	d := &Device{
		cfg:       cfg,
		clock:     clock,
		in:        bufio.NewReader(in),
		out:       out,
		battery:   bat,
		cancel:    gate.New(gate.DefaultDebounce),
		trigger:   gate.New(gate.DefaultDebounce),
		startTime: clock.Now(),
	}
	d.verbose.Store(cfg.Verbose)
	log := deviceLog{d}

	trigger := NewOutput(pins.Trigger, log)
	sensorPower := NewOutput(pins.SensorPower, log)
	d.power = sensorPower
	forward := NewOutput(pins.Forward, log)
	reverse := NewOutput(pins.Reverse, log)
	statusLED := NewOutput(pins.StatusLED, log)
	for _, o := range []Output{trigger, sensorPower, forward, reverse, statusLED} {
		o.Set(false)
	}

	echo, err := NewInput(pins.Echo)
	if err != nil {
		return nil, err
	}

	cancelButton, err := NewButton(pins.CancelButton, d.cancel, clock)
	if err != nil {
		return nil, err
	}
	d.buttons = append(d.buttons, cancelButton)

	d.motor = motor.New(forward, reverse, statusLED, motor.NewAlarmPool(clock, cfg.Motor.AlarmSlots), cfg.Motor, log)
	d.channel = ranging.NewChannel()
	d.ranger = ranging.NewRanger(trigger, echo, clock, cfg.Ranging)

	components := control.Components{
		Motor:     d.motor,
		Ranger:    d.channel,
		Power:     ranging.NewPowerSwitch(sensorPower, clock, cfg.Ranging.PowerSettle),
		Safety:    bat,
		Cancel:    d.cancel,
		StatusLED: statusLED,
	}

	if pins.TriggerButton != nil {
		triggerButton, err := NewButton(pins.TriggerButton, d.trigger, clock)
		if err != nil {
			return nil, err
		}
		d.buttons = append(d.buttons, triggerButton)
		components.Trigger = d.trigger
	}

	d.loop = control.New(components, cfg.Control, clock, log)
	d.motor.OnComplete(d.loop.DriveCompleted)

	return d, nil
}

// Run starts the ranging worker and the button watchers, then runs the control loop
// until the battery runs low or ctx is done
func (d *Device) Run(ctx context.Context) error {
	d.println("Started...")

	// runs after every goroutine below has stopped
	defer d.stopOutputs()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := d.channel.Serve(ctx, d.ranger)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.println("error serving measurements: " + err.Error())
		}
	}()

	for _, b := range d.buttons {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Run(ctx)
		}()
	}

	return d.loop.Run(ctx)
}

// stopOutputs leaves both motor pins and the sensor supply low. GPIO levels outlive the process
func (d *Device) stopOutputs() {
	d.motor.Halt()
	d.power.Set(false)
	d.println("Outputs off")
}

// Debug prints the status line
func (d *Device) Debug() {
	d.println(d.loop.Status().String())
}

// Verbose toggles verbose mode
func (d *Device) Verbose() {
	v := !d.verbose.Load()
	d.verbose.Store(v)
	d.println(fmt.Sprintf("Verbose: %t", v))
}

// Battery prints the current battery voltage
func (d *Device) Battery() {
	v, err := d.battery.Voltage()
	if err != nil {
		d.println("error reading battery voltage: " + err.Error())
		return
	}
	d.println(fmt.Sprintf("Battery: %.2fV", v))
}

// Cancel presses the cancel button in software
func (d *Device) Cancel() {
	d.cancel.Edge(d.clock.Now())
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

// ReadByte reads the next command byte from the input
func (d *Device) ReadByte() (byte, error) {
	return d.in.ReadByte()
}

// Status is the current status of the control loop
func (d *Device) Status() catminator.Status {
	return d.loop.Status()
}

func (d *Device) println(msg string) {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	fmt.Fprintln(d.out, d.ts(), msg)
}

// ts returns the duration timestamp for logging
func (d *Device) ts() string {
	return fmt.Sprintf("[%s]", d.clock.Since(d.startTime))
}

// deviceLog writes log lines behind the device's uptime
type deviceLog struct {
	d *Device
}

func (l deviceLog) Log(msg string) {
	l.d.println(msg)
}

// Debug lines are only written in verbose mode
func (l deviceLog) Debug(msg string) {
	if l.d.verbose.Load() {
		l.d.println(msg)
	}
}
