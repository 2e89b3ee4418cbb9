// Package control decides once per cycle whether to schedule or cancel a drive.
package control

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/catminator/catminator"
	"github.com/jonboulle/clockwork"
)

// ErrHalted is returned by Tick and Run once the battery was reported low
var ErrHalted = errors.New("halted: battery low")

// Motor is the actuation side of the loop. *motor.Controller satisfies it
type Motor interface {
	ScheduleDrive(delay time.Duration) error
	CancelDrive() bool
	IsDriveScheduled() bool
	IsRunning() bool
	State() catminator.MotorState
	Halt()
}

// Ranger hands measurements to another goroutine. *ranging.Channel satisfies it
type Ranger interface {
	Busy() bool
	Measure(ctx context.Context) (catminator.Sample, error)
}

// SensorPower switches the sensor supply. *ranging.PowerSwitch satisfies it
type SensorPower interface {
	On()
	Off()
}

// SafetyMonitor reports whether the battery is too low to continue
type SafetyMonitor interface {
	BatteryLow() bool
}

// Requests is a flag raised by a button. *gate.Gate satisfies it
type Requests interface {
	Take() bool
}

// Components are the collaborators of a Loop. Trigger is optional
type Components struct {
	Motor   Motor
	Ranger  Ranger
	Power   SensorPower
	Safety  SafetyMonitor
	Cancel  Requests
	Trigger Requests
	// StatusLED is switched off on halt. Optional
	StatusLED catminator.OutputPin
}

// Loop is the periodic coordinator of the device
type Loop struct {
	Components
	clock clockwork.Clock
	log   catminator.Logger

	mu            sync.Mutex
	cfg           Config
	cooldownUntil time.Time
	halted        bool
	batteryLow    bool
	lastDistance  int
}

func New(c Components, cfg Config, clock clockwork.Clock, log catminator.Logger) *Loop {
	return &Loop{
		Components:   c,
		clock:        clock,
		log:          log,
		cfg:          cfg,
		lastDistance: -1,
	}
}

// Run calls Tick every poll period until ctx is done or the loop halts
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.config().PollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}

		err := l.Tick(ctx)
		switch {
		case errors.Is(err, ErrHalted):
			return err
		case err != nil:
			l.log.Log("error: " + err.Error())
		}
	}
}

// Tick runs one cycle: safety, cancellation, cooldown, backpressure, busy, then measurement
func (l *Loop) Tick(ctx context.Context) error {
	if l.isHalted() {
		return ErrHalted
	}

	if l.Safety.BatteryLow() {
		l.halt()
		return ErrHalted
	}

	if l.Cancel.Take() && l.Motor.IsDriveScheduled() {
		l.Motor.CancelDrive()
		l.startCooldown()
		l.log.Log("Drive cancelled by request")
		return nil
	}

	if l.inCooldown() {
		return nil
	}

	if l.Trigger != nil && l.Trigger.Take() && !l.Motor.IsDriveScheduled() {
		l.log.Log("Drive triggered by request")
		return l.schedule()
	}

	if l.Ranger.Busy() {
		l.log.Debug("Sensor busy")
		return nil
	}

	if l.Motor.IsRunning() {
		return nil
	}

	// a drive that finished since the cooldown check has started a new cooldown
	if l.inCooldown() {
		return nil
	}

	l.Power.On()
	sample, err := l.Ranger.Measure(ctx)
	l.Power.Off()
	if err != nil {
		return errors.New("error measuring distance: " + err.Error())
	}

	if !sample.Valid() {
		l.log.Debug("No echo")
		return nil
	}

	distance := sample.Centimeters()
	cfg := l.setDistance(distance)
	l.log.Debug("Distance " + strconv.Itoa(distance) + "cm")

	scheduled := l.Motor.IsDriveScheduled()
	switch {
	case distance < cfg.Threshold && !scheduled:
		l.log.Log("Target at " + strconv.Itoa(distance) + "cm")
		return l.schedule()
	case distance >= cfg.Threshold+cfg.HysteresisBand && scheduled:
		if l.Motor.CancelDrive() {
			l.log.Log("Target left at " + strconv.Itoa(distance) + "cm")
		}
	}

	return nil
}

func (l *Loop) schedule() error {
	err := l.Motor.ScheduleDrive(l.config().DriveDelay)
	if err != nil {
		return errors.New("error scheduling drive: " + err.Error())
	}
	return nil
}

// DriveCompleted starts the post-drive cooldown. Register it with the motor's completion hook
func (l *Loop) DriveCompleted() {
	if !l.config().CooldownAfterDrive {
		return
	}
	l.startCooldown()
}

// halt stops all outputs for good
func (l *Loop) halt() {
	l.mu.Lock()
	l.halted = true
	l.batteryLow = true
	l.mu.Unlock()

	l.Motor.Halt()
	l.Power.Off()
	if l.StatusLED != nil {
		l.StatusLED.Set(false)
	}
	l.log.Log("Battery low, halting")
}

func (l *Loop) isHalted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.halted
}

func (l *Loop) startCooldown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cooldownUntil = l.clock.Now().Add(l.cfg.Cooldown)
	l.log.Debug("Cooldown until " + l.cooldownUntil.Format(time.TimeOnly))
}

// inCooldown reports an unexpired cooldown and clears an expired one
func (l *Loop) inCooldown() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cooldownUntil.IsZero() {
		return false
	}
	if l.clock.Now().Before(l.cooldownUntil) {
		return true
	}
	l.cooldownUntil = time.Time{}
	return false
}

func (l *Loop) setDistance(d int) Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastDistance = d
	return l.cfg
}

func (l *Loop) config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// SetThreshold changes the arm distance in cm
func (l *Loop) SetThreshold(cm int) {
	l.mu.Lock()
	l.cfg.Threshold = cm
	l.mu.Unlock()
	l.log.Log("Threshold " + strconv.Itoa(cm) + "cm")
}

// SetHysteresisBand changes the extra distance needed to cancel a scheduled drive
func (l *Loop) SetHysteresisBand(cm int) {
	l.mu.Lock()
	l.cfg.HysteresisBand = cm
	l.mu.Unlock()
	l.log.Log("Hysteresis band " + strconv.Itoa(cm) + "cm")
}

// Status returns a snapshot for diagnostics
func (l *Loop) Status() catminator.Status {
	state := l.Motor.State()

	l.mu.Lock()
	defer l.mu.Unlock()

	return catminator.Status{
		State:          state,
		Distance:       l.lastDistance,
		Threshold:      l.cfg.Threshold,
		HysteresisBand: l.cfg.HysteresisBand,
		Cooldown:       !l.cooldownUntil.IsZero() && l.clock.Now().Before(l.cooldownUntil),
		Halted:         l.halted,
		BatteryLow:     l.batteryLow,
	}
}
