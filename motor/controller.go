package motor

import (
	"errors"
	"sync"
	"time"

	"github.com/catminator/catminator"
)

// ErrHalted is returned when scheduling after Halt
var ErrHalted = errors.New("motor halted")

// driveContext is the working state of one drive. It belongs to whichever phase is current
type driveContext struct {
	pin      catminator.OutputPin
	duration time.Duration
}

// Controller runs the forward/pause/reverse sequence of the linear motor. Phases are advanced by
// alarms. Every schedule, cancel and halt starts a new generation, and an alarm callback from an
// older generation does nothing, so a cancel racing a callback can never touch a released drive.
type Controller struct {
	forward   catminator.OutputPin
	reverse   catminator.OutputPin
	indicator catminator.OutputPin
	alarms    *AlarmPool
	cfg       Config
	log       catminator.Logger

	onComplete func()

	mu         sync.Mutex
	state      catminator.MotorState
	generation uint64
	drive      *driveContext
	alarm      Alarm
	halted     bool
}

// New creates a Controller. Both motor pins and the indicator start low
func New(forward, reverse, indicator catminator.OutputPin, alarms *AlarmPool, cfg Config, log catminator.Logger) *Controller {
	forward.Set(false)
	reverse.Set(false)
	indicator.Set(false)

	return &Controller{
		forward:   forward,
		reverse:   reverse,
		indicator: indicator,
		alarms:    alarms,
		cfg:       cfg,
		log:       log,
		state:     catminator.MotorStateIdle,
	}
}

// OnComplete sets a function that is called after a drive finishes its reverse phase. It is not
// called for cancelled drives. f runs before the controller is unlocked, so nobody sees the motor
// Idle before f has returned. f must not call back into the Controller. Set it before scheduling.
func (c *Controller) OnComplete(f func()) {
	c.mu.Lock()
	c.onComplete = f
	c.mu.Unlock()
}

// ScheduleDrive starts a drive after delay. It does nothing if a drive is already scheduled or running
func (c *Controller) ScheduleDrive(delay time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.halted {
		return ErrHalted
	}
	if c.state != catminator.MotorStateIdle {
		return nil
	}

	c.generation++
	gen := c.generation

	alarm, err := c.alarms.AfterFunc(delay, func() { c.advance(gen) })
	if err != nil {
		c.log.Log("error scheduling drive: " + err.Error())
		return err
	}

	c.drive = &driveContext{pin: c.forward, duration: c.cfg.Forward}
	c.alarm = alarm
	c.state = catminator.MotorStateScheduled
	c.indicator.Set(true)

	c.log.Log("Scheduled drive in " + delay.String())
	return nil
}

// CancelDrive stops a scheduled or running drive. It returns false if there was nothing to cancel
func (c *Controller) CancelDrive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == catminator.MotorStateIdle {
		return false
	}

	c.log.Log("Cancelled drive in state " + c.state.String())
	c.stop()
	return true
}

// Halt stops any drive and refuses new ones
func (c *Controller) Halt() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.halted = true
	c.stop()
	c.log.Log("Motor halted")
}

// IsDriveScheduled is true from ScheduleDrive until the drive completes or is cancelled
func (c *Controller) IsDriveScheduled() bool {
	return c.State() != catminator.MotorStateIdle
}

// IsRunning is true while the motor sequence is moving or pausing between directions
func (c *Controller) IsRunning() bool {
	return c.State().Running()
}

func (c *Controller) State() catminator.MotorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// stop invalidates the current generation and returns to Idle. c.mu must be held
func (c *Controller) stop() {
	c.generation++
	if c.alarm != nil {
		c.alarm.Stop()
	}
	c.forward.Set(false)
	c.reverse.Set(false)
	c.release()
}

// release drops the drive context. c.mu must be held
func (c *Controller) release() {
	c.drive = nil
	c.alarm = nil
	c.state = catminator.MotorStateIdle
	c.indicator.Set(false)
}

// advance moves the drive of generation gen to its next phase
func (c *Controller) advance(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.drive == nil {
		c.mu.Unlock()
		return
	}
	c.alarm = nil

	var next time.Duration
	switch c.state {
	case catminator.MotorStateScheduled:
		c.drive.pin.Set(true)
		c.state = catminator.MotorStateDrivingForward
		next = c.drive.duration
	case catminator.MotorStateDrivingForward:
		c.drive.pin.Set(false)
		c.drive.pin = c.reverse
		c.drive.duration = c.cfg.Reverse
		c.state = catminator.MotorStatePauseBeforeReversal
		next = c.cfg.Pause
	case catminator.MotorStatePauseBeforeReversal:
		c.drive.pin.Set(true)
		c.state = catminator.MotorStateDrivingReverse
		next = c.drive.duration
	case catminator.MotorStateDrivingReverse:
		c.drive.pin.Set(false)
		c.release()
		c.log.Log("Drive complete")
		if c.onComplete != nil {
			c.onComplete()
		}
		c.mu.Unlock()
		return
	}
	c.log.Debug("Motor " + c.state.String())

	alarm, err := c.alarms.AfterFunc(next, func() { c.advance(gen) })
	if err != nil {
		c.log.Log("error arming " + c.state.String() + ": " + err.Error())
		c.stop()
		c.mu.Unlock()
		return
	}
	c.alarm = alarm
	c.mu.Unlock()
}
