package motor

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultAlarmSlots matches the Pico SDK's default alarm pool
const DefaultAlarmSlots = 16

// ErrNoAlarmSlot is returned when every alarm slot is armed
var ErrNoAlarmSlot = errors.New("no alarm slot available")

// Alarm is a pending one-shot callback
type Alarm interface {
	// Stop prevents the callback from running. It returns false if the callback already started
	Stop() bool
}

// AlarmPool hands out a fixed number of one-shot timers
type AlarmPool struct {
	clock clockwork.Clock
	slots chan struct{}
}

func NewAlarmPool(clock clockwork.Clock, size int) *AlarmPool {
	return &AlarmPool{
		clock: clock,
		slots: make(chan struct{}, size),
	}
}

// AfterFunc runs f after d unless the returned Alarm is stopped first
func (p *AlarmPool) AfterFunc(d time.Duration, f func()) (Alarm, error) {
	select {
	case p.slots <- struct{}{}:
	default:
		return nil, ErrNoAlarmSlot
	}

	a := &alarm{pool: p}
	a.timer = p.clock.AfterFunc(d, func() {
		if a.release() {
			f()
		}
	})
	return a, nil
}

// Available is the number of free slots
func (p *AlarmPool) Available() int {
	return cap(p.slots) - len(p.slots)
}

type alarm struct {
	pool  *AlarmPool
	timer clockwork.Timer
	done  atomic.Bool
}

// release frees the slot. Only the first caller, fire or Stop, gets true
func (a *alarm) release() bool {
	if !a.done.CompareAndSwap(false, true) {
		return false
	}
	<-a.pool.slots
	return true
}

func (a *alarm) Stop() bool {
	if !a.release() {
		return false
	}
	a.timer.Stop()
	return true
}
