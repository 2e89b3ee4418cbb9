package catminator

// MotorState is the phase of the motor's forward/pause/reverse sequence
type MotorState int

const (
	MotorStateIdle MotorState = iota
	MotorStateScheduled
	MotorStateDrivingForward
	MotorStatePauseBeforeReversal
	MotorStateDrivingReverse
)

func (ms MotorState) String() string {
	switch ms {
	case MotorStateScheduled:
		return "Scheduled"
	case MotorStateDrivingForward:
		return "DrivingForward"
	case MotorStatePauseBeforeReversal:
		return "PauseBeforeReversal"
	case MotorStateDrivingReverse:
		return "DrivingReverse"
	default:
		fallthrough
	case MotorStateIdle:
		return "Idle"
	}
}

// Running is true for every phase in which the motor sequence has started moving
func (ms MotorState) Running() bool {
	return ms >= MotorStateDrivingForward && ms <= MotorStateDrivingReverse
}

// ParseMotorState is the inverse of MotorState.String. Unknown names are Idle
func ParseMotorState(s string) MotorState {
	for ms := MotorStateIdle; ms <= MotorStateDrivingReverse; ms++ {
		if ms.String() == s {
			return ms
		}
	}
	return MotorStateIdle
}

// OutputPin is a digital output. machine.Pin satisfies it on the Pico
type OutputPin interface {
	Set(high bool)
}

// InputPin is a digital input. machine.Pin satisfies it on the Pico
type InputPin interface {
	Get() bool
}
