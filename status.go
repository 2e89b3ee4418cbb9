package catminator

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoStatus is returned by ParseStatus for lines that are not status lines
var ErrNoStatus = errors.New("not a status line")

// Status is a snapshot of the control loop, printed by the firmware's status command
type Status struct {
	State MotorState
	// Distance is the last valid distance in cm, or -1 if there is none
	Distance       int
	Threshold      int
	HysteresisBand int
	Cooldown       bool
	Halted         bool
	BatteryLow     bool
}

func (s Status) String() string {
	distance := "-"
	if s.Distance >= 0 {
		distance = strconv.Itoa(s.Distance)
	}
	return "state=" + s.State.String() +
		" distance=" + distance +
		" threshold=" + strconv.Itoa(s.Threshold) +
		" band=" + strconv.Itoa(s.HysteresisBand) +
		" cooldown=" + strconv.FormatBool(s.Cooldown) +
		" halted=" + strconv.FormatBool(s.Halted) +
		" battery_low=" + strconv.FormatBool(s.BatteryLow)
}

// ParseStatus reads a line produced by Status.String. Anything before "state=", like a log timestamp, is ignored
func ParseStatus(line string) (Status, error) {
	i := strings.Index(line, "state=")
	if i < 0 {
		return Status{}, ErrNoStatus
	}

	s := Status{Distance: -1}
	for _, field := range strings.Fields(line[i:]) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Status{}, errors.New("invalid status field: " + field)
		}

		var err error
		switch key {
		case "state":
			s.State = ParseMotorState(value)
		case "distance":
			if value != "-" {
				s.Distance, err = strconv.Atoi(value)
			}
		case "threshold":
			s.Threshold, err = strconv.Atoi(value)
		case "band":
			s.HysteresisBand, err = strconv.Atoi(value)
		case "cooldown":
			s.Cooldown, err = strconv.ParseBool(value)
		case "halted":
			s.Halted, err = strconv.ParseBool(value)
		case "battery_low":
			s.BatteryLow, err = strconv.ParseBool(value)
		}
		if err != nil {
			return Status{}, errors.New("invalid status field " + key + ": " + err.Error())
		}
	}

	return s, nil
}
