package motor

import "time"

// Config has the durations of each phase of a drive
type Config struct {
	Forward    time.Duration `yaml:"forward"`
	Pause      time.Duration `yaml:"pause"`
	Reverse    time.Duration `yaml:"reverse"`
	AlarmSlots int           `yaml:"alarm_slots"`
}

// DefaultConfig is calibrated for the linear motor on the deterrent's arm
func DefaultConfig() Config {
	return Config{
		Forward:    690 * time.Millisecond,
		Pause:      200 * time.Millisecond,
		Reverse:    200 * time.Millisecond,
		AlarmSlots: DefaultAlarmSlots,
	}
}
