package control

import "time"

// Config has the control loop's policy parameters
type Config struct {
	// PollPeriod is the time between ticks in Run
	PollPeriod         time.Duration `yaml:"poll_period"`
	// Threshold is the distance in cm below which a drive is scheduled
	Threshold          int           `yaml:"threshold"`
	// HysteresisBand is added to Threshold to get the distance at which a scheduled drive is cancelled
	HysteresisBand     int           `yaml:"hysteresis_band"`
	// DriveDelay is the time between detection and driving, during which a retreat cancels the drive
	DriveDelay         time.Duration `yaml:"drive_delay"`
	// Cooldown is the quiet period after a cancelled or completed drive
	Cooldown           time.Duration `yaml:"cooldown"`
	// CooldownAfterDrive also starts a cooldown when a drive completes
	CooldownAfterDrive bool          `yaml:"cooldown_after_drive"`
}

func DefaultConfig() Config {
	return Config{
		PollPeriod:         time.Second,
		Threshold:          50,
		HysteresisBand:     0,
		DriveDelay:         2 * time.Second,
		Cooldown:           10 * time.Second,
		CooldownAfterDrive: true,
	}
}
