//go:build rp2040

package device

import (
	"machine"

	"github.com/catminator/catminator/battery"
	"github.com/catminator/catminator/control"
	"github.com/catminator/catminator/motor"
	"github.com/catminator/catminator/ranging"
)

// PinConfig assigns the Pico's pins to their roles
type PinConfig struct {
	Trigger       machine.Pin
	Echo          machine.Pin
	SensorPower   machine.Pin
	Forward       machine.Pin
	Reverse       machine.Pin
	CancelButton  machine.Pin
	TriggerButton machine.Pin
	StatusLED     machine.Pin
	Battery       machine.Pin
}

// Config collects the tunables of every component
type Config struct {
	Motor   motor.Config
	Ranging ranging.Config
	Control control.Config
	Battery battery.ADCConfig
}

// DefaultConfig returns the defaults of every component
func DefaultConfig() Config {
	return Config{
		Motor:   motor.DefaultConfig(),
		Ranging: ranging.DefaultConfig(),
		Control: control.DefaultConfig(),
		Battery: battery.DefaultADCConfig(),
	}
}
