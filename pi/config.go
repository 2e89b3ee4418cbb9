package pi

import (
	"fmt"
	"os"

	"github.com/catminator/catminator/control"
	"github.com/catminator/catminator/motor"
	"github.com/catminator/catminator/ranging"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the Raspberry Pi runner
type Config struct {
	Pins PinNames `yaml:"pins"`

	// I2CBus is the periph name of the bus with the INA219, empty for the default bus
	I2CBus     string  `yaml:"i2c_bus"`
	LowVoltage float32 `yaml:"low_voltage"`
	Verbose    bool    `yaml:"verbose"`

	Control control.Config `yaml:"control"`
	Motor   motor.Config   `yaml:"motor"`
	Ranging ranging.Config `yaml:"ranging"`
}

// DefaultConfig uses the same pins as the Pico build where the Pi header allows it
func DefaultConfig() Config {
	return Config{
		Pins: PinNames{
			Trigger:       "GPIO23",
			Echo:          "GPIO24",
			SensorPower:   "GPIO25",
			Forward:       "GPIO17",
			Reverse:       "GPIO18",
			CancelButton:  "GPIO16",
			TriggerButton: "GPIO20",
			StatusLED:     "GPIO27",
		},
		LowVoltage: 3.2,
		Control:    control.DefaultConfig(),
		Motor:      motor.DefaultConfig(),
		Ranging:    ranging.DefaultConfig(),
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. An empty path returns the defaults
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Control.Threshold <= 0 {
		return Config{}, fmt.Errorf("invalid threshold: %d", cfg.Control.Threshold)
	}
	if cfg.Motor.AlarmSlots <= 0 {
		return Config{}, fmt.Errorf("invalid alarm_slots: %d", cfg.Motor.AlarmSlots)
	}

	return cfg, nil
}
