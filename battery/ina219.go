package battery

import (
	"errors"
	"strconv"

	"github.com/catminator/catminator"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ina219"
)

// MaxReadErrors is how many failed readings in a row count as a low battery
const MaxReadErrors = 3

// INA219Monitor reads the supply voltage from an INA219 power monitor
type INA219Monitor struct {
	dev        ina219.Device
	lowVoltage float32
	log        catminator.Logger

	failures int
}

// NewINA219Monitor configures the INA219 at its default address on bus
func NewINA219Monitor(bus drivers.I2C, lowVoltage float32, log catminator.Logger) (*INA219Monitor, error) {
	dev := ina219.New(bus)
	err := dev.Configure()
	if err != nil {
		return nil, errors.New("error configuring ina219: " + err.Error())
	}

	return &INA219Monitor{dev: dev, lowVoltage: lowVoltage, log: log}, nil
}

// Voltage returns the bus voltage in volts
func (m *INA219Monitor) Voltage() (float32, error) {
	mv, err := m.dev.BusVoltage()
	if err != nil {
		return 0, err
	}
	return float32(mv) / 1000, nil
}

// BatteryLow is true below the threshold, or after MaxReadErrors failed readings in a row
func (m *INA219Monitor) BatteryLow() bool {
	v, err := m.Voltage()
	if err != nil {
		m.failures++
		m.log.Log("error reading battery voltage: " + err.Error())
		return m.failures >= MaxReadErrors
	}
	m.failures = 0

	m.log.Debug("Battery voltage: " + strconv.FormatFloat(float64(v), 'f', 2, 32) + "V")
	return v < m.lowVoltage
}
