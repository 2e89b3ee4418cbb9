// Package battery decides when the supply is too low to keep driving the motor.
package battery

import (
	"strconv"

	"github.com/catminator/catminator"
)

// ADC is an analog input. machine.ADC satisfies it on the Pico
type ADC interface {
	Get() uint16
}

// ADCConfig converts a raw reading into the battery voltage behind a resistor divider
type ADCConfig struct {
	// Reference is the ADC reference voltage
	Reference float32
	// Bits is the converter's real resolution
	Bits uint8
	// SampleBits is the width of values returned by Get. TinyGo scales readings to 16 bits
	SampleBits uint8
	// Divider is the ratio of the resistor divider in front of the ADC
	Divider float32
	// Offset is an empirical correction for divider tolerance
	Offset float32
	// LowVoltage is the threshold below which the battery is considered low
	LowVoltage float32
}

// DefaultADCConfig is for a Pico reading a single cell through a 1:2 divider
func DefaultADCConfig() ADCConfig {
	return ADCConfig{
		Reference:  3.3,
		Bits:       12,
		SampleBits: 16,
		Divider:    2,
		Offset:     0.15,
		LowVoltage: 3.2,
	}
}

// ADCMonitor reads the battery through an ADC pin
type ADCMonitor struct {
	adc ADC
	cfg ADCConfig
	log catminator.Logger
}

func NewADCMonitor(adc ADC, cfg ADCConfig, log catminator.Logger) *ADCMonitor {
	return &ADCMonitor{adc: adc, cfg: cfg, log: log}
}

// Voltage converts a raw reading to volts
func (c ADCConfig) Voltage(sample uint16) float32 {
	raw := sample
	if c.SampleBits > c.Bits {
		raw = sample >> (c.SampleBits - c.Bits)
	}
	return float32(raw)*c.Reference/float32(uint32(1)<<c.Bits)*c.Divider + c.Offset
}

// Voltage samples the ADC once
func (m *ADCMonitor) Voltage() float32 {
	return m.cfg.Voltage(m.adc.Get())
}

// BatteryLow samples the battery and compares it with the configured threshold
func (m *ADCMonitor) BatteryLow() bool {
	v := m.Voltage()
	m.log.Debug("Battery voltage: " + strconv.FormatFloat(float64(v), 'f', 2, 32) + "V")
	return v < m.cfg.LowVoltage
}
