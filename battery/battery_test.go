package battery

import (
	"errors"
	"testing"

	"github.com/catminator/catminator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers/ina219"
	"tinygo.org/x/drivers/tester"
)

type fixedADC uint16

func (a fixedADC) Get() uint16 { return uint16(a) }

func TestADCVoltage(t *testing.T) {
	cfg := DefaultADCConfig()

	tests := []struct {
		name     string
		raw12    uint16
		expected float32
		low      bool
	}{
		{"Zero", 0, 0.15, true},
		{"Full", 4095, 3.3*4095/4096*2 + 0.15, false},
		{"Charged", 2048, 3.45, false},
		{"JustBelow", 1890, 1890*3.3/4096*2 + 0.15, true},
		{"JustAbove", 1900, 1900*3.3/4096*2 + 0.15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// TinyGo returns 12-bit readings shifted up to 16 bits
			m := NewADCMonitor(fixedADC(tt.raw12<<4), cfg, catminator.NopLogger{})
			assert.InDelta(t, tt.expected, m.Voltage(), 0.001)
			assert.Equal(t, tt.low, m.BatteryLow())
		})
	}
}

func TestADCRawSamples(t *testing.T) {
	cfg := DefaultADCConfig()
	cfg.SampleBits = 12

	assert.InDelta(t, 3.45, cfg.Voltage(2048), 0.001)
}

func newINA219(t *testing.T, busVoltage uint16) (*tester.I2CDevice16, *INA219Monitor) {
	t.Helper()
	bus := tester.NewI2CBus(t)
	dev := tester.NewI2CDevice16(t, ina219.Address)
	dev.Registers[ina219.RegConfig] = 0
	dev.Registers[ina219.RegCalibration] = 0
	dev.Registers[ina219.RegBusVoltage] = busVoltage
	bus.AddDevice(dev)

	m, err := NewINA219Monitor(bus, 3.2, catminator.NopLogger{})
	require.NoError(t, err)
	return dev, m
}

// busVoltageRegister encodes millivolts the way the INA219 reports them
func busVoltageRegister(mv uint16) uint16 {
	return (mv / 4) << 3
}

func TestINA219Monitor(t *testing.T) {
	tests := []struct {
		name string
		mv   uint16
		low  bool
	}{
		{"Full", 4200, false},
		{"Threshold", 3200, false},
		{"Low", 3100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m := newINA219(t, busVoltageRegister(tt.mv))

			v, err := m.Voltage()
			require.NoError(t, err)
			assert.InDelta(t, float32(tt.mv)/1000, v, 0.001)
			assert.Equal(t, tt.low, m.BatteryLow())
		})
	}
}

func TestINA219ReadErrors(t *testing.T) {
	dev, m := newINA219(t, busVoltageRegister(4000))

	dev.Err = errors.New("bus fault")
	for i := 1; i < MaxReadErrors; i++ {
		assert.False(t, m.BatteryLow())
	}
	assert.True(t, m.BatteryLow())

	dev.Err = nil
	assert.False(t, m.BatteryLow())
}

func TestINA219Overflow(t *testing.T) {
	_, m := newINA219(t, busVoltageRegister(4000)|1)

	_, err := m.Voltage()
	assert.Error(t, err)
}
