package pi

import (
	"fmt"
	"io"

	"github.com/catminator/catminator"
	"github.com/catminator/catminator/battery"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// OpenBattery opens the named I2C bus and configures the INA219 on it. The returned
// closer releases the bus
func OpenBattery(busName string, lowVoltage float32, log catminator.Logger) (*battery.INA219Monitor, io.Closer, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening i2c bus %q: %w", busName, err)
	}

	monitor, err := battery.NewINA219Monitor(bus, lowVoltage, log)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}

	return monitor, bus, nil
}
