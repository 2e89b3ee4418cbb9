package ui

import (
	"fmt"
	"io"

	"github.com/catminator/catminator/firmware/commands"
)

// controllerWrapper writes console commands for the device
type controllerWrapper struct {
	writer io.Writer
}

func (c *controllerWrapper) send(cmd *commands.Command, input string) {
	fmt.Fprintf(c.writer, "%c%s\n", cmd.Flag, input)
}

func (c *controllerWrapper) Status() {
	c.send(commands.DebugCommand, "")
}

func (c *controllerWrapper) Verbose() {
	c.send(commands.VerboseCommand, "")
}

func (c *controllerWrapper) Battery() {
	c.send(commands.BatteryCommand, "")
}

func (c *controllerWrapper) Cancel() {
	c.send(commands.CancelCommand, "")
}

func (c *controllerWrapper) TestDrive() {
	c.send(commands.TestDriveCommand, "")
}

func (c *controllerWrapper) SetThreshold(value float64) {
	c.send(commands.ThresholdCommand, fmt.Sprintf("%02.0f", value))
}

func (c *controllerWrapper) SetHysteresisBand(value float64) {
	c.send(commands.HysteresisCommand, fmt.Sprintf("%02.0f", value))
}
