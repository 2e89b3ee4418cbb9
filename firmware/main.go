//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"github.com/catminator/catminator/firmware/commands"
	"github.com/catminator/catminator/firmware/device"
)

func main() {
	pins := device.PinConfig{
		Trigger:       machine.GP2,
		Echo:          machine.GP3,
		SensorPower:   machine.GP4,
		Forward:       machine.GP17,
		Reverse:       machine.GP18,
		CancelButton:  machine.GP16,
		TriggerButton: machine.GP15,
		StatusLED:     machine.LED,
		Battery:       machine.ADC0,
	}

	cfg := device.DefaultConfig()

	d, err := device.New(pins, cfg)
	if err != nil {
		panic(err)
	}

	// give the USB console time to attach before the first log line
	time.Sleep(2 * time.Second)

	go commands.Run(d)

	err = d.Run(context.Background())
	println("stopped:", err.Error())

	// a halted device stays idle until it is power cycled
	select {}
}
