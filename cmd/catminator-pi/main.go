package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/catminator/catminator"
	"github.com/catminator/catminator/control"
	"github.com/catminator/catminator/firmware/commands"
	"github.com/catminator/catminator/pi"
	"github.com/jonboulle/clockwork"
	"periph.io/x/host/v3"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file. Defaults are used when empty")
	flag.Parse()

	err := run(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := pi.LoadConfig(configPath)
	if err != nil {
		return err
	}

	_, err = host.Init()
	if err != nil {
		return fmt.Errorf("error initializing host: %w", err)
	}

	pins, err := pi.ResolvePins(cfg.Pins)
	if err != nil {
		return err
	}

	log := &catminator.WriterLogger{W: os.Stdout, Prefix: "[battery]", Verbose: cfg.Verbose}
	bat, closer, err := pi.OpenBattery(cfg.I2CBus, cfg.LowVoltage, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	device, err := pi.New(pins, bat, cfg, clockwork.NewRealClock(), os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go commands.Run(device)

	err = device.Run(ctx)
	switch {
	case errors.Is(err, control.ErrHalted):
		// pins stay low until the battery is replaced
		<-ctx.Done()
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}
