package main

import (
	"context"
	"flag"
	"io"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/catminator/catminator/controller"
	"github.com/catminator/catminator/ui"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a YAML file with serial_port and baud_rate. SERIAL_PORT and BAUD_RATE are used otherwise")
	flag.Parse()

	cfg := controller.ConfigFromEnv()
	if configPath != "" {
		var err error
		cfg, err = controller.LoadConfig(configPath)
		if err != nil {
			panic(err)
		}
	}

	if os.Getenv("ENABLE_UI") == "true" {
		runUI(cfg)
		return
	}

	runCLI(cfg)
}

func runUI(cfg controller.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := app.NewWithID("io.github.catminator")
	dashboard := ui.NewDashboard(application)

	r, w := io.Pipe()

	// read from Stdin also
	go func() {
		io.Copy(w, os.Stdin)
	}()

	start := func() {
		c, err := controller.New(cfg)
		if err != nil {
			panic(err)
		}

		go func() {
			defer c.Close()
			err := c.Run(ctx, r, io.MultiWriter(os.Stdout, dashboard))
			if err != nil {
				panic(err)
			}
			cancel()
		}()

		dashboard.Show(ctx, w)
	}

	if cfg.SerialPort == "" {
		configWindow := ui.NewConfigWindow(application)
		configWindow.OnSubmit = start
		configWindow.Show(&cfg)
	} else {
		start()
	}

	application.Run()
	cancel()
}

func runCLI(cfg controller.Config) {
	c, err := controller.New(cfg)
	if err != nil {
		panic(err)
	}
	defer c.Close()

	err = c.Run(context.Background(), os.Stdin, os.Stdout)
	if err != nil {
		panic(err)
	}
}
