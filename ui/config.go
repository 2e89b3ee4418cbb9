package ui

import (
	"errors"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/catminator/catminator/controller"
)

const (
	prefSerialPort = "serialPort"
	prefBaudRate   = "baudRate"
)

// ConfigWindow asks for the serial port of the device before the dashboard opens
type ConfigWindow struct {
	app      fyne.App
	OnSubmit func()
}

func NewConfigWindow(app fyne.App) *ConfigWindow {
	return &ConfigWindow{
		app: app,
	}
}

// load fills the fields of cfg that are still empty from the saved preferences
func (cw *ConfigWindow) load(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	if cfg.SerialPort == "" {
		cfg.SerialPort = prefs.String(prefSerialPort)
	}
	if cfg.BaudRate == "" {
		cfg.BaudRate = prefs.StringWithFallback(prefBaudRate, controller.DefaultBaudRate)
	}
}

func (cw *ConfigWindow) save(cfg controller.Config) {
	prefs := cw.app.Preferences()
	prefs.SetString(prefSerialPort, cfg.SerialPort)
	prefs.SetString(prefBaudRate, cfg.BaudRate)
}

// portOptions lists the USB serial ports followed by SerialPortNone
func portOptions() ([]string, error) {
	ports, err := controller.GetSerialPorts()
	if err != nil && !errors.Is(err, controller.ErrNoUSBSerial) {
		return nil, fmt.Errorf("error getting serial ports: %w", err)
	}
	return append(ports, controller.SerialPortNone), nil
}

func (cw *ConfigWindow) Show(cfg *controller.Config) {
	window := cw.app.NewWindow("Catminator - Connect")
	window.SetCloseIntercept(func() {
		window.Close()
		cw.app.Quit()
	})

	cw.load(cfg)

	ports, err := portOptions()
	if err != nil {
		window.Show()
		showError(cw.app, window, err)
		return
	}
	if cfg.SerialPort == "" {
		cfg.SerialPort = ports[0]
	}

	portSelect := widget.NewSelect(ports, nil)
	portSelect.Bind(binding.BindString(&cfg.SerialPort))

	refresh := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		ports, err := portOptions()
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		portSelect.Options = ports
		portSelect.Refresh()
	})

	baudEntry := widget.NewEntry()
	baudEntry.Bind(binding.BindString(&cfg.BaudRate))
	baudEntry.Validator = func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return errors.New("baud rate must be a positive number")
		}
		return nil
	}

	form := widget.NewForm(
		widget.NewFormItem("Serial port", container.NewBorder(nil, nil, nil, refresh, portSelect)),
		widget.NewFormItem("Baud rate", baudEntry),
	)
	form.SubmitText = "Connect"
	form.OnSubmit = func() {
		if !validConfig(*cfg) {
			dialog.ShowError(errors.New("select a serial port"), window)
			return
		}
		cw.save(*cfg)
		cw.OnSubmit()
		window.Close()
	}
	form.OnCancel = func() {
		window.Close()
		cw.app.Quit()
	}

	window.SetContent(container.NewPadded(form))
	window.Resize(fyne.NewSize(420, 0))
	window.Show()
}

// validConfig requires a port and a positive numeric baud rate
func validConfig(cfg controller.Config) bool {
	baudRate, err := strconv.Atoi(cfg.BaudRate)
	return cfg.SerialPort != "" && err == nil && baudRate > 0
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
