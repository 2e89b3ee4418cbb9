// Package ui is a fyne dashboard for a catminator connected over serial.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/catminator/catminator"
)

// statusInterval is how often the dashboard asks the device for its status line
const statusInterval = time.Second

// Dashboard shows the device's status and sends it commands. It is an io.Writer for the
// device's output
type Dashboard struct {
	app     fyne.App
	tracker *statusTracker

	stateLabel     *widget.Label
	distanceLabel  *widget.Label
	thresholdLabel *widget.Label
	batteryLabel   *widget.Label
	drivesLabel    *widget.Label
	logContent     *widget.Label
	lastDrive      *timer
}

func NewDashboard(app fyne.App) *Dashboard {
	return &Dashboard{
		app:            app,
		tracker:        &statusTracker{},
		stateLabel:     widget.NewLabel("-"),
		distanceLabel:  widget.NewLabel("-"),
		thresholdLabel: widget.NewLabel("-"),
		batteryLabel:   widget.NewLabel("-"),
		drivesLabel:    widget.NewLabel("0"),
		logContent:     widget.NewLabel(""),
		lastDrive:      newTimer(),
	}
}

// Write consumes the device's output
func (d *Dashboard) Write(p []byte) (int, error) {
	for _, line := range d.tracker.feed(p) {
		d.handleLine(line)
	}

	logText := d.tracker.log()
	fyne.Do(func() {
		d.logContent.SetText(logText)
	})

	return len(p), nil
}

func (d *Dashboard) handleLine(line string) {
	if _, after, ok := strings.Cut(line, "Battery: "); ok {
		fyne.Do(func() {
			d.batteryLabel.SetText(after)
		})
		return
	}

	status, err := catminator.ParseStatus(line)
	if err != nil {
		return
	}

	if d.tracker.update(status) {
		d.lastDrive.Set(time.Now())
	}
	drives := d.tracker.driveCount()

	fyne.Do(func() {
		d.stateLabel.SetText(stateText(status))
		d.distanceLabel.SetText(distanceText(status))
		d.thresholdLabel.SetText(fmt.Sprintf("%dcm (+%dcm)", status.Threshold, status.HysteresisBand))
		d.drivesLabel.SetText(fmt.Sprint(drives))
	})
}

func stateText(s catminator.Status) string {
	switch {
	case s.Halted:
		return "Halted: battery low"
	case s.Cooldown:
		return s.State.String() + " (cooldown)"
	default:
		return s.State.String()
	}
}

func distanceText(s catminator.Status) string {
	if s.Distance < 0 {
		return "no echo"
	}
	return fmt.Sprintf("%dcm", s.Distance)
}

func createSlider(labelText string, low, high, initial float64, onSet func(float64)) *fyne.Container {
	valueLabel := widget.NewLabel(fmt.Sprintf("%.0fcm", initial))

	slider := widget.NewSlider(low, high)
	slider.Step = 1
	slider.SetValue(initial)
	slider.OnChanged = func(value float64) {
		valueLabel.SetText(fmt.Sprintf("%.0fcm", value))
	}
	slider.OnChangeEnded = onSet

	return container.NewVBox(
		container.NewGridWithColumns(2,
			widget.NewLabel(labelText),
			valueLabel,
		),
		slider,
	)
}

func row(name string, value fyne.CanvasObject) *fyne.Container {
	return container.NewGridWithColumns(2, widget.NewLabel(name), value)
}

// Show opens the dashboard window. Commands are written to w
func (d *Dashboard) Show(ctx context.Context, w io.Writer) {
	c := &controllerWrapper{writer: w}

	window := d.app.NewWindow("Catminator")

	logScroll := container.NewVScroll(d.logContent)
	logScroll.SetMinSize(fyne.NewSize(300, 150))

	content := container.NewVBox(
		row("State", d.stateLabel),
		row("Distance", d.distanceLabel),
		row("Threshold", d.thresholdLabel),
		row("Battery", d.batteryLabel),
		row("Drives", d.drivesLabel),
		container.NewHBox(
			widget.NewLabel("Since last drive"),
			layout.NewSpacer(),
			container.NewPadded(d.lastDrive.text),
		),
		container.NewGridWithColumns(3,
			widget.NewButton("Cancel", c.Cancel),
			widget.NewButton("Test Drive", c.TestDrive),
			widget.NewButton("Verbose", c.Verbose),
		),
		createSlider("Threshold", 1, 99, 50, c.SetThreshold),
		createSlider("Hysteresis", 0, 99, 0, c.SetHysteresisBand),
		widget.NewAccordion(
			widget.NewAccordionItem("Logs", logScroll),
		),
	)

	d.lastDrive.Go()

	go func() {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()

		c.Battery()
		for {
			select {
			case <-ctx.Done():
				d.lastDrive.Stop()
				fyne.Do(func() {
					d.app.Quit()
				})
				return
			case <-ticker.C:
				c.Status()
			}
		}
	}()

	window.SetContent(content)
	window.Resize(fyne.NewSize(360, 480))
	window.Show()
}

// Run shows the dashboard and blocks until the application quits
func (d *Dashboard) Run(ctx context.Context, w io.Writer) {
	d.Show(ctx, w)
	d.app.Run()
}
