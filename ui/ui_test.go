package ui

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/catminator/catminator"
	"github.com/catminator/catminator/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerWrapper(t *testing.T) {
	tests := []struct {
		name     string
		run      func(*controllerWrapper)
		expected string
	}{
		{"Status", (*controllerWrapper).Status, "D\n"},
		{"Verbose", (*controllerWrapper).Verbose, "V\n"},
		{"Battery", (*controllerWrapper).Battery, "B\n"},
		{"Cancel", (*controllerWrapper).Cancel, "X\n"},
		{"TestDrive", (*controllerWrapper).TestDrive, "A\n"},
		{"Threshold", func(c *controllerWrapper) { c.SetThreshold(35) }, "t35\n"},
		{"ThresholdPadded", func(c *controllerWrapper) { c.SetThreshold(7) }, "t07\n"},
		{"Hysteresis", func(c *controllerWrapper) { c.SetHysteresisBand(0) }, "h00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.run(&controllerWrapper{writer: &buf})
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestStatusTrackerFeed(t *testing.T) {
	tracker := &statusTracker{}

	assert.Empty(t, tracker.feed([]byte("[1s] state=Id")))
	assert.Equal(t, []string{"[1s] state=Idle distance=-"}, tracker.feed([]byte("le distance=-\r\n")))
	assert.Equal(t, []string{"a", "b"}, tracker.feed([]byte("a\r\n\r\nb\nc")))
	assert.Equal(t, "[1s] state=Idle distance=-\na\nb", tracker.log())
}

func TestStatusTrackerLogLimit(t *testing.T) {
	tracker := &statusTracker{}
	for i := 0; i < maxLogLines+10; i++ {
		tracker.feed([]byte(strconv.Itoa(i) + "\n"))
	}

	assert.Len(t, tracker.logs, maxLogLines)
	assert.Equal(t, "10", tracker.logs[0])
}

func TestStatusTrackerUpdate(t *testing.T) {
	tracker := &statusTracker{}
	status := func(state catminator.MotorState) catminator.Status {
		return catminator.Status{State: state, Distance: -1}
	}

	assert.False(t, tracker.update(status(catminator.MotorStateIdle)))
	assert.True(t, tracker.update(status(catminator.MotorStateScheduled)))
	assert.False(t, tracker.update(status(catminator.MotorStateDrivingForward)))
	assert.False(t, tracker.update(status(catminator.MotorStateIdle)))
	assert.True(t, tracker.update(status(catminator.MotorStateDrivingReverse)))
	assert.Equal(t, 2, tracker.driveCount())
}

func TestStatusTrackerFirstStatusMidDrive(t *testing.T) {
	tracker := &statusTracker{}
	assert.True(t, tracker.update(catminator.Status{State: catminator.MotorStatePauseBeforeReversal}))
	assert.Equal(t, 1, tracker.driveCount())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", formatElapsed(0))
	assert.Equal(t, "01:05", formatElapsed(65*time.Second))
	assert.Equal(t, "59:59", formatElapsed(time.Hour-time.Second))
	assert.Equal(t, "02:00:01", formatElapsed(2*time.Hour+time.Second))
}

func TestStatusText(t *testing.T) {
	status, err := catminator.ParseStatus("[3s] state=Scheduled distance=42 threshold=50 band=5 cooldown=false halted=false battery_low=false")
	require.NoError(t, err)
	assert.Equal(t, "Scheduled", stateText(status))
	assert.Equal(t, "42cm", distanceText(status))

	status.Cooldown = true
	assert.Equal(t, "Scheduled (cooldown)", stateText(status))

	status.Halted = true
	assert.Equal(t, "Halted: battery low", stateText(status))

	status.Distance = -1
	assert.Equal(t, "no echo", distanceText(status))
}

func TestValidConfig(t *testing.T) {
	assert.True(t, validConfig(controller.Config{SerialPort: "/dev/ttyACM0", BaudRate: "115200"}))
	assert.True(t, validConfig(controller.Config{SerialPort: controller.SerialPortNone, BaudRate: "115200"}))
	assert.False(t, validConfig(controller.Config{BaudRate: "115200"}))
	assert.False(t, validConfig(controller.Config{SerialPort: "/dev/ttyACM0", BaudRate: "fast"}))
}

func TestConfigWindowPreferences(t *testing.T) {
	cw := NewConfigWindow(test.NewApp())

	var cfg controller.Config
	cw.load(&cfg)
	assert.Equal(t, controller.Config{BaudRate: controller.DefaultBaudRate}, cfg)

	cw.save(controller.Config{SerialPort: "/dev/ttyACM0", BaudRate: "9600"})

	cfg = controller.Config{}
	cw.load(&cfg)
	assert.Equal(t, controller.Config{SerialPort: "/dev/ttyACM0", BaudRate: "9600"}, cfg)

	cfg = controller.Config{SerialPort: "/dev/ttyACM1", BaudRate: "115200"}
	cw.load(&cfg)
	assert.Equal(t, "/dev/ttyACM1", cfg.SerialPort)
}
