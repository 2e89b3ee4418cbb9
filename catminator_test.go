package catminator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	tests := []struct {
		name  string
		in    Sample
		valid bool
		cm    int
	}{
		{"NoEcho", NoEcho, false, 0},
		{"Negative", Sample(-20), false, 0},
		{"Zero", Sample(0), true, 0},
		{"FiftyCentimeters", Sample(2900), true, 50},
		{"RoundsDown", Sample(2899), true, 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.in.Valid())
			if tt.valid {
				assert.Equal(t, tt.cm, tt.in.Centimeters())
			}
		})
	}
}

func TestMotorState(t *testing.T) {
	for ms := MotorStateIdle; ms <= MotorStateDrivingReverse; ms++ {
		assert.Equal(t, ms, ParseMotorState(ms.String()))
	}

	assert.False(t, MotorStateIdle.Running())
	assert.False(t, MotorStateScheduled.Running())
	assert.True(t, MotorStateDrivingForward.Running())
	assert.True(t, MotorStatePauseBeforeReversal.Running())
	assert.True(t, MotorStateDrivingReverse.Running())
	assert.Equal(t, MotorStateIdle, ParseMotorState("Bogus"))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		line   string
	}{
		{
			"NoDistance",
			Status{State: MotorStateIdle, Distance: -1, Threshold: 50},
			"state=Idle distance=- threshold=50 band=0 cooldown=false halted=false battery_low=false",
		},
		{
			"Driving",
			Status{State: MotorStateDrivingForward, Distance: 32, Threshold: 50, HysteresisBand: 5, Cooldown: true},
			"state=DrivingForward distance=32 threshold=50 band=5 cooldown=true halted=false battery_low=false",
		},
		{
			"Halted",
			Status{State: MotorStateIdle, Distance: 80, Threshold: 45, Halted: true, BatteryLow: true},
			"state=Idle distance=80 threshold=45 band=0 cooldown=false halted=true battery_low=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.line, tt.status.String())

			parsed, err := ParseStatus("[1m2.5s] " + tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.status, parsed)
		})
	}
}

func TestParseStatusErrors(t *testing.T) {
	_, err := ParseStatus("[-] Scheduling drive")
	assert.ErrorIs(t, err, ErrNoStatus)

	_, err = ParseStatus("state=Idle distance=abc")
	assert.Error(t, err)

	_, err = ParseStatus("state=Idle junk")
	assert.Error(t, err)
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := WriterLogger{W: &buf, Prefix: "[-] "}

	l.Log("hello")
	l.Debug("hidden")
	l.Verbose = true
	l.Debug("shown")

	assert.Equal(t, "[-] hello\n[-] shown\n", buf.String())
}
