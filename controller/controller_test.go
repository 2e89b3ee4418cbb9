package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort reads the device's output from a pipe and records what was written to it
type fakePort struct {
	r *io.PipeReader

	mu      sync.Mutex
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

// idlePort behaves like a serial port whose read timeout keeps expiring
type idlePort struct{}

func (idlePort) Read(b []byte) (int, error) {
	time.Sleep(time.Millisecond)
	return 0, nil
}

func (idlePort) Write(b []byte) (int, error) { return len(b), nil }

func (idlePort) Close() error { return nil }

func TestRun(t *testing.T) {
	t.Run("ForwardsBothDirections", func(t *testing.T) {
		r, w := io.Pipe()
		port := &fakePort{r: r}
		c := NewWithPort(port)

		var out bytes.Buffer
		done := make(chan error, 1)
		go func() {
			done <- c.Run(context.Background(), strings.NewReader("Dt30"), &out)
		}()

		require.Eventually(t, func() bool { return port.Written() == "Dt30" }, time.Second, time.Millisecond)

		_, err := w.Write([]byte("[1s] state=Idle distance=-\r\n"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		require.NoError(t, <-done)
		assert.Equal(t, "[1s] state=Idle distance=-\r\n", out.String())

		require.NoError(t, c.Close())
		assert.True(t, port.closed)
	})

	t.Run("ReadError", func(t *testing.T) {
		r, w := io.Pipe()
		c := NewWithPort(&fakePort{r: r})

		done := make(chan error, 1)
		go func() {
			done <- c.Run(context.Background(), strings.NewReader(""), io.Discard)
		}()

		w.CloseWithError(errors.New("unplugged"))
		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unplugged")
	})

	t.Run("StopsWithContext", func(t *testing.T) {
		c := NewWithPort(idlePort{})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		require.NoError(t, c.Run(ctx, strings.NewReader(""), io.Discard))
	})

	t.Run("NoSerialPortEchoes", func(t *testing.T) {
		c, err := New(Config{SerialPort: SerialPortNone})
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, c.Run(context.Background(), strings.NewReader("D\n"), &out))
		assert.Equal(t, "D\n", out.String())
		require.NoError(t, c.Close())
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  string
	}{
		{"MissingPort", Config{BaudRate: DefaultBaudRate}, "missing serial port"},
		{"InvalidBaudRate", Config{SerialPort: "/dev/ttyACM0", BaudRate: "fast"}, `invalid baud rate "fast"`},
		{"ZeroBaudRate", Config{SerialPort: "/dev/ttyACM0", BaudRate: "0"}, `invalid baud rate "0"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Equal(t, tt.err, err.Error())
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "")
		t.Setenv("BAUD_RATE", "")
		assert.Equal(t, Config{BaudRate: "115200"}, ConfigFromEnv())
	})

	t.Run("Set", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyACM0")
		t.Setenv("BAUD_RATE", "9600")
		assert.Equal(t, Config{SerialPort: "/dev/ttyACM0", BaudRate: "9600"}, ConfigFromEnv())
	})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controller.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial_port: /dev/cu.usbmodem2101\n"), 0o600))

	t.Run("FileWithDefaultBaudRate", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "")
		t.Setenv("BAUD_RATE", "")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, Config{SerialPort: "/dev/cu.usbmodem2101", BaudRate: "115200"}, cfg)
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyACM1")
		t.Setenv("BAUD_RATE", "")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/dev/ttyACM1", cfg.SerialPort)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFilterUSBPorts(t *testing.T) {
	ports := filterUSBPorts([]string{"/dev/ttyS0", "/dev/ttyACM0", "/dev/cu.usbmodem2101", "/dev/cu.Bluetooth-Incoming-Port"})
	assert.Equal(t, []string{"/dev/ttyACM0", "/dev/cu.usbmodem2101"}, ports)

	assert.Empty(t, filterUSBPorts([]string{"/dev/ttyS0"}))
}
