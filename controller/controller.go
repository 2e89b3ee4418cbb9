// Package controller talks to a Pico running the catminator firmware over its USB serial console.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds each serial read so Run notices a cancelled context
const readTimeout = 100 * time.Millisecond

// Controller forwards console commands to the device and the device's output back
type Controller struct {
	port io.ReadWriteCloser
}

// New opens the configured serial port
func New(cfg Config) (*Controller, error) {
	if cfg.SerialPort == SerialPortNone {
		return &Controller{}, nil
	}
	if cfg.SerialPort == "" {
		return nil, errors.New("missing serial port")
	}

	mode, err := cfg.mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(cfg.SerialPort, mode)
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", cfg.SerialPort, err)
	}

	err = port.SetReadTimeout(readTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}

	return &Controller{port: port}, nil
}

// NewFromEnv opens the serial port named by SERIAL_PORT
func NewFromEnv() (*Controller, error) {
	return New(ConfigFromEnv())
}

// NewWithPort uses an already open connection
func NewWithPort(port io.ReadWriteCloser) *Controller {
	return &Controller{port: port}
}

// Run writes everything read from in to the device and copies the device's output to out.
// It returns when ctx is done or the device closes the connection
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if c.port == nil {
		return echo(ctx, in, out)
	}

	writeErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(c.port, in)
		if err != nil {
			writeErr <- fmt.Errorf("error writing to device: %w", err)
		}
	}()

	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-writeErr:
			return err
		default:
		}

		n, err := c.port.Read(buf)
		if n > 0 {
			_, werr := out.Write(buf[:n])
			if werr != nil {
				return fmt.Errorf("error writing output: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading from device: %w", err)
		}
	}
}

// echo stands in for a device when no serial port is used
func echo(ctx context.Context, in io.Reader, out io.Writer) error {
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(out, in)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

func (c *Controller) Close() error {
	if c.port == nil {
		return nil
	}
	return c.port.Close()
}
