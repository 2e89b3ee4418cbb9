package controller

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.bug.st/serial"
	"gopkg.in/yaml.v3"
)

// DefaultBaudRate matches the Pico's USB serial console
const DefaultBaudRate = "115200"

// SerialPortNone runs without a device. Input is echoed to the output
const SerialPortNone = "None"

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// Config selects the serial port of the device
type Config struct {
	SerialPort string `yaml:"serial_port"`
	BaudRate   string `yaml:"baud_rate"`
}

// ConfigFromEnv reads SERIAL_PORT and BAUD_RATE
func ConfigFromEnv() Config {
	cfg := Config{
		SerialPort: os.Getenv("SERIAL_PORT"),
		BaudRate:   os.Getenv("BAUD_RATE"),
	}
	if cfg.BaudRate == "" {
		cfg.BaudRate = DefaultBaudRate
	}
	return cfg
}

// LoadConfig reads a YAML config file. Environment variables override the file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}

	cfg := Config{BaudRate: DefaultBaudRate}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}

	if port := os.Getenv("SERIAL_PORT"); port != "" {
		cfg.SerialPort = port
	}
	if baud := os.Getenv("BAUD_RATE"); baud != "" {
		cfg.BaudRate = baud
	}

	return cfg, nil
}

func (c Config) mode() (*serial.Mode, error) {
	baudRate, err := strconv.Atoi(c.BaudRate)
	if err != nil || baudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %q", c.BaudRate)
	}
	return &serial.Mode{BaudRate: baudRate}, nil
}

// GetSerialPorts lists the USB serial ports, which is where a Pico shows up
func GetSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	usbPorts := filterUSBPorts(ports)
	if len(usbPorts) == 0 {
		return nil, ErrNoUSBSerial
	}

	return usbPorts, nil
}

func filterUSBPorts(ports []string) []string {
	var result []string
	for _, p := range ports {
		if strings.Contains(p, "usb") || strings.Contains(p, "ttyACM") {
			result = append(result, p)
		}
	}
	return result
}
