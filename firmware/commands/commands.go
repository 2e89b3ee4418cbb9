package commands

import (
	"errors"
	"io"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Debug()
	Verbose()
	Battery()
	Cancel()
	TestDrive() error
	SetThreshold(int)
	SetHysteresisBand(int)

	// I/O
	ReadByte() (byte, error)
}

var (
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current status line.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Toggle verbose output.",
	}
	BatteryCommand = &Command{
		Flag:      'B',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Battery()
			return nil
		},
		Description: "Print the battery voltage.",
	}
	CancelCommand = &Command{
		Flag:      'X',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Cancel()
			return nil
		},
		Description: "Press the cancel button. Goes through the same debounce as the real button.",
	}
	TestDriveCommand = &Command{
		Flag:      'A',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			return c.TestDrive()
		},
		Description: "Schedule a drive as if a target was detected.",
	}
	ThresholdCommand = &Command{
		Flag:      't',
		InputSize: 2,
		Run: func(c Controller, b []byte) error {
			cm, err := digits(b)
			if err != nil {
				return err
			}
			if cm == 0 {
				return errors.New("invalid input: threshold must be at least 1cm")
			}
			c.SetThreshold(cm)
			return nil
		},
		Description: "Set the target distance threshold in cm. Input: two digits, 01-99.",
	}
	HysteresisCommand = &Command{
		Flag:      'h',
		InputSize: 2,
		Run: func(c Controller, b []byte) error {
			cm, err := digits(b)
			if err != nil {
				return err
			}
			c.SetHysteresisBand(cm)
			return nil
		},
		Description: "Set the hysteresis band in cm added to the threshold before a drive is cancelled. Input: two digits, 00-99.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			println("Available Commands:")
			for _, cmd := range commands {
				println(string(cmd.Flag) + ": " + cmd.Description)
			}
			return nil
		},
	}
)

// digits parses a fixed-width decimal argument
func digits(b []byte) (int, error) {
	v := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errors.New("invalid input: " + string(b))
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}

var commands = []*Command{
	DebugCommand,
	VerboseCommand,
	BatteryCommand,
	CancelCommand,
	TestDriveCommand,
	ThresholdCommand,
	HysteresisCommand,
}

// Run reads commands from c until it returns io.EOF. Other read errors are retried
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := c.ReadByte()
		if err == io.EOF {
			return
		}
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		in := make([]byte, cmd.InputSize)
		for i := 0; i < int(cmd.InputSize); {
			b, err := c.ReadByte()
			if err == io.EOF {
				return
			}
			if err != nil {
				continue
			}

			in[i] = b
			i++
		}

		err = cmd.Run(c, in)
		if err != nil {
			println("error:", err.Error())
		}
	}
}
