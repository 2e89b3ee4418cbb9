package catminator

import "io"

// Logger receives the device's log lines. Debug lines are only shown in verbose mode
type Logger interface {
	Log(msg string)
	Debug(msg string)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Log(string)   {}
func (NopLogger) Debug(string) {}

// WriterLogger writes lines to an io.Writer
type WriterLogger struct {
	W       io.Writer
	Prefix  string
	Verbose bool
}

func (l WriterLogger) Log(msg string) {
	io.WriteString(l.W, l.Prefix+msg+"\n")
}

func (l WriterLogger) Debug(msg string) {
	if l.Verbose {
		l.Log(msg)
	}
}
