package ui

import (
	"strings"
	"sync"

	"github.com/catminator/catminator"
)

const maxLogLines = 200

// statusTracker splits the device output into lines and follows its status lines
type statusTracker struct {
	mu      sync.Mutex
	partial string
	last    catminator.Status
	seen    bool
	drives  int
	logs    []string
}

// feed returns the lines completed by p
func (t *statusTracker) feed(p []byte) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.partial + string(p)
	lines := strings.Split(data, "\n")
	t.partial = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		result = append(result, line)

		t.logs = append(t.logs, line)
		if len(t.logs) > maxLogLines {
			t.logs = t.logs[len(t.logs)-maxLogLines:]
		}
	}
	return result
}

// update records s and reports whether it shows a drive that was not seen before
func (t *statusTracker) update(s catminator.Status) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	started := s.State != catminator.MotorStateIdle && (!t.seen || t.last.State == catminator.MotorStateIdle)
	if started {
		t.drives++
	}
	t.last = s
	t.seen = true
	return started
}

func (t *statusTracker) log() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.logs, "\n")
}

func (t *statusTracker) driveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drives
}
