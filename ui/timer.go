package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows the time since the last drive
type timer struct {
	startTime time.Time
	mtx       *sync.Mutex
	text      *canvas.Text
	started   chan struct{}
	once      sync.Once
	stop      chan struct{}
}

func newTimer() *timer {
	return &timer{
		startTime: time.Time{},
		mtx:       &sync.Mutex{},
		text:      canvas.NewText("--:--", nil),
		started:   make(chan struct{}),
		stop:      make(chan struct{}),
	}
}

// Set restarts the timer. The display starts counting on the first Set
func (t *timer) Set(start time.Time) {
	t.mtx.Lock()
	t.startTime = start
	t.mtx.Unlock()
	t.once.Do(func() { close(t.started) })
}

func (t *timer) Stop() {
	close(t.stop)
}

func (t *timer) Go() {
	go func() {
		select {
		case <-t.started:
		case <-t.stop:
			return
		}

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}
			fyne.Do(func() {
				t.mtx.Lock()
				t.text.Text = formatElapsed(time.Since(t.startTime))
				t.mtx.Unlock()
				t.text.Refresh()
			})
		}
	}()
}

// formatElapsed renders d as MM:SS, or HH:MM:SS after an hour
func formatElapsed(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
