package gate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDebouncer(t *testing.T) {
	tests := []struct {
		name     string
		gaps     []time.Duration
		expected int
	}{
		{"Single", nil, 1},
		{"TooSoon", []time.Duration{100 * time.Millisecond}, 1},
		{"FarEnough", []time.Duration{300 * time.Millisecond}, 2},
		{"ExactlyInterval", []time.Duration{250 * time.Millisecond}, 2},
		{"Bounce", []time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond, 300 * time.Millisecond}, 2},
		// rejected edges do not extend the window
		{"MeasuredFromAccepted", []time.Duration{200 * time.Millisecond, 100 * time.Millisecond}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(DefaultDebounce)

			now := epoch
			accepted := 0
			if d.Accept(now) {
				accepted++
			}
			for _, gap := range tt.gaps {
				now = now.Add(gap)
				if d.Accept(now) {
					accepted++
				}
			}

			assert.Equal(t, tt.expected, accepted)
		})
	}
}

func TestDebouncerClockSteppedBack(t *testing.T) {
	d := NewDebouncer(DefaultDebounce)

	assert.True(t, d.Accept(epoch))

	earlier := epoch.Add(-time.Hour)
	assert.True(t, d.Accept(earlier))
	assert.False(t, d.Accept(earlier.Add(100*time.Millisecond)))
	assert.True(t, d.Accept(earlier.Add(300*time.Millisecond)))
}

func TestGate(t *testing.T) {
	g := New(DefaultDebounce)
	assert.False(t, g.Pending())
	assert.False(t, g.Take())

	assert.True(t, g.Edge(epoch))
	assert.False(t, g.Edge(epoch.Add(10*time.Millisecond)))
	assert.True(t, g.Pending())
	assert.Equal(t, uint32(1), g.Accepted())

	assert.True(t, g.Take())
	assert.False(t, g.Pending())
	assert.False(t, g.Take())

	assert.True(t, g.Edge(epoch.Add(time.Second)))
	g.Clear()
	assert.False(t, g.Pending())
	assert.Equal(t, uint32(2), g.Accepted())
}

func TestGateConcurrentEdges(t *testing.T) {
	g := New(DefaultDebounce)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Edge(epoch)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(1), g.Accepted())
	assert.True(t, g.Take())
}
