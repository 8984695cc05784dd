package sched

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger returns a logger that discards output; scheduler tests
// assert behavior, not log lines.
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// TestInWindow verifies the working-hours gate, including both
// boundaries: the start hour is inside, the end hour is outside.
func TestInWindow(t *testing.T) {
	s := New(Options{
		Interval:  time.Minute,
		StartHour: 9,
		EndHour:   21,
		Send:      func(context.Context) {},
		Logger:    testLogger(),
	})

	at := func(hour int) time.Time {
		return time.Date(2026, 8, 26, hour, 30, 0, 0, time.Local)
	}

	assert.False(t, s.InWindow(at(8)))
	assert.True(t, s.InWindow(at(9)), "start hour is inclusive")
	assert.True(t, s.InWindow(at(14)))
	assert.True(t, s.InWindow(at(20)))
	assert.False(t, s.InWindow(at(21)), "end hour is exclusive")
	assert.False(t, s.InWindow(at(23)))
}

// TestSetInterval verifies runtime interval changes and that
// non-positive values are ignored.
func TestSetInterval(t *testing.T) {
	s := New(Options{
		Interval:  time.Hour,
		StartHour: 0,
		EndHour:   23,
		Send:      func(context.Context) {},
		Logger:    testLogger(),
	})

	s.SetInterval(15 * time.Minute)
	assert.Equal(t, 15*time.Minute, s.Interval())

	s.SetInterval(0)
	assert.Equal(t, 15*time.Minute, s.Interval(), "zero interval must be ignored")

	s.SetInterval(-time.Minute)
	assert.Equal(t, 15*time.Minute, s.Interval(), "negative interval must be ignored")
}

// TestRun_FiresInWindow verifies that the loop fires repeatedly while
// inside the window and stops when the context is cancelled.
func TestRun_FiresInWindow(t *testing.T) {
	var sends atomic.Int32
	fired := make(chan struct{}, 16)

	s := New(Options{
		Interval:     5 * time.Millisecond,
		InitialDelay: time.Millisecond,
		StartHour:    0,
		EndHour:      23,
		Send: func(context.Context) {
			sends.Add(1)
			select {
			case fired <- struct{}{}:
			default:
			}
		},
		Logger: testLogger(),
		// Pin the clock mid-window so the test passes at any wall time.
		Now: func() time.Time {
			return time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Wait for at least three sends, then stop.
	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for scheduled send")
		}
	}
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, sends.Load(), int32(3))
}

// TestRun_SkipsOutsideWindow verifies that ticks outside working hours
// do not call the send callback.
func TestRun_SkipsOutsideWindow(t *testing.T) {
	var sends atomic.Int32

	s := New(Options{
		Interval:     2 * time.Millisecond,
		InitialDelay: time.Millisecond,
		StartHour:    9,
		EndHour:      21,
		Send:         func(context.Context) { sends.Add(1) },
		Logger:       testLogger(),
		// Pin the clock to the middle of the night.
		Now: func() time.Time {
			return time.Date(2026, 8, 26, 3, 0, 0, 0, time.Local)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(0), sends.Load(), "no sends outside the window")
}
