package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopTicksAndRearms(t *testing.T) {
	done := make(chan struct{}, 4)
	l := New(5*time.Millisecond, func(f func()) { f() }, func() {
		done <- struct{}{}
	})
	l.Start()
	defer l.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("tick did not fire in time")
		}
	}
}

func TestStopCancelsPendingTick(t *testing.T) {
	ticked := false
	l := New(50*time.Millisecond, func(f func()) { f() }, func() {
		ticked = true
	})
	l.Start()
	l.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, ticked)
}

func TestDefaultIntervalIsTwoSeconds(t *testing.T) {
	require.Equal(t, 2*time.Second, DefaultInterval)
}
