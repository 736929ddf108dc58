package reactor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunDrainsPostedTasks(t *testing.T) {
	r := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go r.Run(ctx)

	var n int32
	done := make(chan struct{})
	r.Post(func() { atomic.AddInt32(&n, 1) })
	r.Post(func() { atomic.AddInt32(&n, 1) })
	r.Post(func() { atomic.AddInt32(&n, 1); close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks never ran")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&n))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	r := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestDefaultQueueDepthAppliedForNonPositiveInput(t *testing.T) {
	r := New(0)
	assert.Equal(t, 64, cap(r.tasks))

	r = New(-5)
	assert.Equal(t, 64, cap(r.tasks))
}
