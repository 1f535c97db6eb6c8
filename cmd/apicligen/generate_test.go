package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalescerRunsOneAtATime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var active, maxActive, runs atomic.Int32
	release := make(chan struct{})
	c := newCoalescer(ctx, func() {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		<-release
		active.Add(-1)
		runs.Add(1)
	})

	c.trigger()
	require.Eventually(t, func() bool { return active.Load() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 10; i++ {
		go c.trigger()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load(), "triggers during a run should collapse into one")
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestCoalescerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	c := newCoalescer(ctx, func() { runs.Add(1) })
	cancel()
	time.Sleep(20 * time.Millisecond)

	c.trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runs.Load())
}
