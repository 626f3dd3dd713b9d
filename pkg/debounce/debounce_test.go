package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCoalescesBurstIntoSingleCall(t *testing.T) {
	var calls int32
	d := New(50*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 call after burst, got %d", got)
	}
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	var calls int32
	d := New(30*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	d.Trigger()
	time.Sleep(100 * time.Millisecond)
	d.Trigger()
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected 2 calls for 2 separated triggers, got %d", got)
	}
}

func TestFlushRunsPendingImmediately(t *testing.T) {
	var calls int32
	d := New(10*time.Second, func() {
		atomic.AddInt32(&calls, 1)
	})

	d.Trigger()
	d.Flush()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected flush to run the pending callback, got %d calls", got)
	}

	// A flush with nothing pending is a no-op.
	d.Flush()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected idle flush to be a no-op, got %d calls", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	var calls int32
	d := New(20*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	d.Trigger()
	d.Stop()
	time.Sleep(80 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Expected no calls after Stop, got %d", got)
	}
}
