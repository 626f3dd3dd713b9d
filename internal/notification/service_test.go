package notification

import (
	"sync"
	"testing"
	"time"
)

type captureSender struct {
	mu    sync.Mutex
	sends []string
}

func (s *captureSender) Send(id, title, body string, actions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, id)
	return nil
}

func (s *captureSender) count(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, got := range s.sends {
		if got == id {
			n++
		}
	}
	return n
}

func TestScheduleIsIdempotent(t *testing.T) {
	sender := &captureSender{}
	s := NewScheduler(sender, time.Minute)

	past := time.Now().Add(-time.Second)
	s.Schedule("task-1", past, "first", "", nil)
	s.Schedule("task-1", past, "second", "", nil)

	s.deliverDue(time.Now())

	if got := sender.count("task-1"); got != 1 {
		t.Errorf("Expected a replaced schedule to deliver exactly once, got %d", got)
	}
}

func TestCancelUnknownIsNoOp(t *testing.T) {
	s := NewScheduler(&captureSender{}, time.Minute)
	s.Cancel("never-scheduled")
	if s.Pending("never-scheduled") {
		t.Error("Expected nothing pending")
	}
}

func TestCancelRemovesPendingAlert(t *testing.T) {
	sender := &captureSender{}
	s := NewScheduler(sender, time.Minute)

	s.Schedule("task-1", time.Now().Add(-time.Second), "t", "", nil)
	s.Cancel("task-1")
	s.deliverDue(time.Now())

	if got := sender.count("task-1"); got != 0 {
		t.Errorf("Expected cancelled alert not to deliver, got %d sends", got)
	}
}

func TestFutureAlertNotDeliveredEarly(t *testing.T) {
	sender := &captureSender{}
	s := NewScheduler(sender, time.Minute)

	s.Schedule("task-1", time.Now().Add(time.Hour), "t", "", nil)
	s.deliverDue(time.Now())

	if got := sender.count("task-1"); got != 0 {
		t.Errorf("Expected future alert undelivered, got %d sends", got)
	}
	if !s.Pending("task-1") {
		t.Error("Expected future alert still pending")
	}
}

func TestDispatchLoopDeliversDueAlerts(t *testing.T) {
	sender := &captureSender{}
	s := NewScheduler(sender, 10*time.Millisecond)

	s.Schedule("task-1", time.Now().Add(-time.Second), "t", "", nil)
	s.Start()
	defer s.Stop()

	deadline := time.After(time.Second)
	for sender.count("task-1") == 0 {
		select {
		case <-deadline:
			t.Fatal("Alert not delivered within a second")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if s.Pending("task-1") {
		t.Error("Expected delivered alert removed from registry")
	}
}

func TestActionRouting(t *testing.T) {
	s := NewScheduler(&captureSender{}, time.Minute)

	var gotAction, gotEntity string
	s.OnAction(func(actionID, entityID string) {
		gotAction = actionID
		gotEntity = entityID
	})

	s.HandleAction("complete", "task-9")
	if gotAction != "complete" || gotEntity != "task-9" {
		t.Errorf("Expected callback with (complete, task-9), got (%s, %s)", gotAction, gotEntity)
	}

	// No handler registered is tolerated.
	s2 := NewScheduler(&captureSender{}, time.Minute)
	s2.HandleAction("snooze-15m", "task-1")
}
