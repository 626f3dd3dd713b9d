package notification

import (
	"sync"
	"time"

	"planora-backend/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Sender delivers a due alert to the platform notification surface.
type Sender interface {
	Send(id, title, body string, actions []string) error
}

// LogSender is the default delivery target when no platform binding is
// attached: alerts are written to the structured log.
type LogSender struct {
	log *logrus.Entry
}

func NewLogSender() *LogSender {
	return &LogSender{log: logger.Component("alerts")}
}

func (s *LogSender) Send(id, title, body string, actions []string) error {
	s.log.WithFields(logrus.Fields{
		"id":      id,
		"title":   title,
		"actions": actions,
	}).Info(body)
	return nil
}

type alert struct {
	ID      string
	FireAt  time.Time
	Title   string
	Body    string
	Actions []string
}

// Scheduler maps entity reminders to platform alerts. Scheduling is
// idempotent: a second Schedule for the same id replaces the first
// (cancel-then-add), so an id never produces duplicate alerts. Delivery is
// driven by a ticker loop; alerts whose fire time passed while the loop was
// stopped go out on the next tick rather than being dropped.
type Scheduler struct {
	mu       sync.Mutex
	pending  map[string]alert
	onAction func(actionID, entityID string)

	sender   Sender
	interval time.Duration
	stopChan chan struct{}
	log      *logrus.Entry
}

func NewScheduler(sender Sender, interval time.Duration) *Scheduler {
	return &Scheduler{
		pending:  make(map[string]alert),
		sender:   sender,
		interval: interval,
		stopChan: make(chan struct{}),
		log:      logger.Component("scheduler"),
	}
}

func (s *Scheduler) Schedule(id string, fireAt time.Time, title, body string, actions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = alert{ID: id, FireAt: fireAt, Title: title, Body: body, Actions: actions}
}

// Cancel removes any pending alert for id. Cancelling an unknown id is a
// no-op, not an error.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Pending reports whether an alert is scheduled for id.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// OnAction registers the callback invoked when the user interacts with a
// delivered alert.
func (s *Scheduler) OnAction(cb func(actionID, entityID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAction = cb
}

// HandleAction routes an inbound platform callback to the registered
// handler.
func (s *Scheduler) HandleAction(actionID, entityID string) {
	s.mu.Lock()
	cb := s.onAction
	s.mu.Unlock()

	if cb == nil {
		s.log.WithField("action", actionID).Warn("no action handler registered")
		return
	}
	cb(actionID, entityID)
}

// Start begins the dispatch loop.
func (s *Scheduler) Start() {
	s.log.WithField("interval", s.interval.String()).Info("starting alert scheduler")

	go func() {
		// Deliver anything already due before the first tick.
		s.deliverDue(time.Now())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.deliverDue(time.Now())
			case <-s.stopChan:
				s.log.Info("alert scheduler stopped")
				return
			}
		}
	}()
}

// Stop terminates the dispatch loop. Pending alerts stay registered.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) deliverDue(now time.Time) {
	s.mu.Lock()
	var due []alert
	for id, a := range s.pending {
		if !a.FireAt.After(now) {
			due = append(due, a)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, a := range due {
		if err := s.sender.Send(a.ID, a.Title, a.Body, a.Actions); err != nil {
			// Delivery failure is recovered locally, never propagated.
			s.log.WithError(err).WithField("id", a.ID).Error("failed to deliver alert")
		}
	}
}
