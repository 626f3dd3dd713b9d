package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"planora-backend/internal/task/domain"
	"planora-backend/pkg/events"
)

type memoryTaskRepo struct {
	mu        sync.Mutex
	tasks     []domain.Task
	saveCalls int
	failSave  bool
}

func (r *memoryTaskRepo) LoadAll() ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *memoryTaskRepo) SaveAll(tasks []domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errors.New("disk full")
	}
	r.saveCalls++
	r.tasks = make([]domain.Task, len(tasks))
	copy(r.tasks, tasks)
	return nil
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]time.Time)}
}

func (s *fakeScheduler) Schedule(id string, fireAt time.Time, title, body string, actions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[id] = fireAt
}

func (s *fakeScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, id)
	s.cancelled = append(s.cancelled, id)
}

func newTestUsecase(t *testing.T) (TaskUsecase, *memoryTaskRepo, *fakeScheduler) {
	t.Helper()
	repo := &memoryTaskRepo{tasks: []domain.Task{}}
	sched := newFakeScheduler()
	uc, err := NewTaskUsecase(repo, sched, events.NewBus(), 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTaskUsecase failed: %v", err)
	}
	return uc, repo, sched
}

func rfc3339(t time.Time) *string {
	s := t.Format(time.RFC3339)
	return &s
}

func TestSortContract(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	d1 := time.Now().Add(24 * time.Hour)
	d2 := time.Now().Add(48 * time.Hour)

	// Insertion order: low/d2, high/d1 (a), medium/none, high/d1 (b).
	if _, err := uc.Create(CreateTaskRequest{Title: "low", Priority: "low", DueDate: rfc3339(d2)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := uc.Create(CreateTaskRequest{Title: "high-a", Priority: "high", DueDate: rfc3339(d1)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := uc.Create(CreateTaskRequest{Title: "medium", Priority: "medium"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := uc.Create(CreateTaskRequest{Title: "high-b", Priority: "high", DueDate: rfc3339(d1)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	inbox := uc.FilteredView(ViewInbox, "")
	if len(inbox) != 4 {
		t.Fatalf("Expected 4 tasks in inbox, got %d", len(inbox))
	}

	want := []string{"high-a", "high-b", "medium", "low"}
	for i, title := range want {
		if inbox[i].Title != title {
			t.Errorf("inbox[%d] = %q, want %q", i, inbox[i].Title, title)
		}
	}
}

func TestDueDateOrderingWithinPriority(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	later := time.Now().Add(72 * time.Hour)
	sooner := time.Now().Add(2 * time.Hour)

	uc.Create(CreateTaskRequest{Title: "undated-old", Priority: "high"})
	time.Sleep(2 * time.Millisecond)
	uc.Create(CreateTaskRequest{Title: "later", Priority: "high", DueDate: rfc3339(later)})
	time.Sleep(2 * time.Millisecond)
	uc.Create(CreateTaskRequest{Title: "undated-new", Priority: "high"})
	uc.Create(CreateTaskRequest{Title: "sooner", Priority: "high", DueDate: rfc3339(sooner)})

	inbox := uc.FilteredView(ViewInbox, "")
	want := []string{"sooner", "later", "undated-new", "undated-old"}
	for i, title := range want {
		if inbox[i].Title != title {
			t.Errorf("inbox[%d] = %q, want %q", i, inbox[i].Title, title)
		}
	}
}

func TestToggleCompletionScenario(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	tomorrow := time.Now().Add(24 * time.Hour)
	task, err := uc.Create(CreateTaskRequest{Title: "Pay rent", Priority: "high", DueDate: rfc3339(tomorrow)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	toggled, err := uc.ToggleCompletion(task.ID)
	if err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}

	if toggled.Status != domain.TaskStatusCompleted {
		t.Errorf("Expected status completed, got %s", toggled.Status)
	}
	if toggled.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to be set")
	}
	if since := time.Since(*toggled.CompletedAt); since < 0 || since > 5*time.Second {
		t.Errorf("CompletedAt not within tolerance of now: %v", since)
	}
	if !toggled.IsCompleted() {
		t.Error("IsCompleted should report true for completed status")
	}

	for _, got := range uc.FilteredView(ViewInbox, "") {
		if got.ID == task.ID {
			t.Error("Completed task must not appear in inbox")
		}
	}
	inHistory := false
	for _, got := range uc.FilteredView(ViewHistory, "") {
		if got.ID == task.ID {
			inHistory = true
		}
	}
	if !inHistory {
		t.Error("Completed task must appear in history")
	}

	// Toggling back clears the completion timestamp.
	back, err := uc.ToggleCompletion(task.ID)
	if err != nil {
		t.Fatalf("ToggleCompletion back failed: %v", err)
	}
	if back.Status != domain.TaskStatusPending || back.CompletedAt != nil {
		t.Errorf("Expected pending with nil CompletedAt, got %s / %v", back.Status, back.CompletedAt)
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	title := "nope"
	if _, err := uc.Update("missing-id", TaskUpdateRequest{Title: &title}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if err := uc.Delete("missing-id"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound on delete, got %v", err)
	}
}

func TestStatsOverdueComputation(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	past := time.Now().Add(-24 * time.Hour)
	uc.Create(CreateTaskRequest{Title: "overdue", DueDate: rfc3339(past)})
	donePast, _ := uc.Create(CreateTaskRequest{Title: "done past due", DueDate: rfc3339(past)})
	uc.Create(CreateTaskRequest{Title: "future", DueDate: rfc3339(time.Now().Add(time.Hour))})

	if _, err := uc.MarkCompleted(donePast.ID); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	stats := uc.Stats()
	if stats.Total != 3 {
		t.Errorf("Expected total 3, got %d", stats.Total)
	}
	if stats.Overdue != 1 {
		t.Errorf("Expected exactly the pending past-due task counted overdue, got %d", stats.Overdue)
	}
	if stats.Completed != 1 {
		t.Errorf("Expected 1 completed, got %d", stats.Completed)
	}
	if stats.CompletionRate != 1.0/3.0 {
		t.Errorf("Unexpected completion rate %f", stats.CompletionRate)
	}
}

func TestStatsEmptyCollection(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	stats := uc.Stats()
	if stats.Total != 0 || stats.CompletionRate != 0 || stats.OverdueRate != 0 {
		t.Errorf("Expected zeroed stats on empty collection, got %+v", stats)
	}
}

func TestEveryMutationFlushes(t *testing.T) {
	uc, repo, _ := newTestUsecase(t)

	task, _ := uc.Create(CreateTaskRequest{Title: "a"})
	uc.ToggleCompletion(task.ID)
	uc.Delete(task.ID)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.saveCalls != 3 {
		t.Errorf("Expected 3 flushes for 3 mutations, got %d", repo.saveCalls)
	}
	if len(repo.tasks) != 0 {
		t.Errorf("Expected empty persisted collection after delete, got %d", len(repo.tasks))
	}
}

func TestSaveFailureKeptOutOfBand(t *testing.T) {
	uc, repo, _ := newTestUsecase(t)

	repo.mu.Lock()
	repo.failSave = true
	repo.mu.Unlock()

	task, err := uc.Create(CreateTaskRequest{Title: "kept in memory"})
	if err != nil {
		t.Fatalf("Create must not fail on persistence error: %v", err)
	}
	if uc.SaveError() == "" {
		t.Error("Expected SaveError to report the failed flush")
	}

	// In-memory state is the source of truth.
	got, err := uc.GetByID(task.ID)
	if err != nil || got.Title != "kept in memory" {
		t.Errorf("Expected task retrievable despite save failure, got %v / %v", got, err)
	}

	repo.mu.Lock()
	repo.failSave = false
	repo.mu.Unlock()
	uc.Create(CreateTaskRequest{Title: "second"})
	if uc.SaveError() != "" {
		t.Errorf("Expected SaveError cleared after successful flush, got %q", uc.SaveError())
	}
}

func TestReminderSchedulingLifecycle(t *testing.T) {
	uc, _, sched := newTestUsecase(t)

	at := time.Now().Add(time.Hour)
	task, err := uc.Create(CreateTaskRequest{Title: "call mom", ReminderAt: rfc3339(at)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sched.mu.Lock()
	if _, ok := sched.scheduled[task.ID]; !ok {
		t.Error("Expected reminder scheduled on create")
	}
	sched.mu.Unlock()

	// Completion cancels the alert.
	if _, err := uc.MarkCompleted(task.ID); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	sched.mu.Lock()
	if _, ok := sched.scheduled[task.ID]; ok {
		t.Error("Expected reminder cancelled when task completed")
	}
	sched.mu.Unlock()

	// Reopening reschedules, deletion cancels again.
	if _, err := uc.MarkPending(task.ID); err != nil {
		t.Fatalf("MarkPending failed: %v", err)
	}
	sched.mu.Lock()
	if _, ok := sched.scheduled[task.ID]; !ok {
		t.Error("Expected reminder rescheduled when task reopened")
	}
	sched.mu.Unlock()

	if err := uc.Delete(task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	sched.mu.Lock()
	if _, ok := sched.scheduled[task.ID]; ok {
		t.Error("Expected reminder cancelled on delete")
	}
	sched.mu.Unlock()
}

func TestSnoozePushesReminderForward(t *testing.T) {
	uc, _, sched := newTestUsecase(t)

	at := time.Now().Add(-time.Minute)
	task, _ := uc.Create(CreateTaskRequest{Title: "standup", ReminderAt: rfc3339(at)})

	snoozed, err := uc.Snooze(task.ID)
	if err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	if snoozed.Reminder == nil || snoozed.Reminder.At == nil {
		t.Fatal("Expected reminder present after snooze")
	}
	until := time.Until(*snoozed.Reminder.At)
	if until < 14*time.Minute || until > 16*time.Minute {
		t.Errorf("Expected reminder ~15m out, got %v", until)
	}

	sched.mu.Lock()
	fireAt, ok := sched.scheduled[task.ID]
	sched.mu.Unlock()
	if !ok || !fireAt.Equal(*snoozed.Reminder.At) {
		t.Error("Expected scheduler updated with snoozed time")
	}
}

func TestNotificationActions(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	task, _ := uc.Create(CreateTaskRequest{Title: "reply to email"})
	uc.HandleNotificationAction(ActionComplete, task.ID)

	got, _ := uc.GetByID(task.ID)
	if !got.IsCompleted() {
		t.Error("Expected complete action to toggle the task")
	}
}

func TestSelectionClearedOnDelete(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	task, _ := uc.Create(CreateTaskRequest{Title: "a"})
	if err := uc.Select(task.ID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if sel := uc.Selected(); sel == nil || sel.ID != task.ID {
		t.Fatal("Expected selection to stick")
	}

	uc.Delete(task.ID)
	if sel := uc.Selected(); sel != nil {
		t.Errorf("Expected selection cleared after delete, got %v", sel)
	}
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	uc.Create(CreateTaskRequest{Title: "Buy groceries", Tags: []string{"shopping"}})
	uc.Create(CreateTaskRequest{Title: "Dentist", Notes: "bring insurance card"})
	uc.Create(CreateTaskRequest{Title: "Flight", Location: &domain.Location{Name: "Airport", Address: "1 Terminal Rd"}})

	if got := uc.FilteredView(ViewSearch, "SHOPPING"); len(got) != 1 || got[0].Title != "Buy groceries" {
		t.Errorf("Expected tag match, got %v", got)
	}
	if got := uc.FilteredView(ViewSearch, "insurance"); len(got) != 1 || got[0].Title != "Dentist" {
		t.Errorf("Expected notes match, got %v", got)
	}
	if got := uc.FilteredView(ViewSearch, "airport"); len(got) != 1 || got[0].Title != "Flight" {
		t.Errorf("Expected location match, got %v", got)
	}
	if got := uc.FilteredView(ViewSearch, ""); len(got) != 3 {
		t.Errorf("Expected empty query to return all non-archived, got %d", len(got))
	}
}

func TestInvalidTagRejected(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	if _, err := uc.Create(CreateTaskRequest{Title: "x", Tags: []string{"not-a-tag"}}); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("Expected ErrInvalidTag, got %v", err)
	}
}

func TestGroupedHistory(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	a, _ := uc.Create(CreateTaskRequest{Title: "a"})
	b, _ := uc.Create(CreateTaskRequest{Title: "b"})
	uc.MarkCompleted(a.ID)
	uc.MarkCompleted(b.ID)

	groups := uc.GroupedHistory()
	if len(groups) != 1 {
		t.Fatalf("Expected both tasks grouped under today, got %d groups", len(groups))
	}
	if len(groups[0].Tasks) != 2 {
		t.Errorf("Expected 2 tasks in today's group, got %d", len(groups[0].Tasks))
	}
	wantLabel := time.Now().Format("January 2, 2006")
	if groups[0].Label != wantLabel {
		t.Errorf("Expected label %q, got %q", wantLabel, groups[0].Label)
	}
}

func TestSubTaskLifecycle(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	task, _ := uc.Create(CreateTaskRequest{Title: "pack"})
	withSub, err := uc.AddSubTask(task.ID, "passport")
	if err != nil {
		t.Fatalf("AddSubTask failed: %v", err)
	}
	if len(withSub.SubTasks) != 1 || withSub.SubTasks[0].Title != "passport" {
		t.Fatalf("Unexpected subtasks: %v", withSub.SubTasks)
	}

	subID := withSub.SubTasks[0].ID
	toggled, err := uc.ToggleSubTask(task.ID, subID)
	if err != nil || !toggled.SubTasks[0].Done {
		t.Errorf("Expected subtask toggled done, got %v / %v", toggled, err)
	}

	if _, err := uc.ToggleSubTask(task.ID, "missing"); !errors.Is(err, ErrSubTaskNotFound) {
		t.Errorf("Expected ErrSubTaskNotFound, got %v", err)
	}

	removed, err := uc.RemoveSubTask(task.ID, subID)
	if err != nil || len(removed.SubTasks) != 0 {
		t.Errorf("Expected subtask removed, got %v / %v", removed, err)
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	uc, repo, _ := newTestUsecase(t)

	task, _ := uc.Create(CreateTaskRequest{Title: "laundry"})
	savesBefore := repo.saveCalls

	title := "ironing"
	bogus := "bogus"
	if _, err := uc.Update(task.ID, TaskUpdateRequest{Title: &title, Status: &bogus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("Expected ErrInvalidStatus, got %v", err)
	}

	// The rejected update must not have touched anything.
	got, _ := uc.GetByID(task.ID)
	if got.Status != domain.TaskStatusPending {
		t.Errorf("Status after rejected update = %q, want pending", got.Status)
	}
	if got.Title != "laundry" {
		t.Errorf("Title after rejected update = %q, want unchanged", got.Title)
	}
	if !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Errorf("UpdatedAt advanced by rejected update")
	}
	if repo.saveCalls != savesBefore {
		t.Errorf("Rejected update caused %d flushes", repo.saveCalls-savesBefore)
	}
	if inbox := uc.FilteredView(ViewInbox, ""); len(inbox) != 1 || inbox[0].Status != domain.TaskStatusPending {
		t.Errorf("Inbox after rejected update = %v", inbox)
	}

	for _, status := range []string{"pending", "in_progress", "completed", "archived"} {
		s := status
		updated, err := uc.Update(task.ID, TaskUpdateRequest{Status: &s})
		if err != nil {
			t.Errorf("Update status %q failed: %v", status, err)
			continue
		}
		if string(updated.Status) != status {
			t.Errorf("Status = %q, want %q", updated.Status, status)
		}
	}
}

func TestUnknownSubTaskLeavesTaskUntouched(t *testing.T) {
	uc, repo, _ := newTestUsecase(t)

	task, _ := uc.Create(CreateTaskRequest{Title: "pack"})
	withSub, _ := uc.AddSubTask(task.ID, "passport")
	savesBefore := repo.saveCalls

	if _, err := uc.ToggleSubTask(task.ID, "missing"); !errors.Is(err, ErrSubTaskNotFound) {
		t.Fatalf("Expected ErrSubTaskNotFound, got %v", err)
	}
	if _, err := uc.RemoveSubTask(task.ID, "missing"); !errors.Is(err, ErrSubTaskNotFound) {
		t.Fatalf("Expected ErrSubTaskNotFound, got %v", err)
	}

	got, _ := uc.GetByID(task.ID)
	if !got.UpdatedAt.Equal(withSub.UpdatedAt) {
		t.Errorf("UpdatedAt advanced by failed subtask ops")
	}
	if repo.saveCalls != savesBefore {
		t.Errorf("Failed subtask ops caused %d flushes", repo.saveCalls-savesBefore)
	}
	if len(got.SubTasks) != 1 || got.SubTasks[0].Done {
		t.Errorf("SubTasks mutated by failed ops: %v", got.SubTasks)
	}
}
