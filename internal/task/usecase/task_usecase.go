package usecase

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"planora-backend/internal/task/domain"
	"planora-backend/internal/task/repository"
	"planora-backend/pkg/events"
	"planora-backend/pkg/fuzzy"
	"planora-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Actions offered on a delivered task reminder.
const (
	ActionComplete = "complete"
	ActionSnooze   = "snooze-15m"
)

// taskUsecase owns the in-memory task collection. All mutations are
// serialized through mu; the collection is the source of truth and every
// mutation flushes the whole collection to the repository.
type taskUsecase struct {
	mu           sync.Mutex
	tasks        []domain.Task
	selectedID   string
	lastSaveErr  string
	repo         repository.TaskRepository
	sched        ReminderScheduler
	bus          *events.Bus
	snoozeOffset time.Duration
	log          *logrus.Entry
}

// NewTaskUsecase loads the persisted collection (seeding sample data on
// first run) and re-registers reminders for tasks that carry one.
func NewTaskUsecase(repo repository.TaskRepository, sched ReminderScheduler, bus *events.Bus, snoozeOffset time.Duration) (TaskUsecase, error) {
	u := &taskUsecase{
		repo:         repo,
		sched:        sched,
		bus:          bus,
		snoozeOffset: snoozeOffset,
		log:          logger.Component("tasks"),
	}

	tasks, err := repo.LoadAll()
	switch {
	case err == nil:
		u.tasks = tasks
	case errors.Is(err, os.ErrNotExist):
		// Legitimate first run: seed and persist the sample collection.
		u.tasks = sampleTasks()
		if err := repo.SaveAll(u.tasks); err != nil {
			u.log.WithError(err).Error("failed to persist seed tasks")
			u.lastSaveErr = err.Error()
		}
	default:
		// Present but unreadable data is surfaced, not silently replaced.
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	for i := range u.tasks {
		u.scheduleReminder(&u.tasks[i])
	}

	return u, nil
}

func (u *taskUsecase) Create(req CreateTaskRequest) (*domain.Task, error) {
	tags, err := parseTags(req.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := domain.Task{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Notes:     req.Notes,
		Priority:  domain.ParsePriority(req.Priority),
		Tags:      tags,
		Status:    domain.TaskStatusPending,
		Location:  req.Location,
		VoiceNote: req.VoiceNote,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.DueDate = parseTime(req.DueDate)
	if at := parseTime(req.ReminderAt); at != nil {
		task.Reminder = &domain.Reminder{Enabled: true, At: at}
	}

	u.mu.Lock()
	u.tasks = append(u.tasks, task)
	u.flushLocked()
	u.mu.Unlock()

	u.scheduleReminder(&task)
	u.publish("task.created", task.ID)
	return &task, nil
}

func (u *taskUsecase) GetByID(id string) (*domain.Task, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	t := u.tasks[i]
	return &t, nil
}

func (u *taskUsecase) Update(id string, updates TaskUpdateRequest) (*domain.Task, error) {
	// Validate before touching the task so a rejected update leaves it
	// untouched.
	var tags []domain.Tag
	if updates.Tags != nil {
		parsed, err := parseTags(*updates.Tags)
		if err != nil {
			return nil, err
		}
		tags = parsed
	}
	if updates.Status != nil && !domain.ValidStatus(domain.TaskStatus(*updates.Status)) {
		return nil, ErrInvalidStatus
	}

	u.mu.Lock()
	i := u.indexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	task := &u.tasks[i]

	if updates.Title != nil {
		task.Title = *updates.Title
	}
	if updates.Notes != nil {
		task.Notes = *updates.Notes
	}
	if updates.Priority != nil {
		task.Priority = domain.ParsePriority(*updates.Priority)
	}
	if updates.Tags != nil {
		task.Tags = tags
	}
	if updates.Status != nil {
		setStatus(task, domain.TaskStatus(*updates.Status), time.Now())
	}
	if updates.DueDate != nil {
		if *updates.DueDate == "" {
			task.DueDate = nil
		} else if t := parseTime(updates.DueDate); t != nil {
			task.DueDate = t
		}
	}
	if updates.ReminderAt != nil {
		if *updates.ReminderAt == "" {
			task.Reminder = nil
		} else if t := parseTime(updates.ReminderAt); t != nil {
			task.Reminder = &domain.Reminder{Enabled: true, At: t}
		}
	}
	if updates.Location != nil {
		task.Location = updates.Location
	}
	if updates.VoiceNote != nil {
		task.VoiceNote = *updates.VoiceNote
	}

	bumpUpdated(task)
	u.flushLocked()
	result := *task
	u.mu.Unlock()

	u.scheduleReminder(&result)
	u.publish("task.updated", id)
	return &result, nil
}

func (u *taskUsecase) Delete(id string) error {
	u.mu.Lock()
	i := u.indexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return ErrTaskNotFound
	}
	u.tasks = append(u.tasks[:i], u.tasks[i+1:]...)
	if u.selectedID == id {
		u.selectedID = ""
	}
	u.flushLocked()
	u.mu.Unlock()

	u.sched.Cancel(id)
	u.publish("task.deleted", id)
	return nil
}

func (u *taskUsecase) ToggleCompletion(id string) (*domain.Task, error) {
	return u.transition(id, func(t *domain.Task, now time.Time) {
		if t.IsCompleted() {
			setStatus(t, domain.TaskStatusPending, now)
		} else {
			setStatus(t, domain.TaskStatusCompleted, now)
		}
	})
}

func (u *taskUsecase) MarkCompleted(id string) (*domain.Task, error) {
	return u.transition(id, func(t *domain.Task, now time.Time) {
		setStatus(t, domain.TaskStatusCompleted, now)
	})
}

func (u *taskUsecase) MarkPending(id string) (*domain.Task, error) {
	return u.transition(id, func(t *domain.Task, now time.Time) {
		setStatus(t, domain.TaskStatusPending, now)
	})
}

// Snooze pushes the reminder (or, lacking one, the due date) forward by the
// configured offset and reschedules the alert.
func (u *taskUsecase) Snooze(id string) (*domain.Task, error) {
	return u.transition(id, func(t *domain.Task, now time.Time) {
		at := now.Add(u.snoozeOffset)
		if t.Reminder != nil {
			t.Reminder.At = &at
			t.Reminder.Enabled = true
		} else if t.DueDate != nil {
			t.DueDate = &at
			t.Reminder = &domain.Reminder{Enabled: true, At: &at}
		} else {
			t.Reminder = &domain.Reminder{Enabled: true, At: &at}
		}
	})
}

func (u *taskUsecase) AddSubTask(taskID, title string) (*domain.Task, error) {
	return u.transition(taskID, func(t *domain.Task, now time.Time) {
		t.SubTasks = append(t.SubTasks, domain.SubTask{
			ID:        uuid.New().String(),
			Title:     title,
			CreatedAt: now,
		})
	})
}

func (u *taskUsecase) ToggleSubTask(taskID, subTaskID string) (*domain.Task, error) {
	return u.subTaskTransition(taskID, subTaskID, func(t *domain.Task, i int) {
		t.SubTasks[i].Done = !t.SubTasks[i].Done
	})
}

func (u *taskUsecase) RemoveSubTask(taskID, subTaskID string) (*domain.Task, error) {
	return u.subTaskTransition(taskID, subTaskID, func(t *domain.Task, i int) {
		t.SubTasks = append(t.SubTasks[:i], t.SubTasks[i+1:]...)
	})
}

// subTaskTransition locates the subtask before mutating; an unknown id
// returns ErrSubTaskNotFound with no flush, reschedule or event.
func (u *taskUsecase) subTaskTransition(taskID, subTaskID string, mutate func(*domain.Task, int)) (*domain.Task, error) {
	u.mu.Lock()
	i := u.indexLocked(taskID)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	task := &u.tasks[i]

	j := -1
	for k := range task.SubTasks {
		if task.SubTasks[k].ID == subTaskID {
			j = k
			break
		}
	}
	if j < 0 {
		u.mu.Unlock()
		return nil, ErrSubTaskNotFound
	}

	mutate(task, j)
	bumpUpdated(task)
	u.flushLocked()
	result := *task
	u.mu.Unlock()

	u.scheduleReminder(&result)
	u.publish("task.updated", taskID)
	return &result, nil
}

func (u *taskUsecase) AddAttachment(taskID, filename, contentType string, data []byte) (*domain.Task, error) {
	return u.transition(taskID, func(t *domain.Task, now time.Time) {
		t.Attachments = append(t.Attachments, domain.Attachment{
			ID:          uuid.New().String(),
			Filename:    filename,
			ContentType: contentType,
			Size:        int64(len(data)),
			Data:        data,
			CreatedAt:   now,
		})
	})
}

func (u *taskUsecase) Select(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.indexLocked(id) < 0 {
		return ErrTaskNotFound
	}
	u.selectedID = id
	return nil
}

func (u *taskUsecase) Selected() *domain.Task {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(u.selectedID)
	if i < 0 {
		return nil
	}
	t := u.tasks[i]
	return &t
}

// FilteredView is a pure function of the current collection: it never
// mutates stored state.
func (u *taskUsecase) FilteredView(mode ViewMode, query string) []domain.Task {
	u.mu.Lock()
	snapshot := make([]domain.Task, len(u.tasks))
	copy(snapshot, u.tasks)
	u.mu.Unlock()

	var out []domain.Task
	switch mode {
	case ViewHistory:
		for _, t := range snapshot {
			if t.Status == domain.TaskStatusCompleted || t.Status == domain.TaskStatusArchived {
				out = append(out, t)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			return historyTime(&out[i]).After(historyTime(&out[j]))
		})
		return out
	case ViewSearch:
		for _, t := range snapshot {
			if t.Status == domain.TaskStatusArchived {
				continue
			}
			if matchesQuery(&t, query) {
				out = append(out, t)
			}
		}
	default: // inbox
		for _, t := range snapshot {
			if t.Status == domain.TaskStatusCompleted || t.Status == domain.TaskStatusArchived {
				continue
			}
			out = append(out, t)
		}
	}

	sortInbox(out)
	return out
}

// GroupedHistory buckets completed/archived tasks by the calendar day they
// were completed (updated, when completion time is absent), newest day first.
func (u *taskUsecase) GroupedHistory() []HistoryGroup {
	done := u.FilteredView(ViewHistory, "")

	byDay := make(map[time.Time][]domain.Task)
	for _, t := range done {
		day := dayOf(historyTime(&t))
		byDay[day] = append(byDay[day], t)
	}

	groups := make([]HistoryGroup, 0, len(byDay))
	for day, tasks := range byDay {
		groups = append(groups, HistoryGroup{
			Label: day.Format("January 2, 2006"),
			Day:   day,
			Tasks: tasks,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

func (u *taskUsecase) Stats() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := time.Now()
	var s Stats
	for i := range u.tasks {
		t := &u.tasks[i]
		s.Total++
		switch t.Status {
		case domain.TaskStatusPending:
			s.Pending++
		case domain.TaskStatusInProgress:
			s.InProgress++
		case domain.TaskStatusCompleted:
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total)
		s.OverdueRate = float64(s.Overdue) / float64(s.Total)
	}
	return s
}

// HandleNotificationAction routes a delivered-alert interaction back into
// the collection.
func (u *taskUsecase) HandleNotificationAction(actionID, entityID string) {
	var err error
	switch actionID {
	case ActionComplete:
		_, err = u.ToggleCompletion(entityID)
	case ActionSnooze:
		_, err = u.Snooze(entityID)
	default:
		u.log.WithField("action", actionID).Warn("unknown notification action")
		return
	}
	if err != nil {
		u.log.WithError(err).WithFields(logrus.Fields{
			"action": actionID,
			"task":   entityID,
		}).Warn("notification action failed")
	}
}

func (u *taskUsecase) SaveError() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastSaveErr
}

func (u *taskUsecase) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.flushLocked()
	if u.lastSaveErr != "" {
		return errors.New(u.lastSaveErr)
	}
	return nil
}

// transition applies a mutation to the task with the given id, bumps
// UpdatedAt, flushes, refreshes the reminder and publishes an event.
func (u *taskUsecase) transition(id string, mutate func(*domain.Task, time.Time)) (*domain.Task, error) {
	u.mu.Lock()
	i := u.indexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	task := &u.tasks[i]
	mutate(task, time.Now())
	bumpUpdated(task)
	u.flushLocked()
	result := *task
	u.mu.Unlock()

	u.scheduleReminder(&result)
	u.publish("task.updated", id)
	return &result, nil
}

func (u *taskUsecase) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range u.tasks {
		if u.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *taskUsecase) flushLocked() {
	snapshot := make([]domain.Task, len(u.tasks))
	copy(snapshot, u.tasks)
	if err := u.repo.SaveAll(snapshot); err != nil {
		u.log.WithError(err).Error("failed to persist tasks")
		u.lastSaveErr = err.Error()
		return
	}
	u.lastSaveErr = ""
}

func (u *taskUsecase) scheduleReminder(t *domain.Task) {
	at := t.ReminderAt()
	if at == nil || t.Status == domain.TaskStatusCompleted || t.Status == domain.TaskStatusArchived {
		u.sched.Cancel(t.ID)
		return
	}

	body := t.Notes
	if body == "" {
		body = "You have a task waiting"
	}
	if t.DueDate != nil {
		body = fmt.Sprintf("%s (due %s)", body, t.DueDate.Format("Jan 2 15:04"))
	}
	u.sched.Schedule(t.ID, *at, t.Title, body, []string{ActionComplete, ActionSnooze})
}

func (u *taskUsecase) publish(eventType, id string) {
	if u.bus != nil {
		u.bus.Publish(events.Event{Type: eventType, Entity: "task", ID: id})
	}
}

// setStatus keeps the status/completedAt invariant: completed iff
// CompletedAt is set.
func setStatus(t *domain.Task, status domain.TaskStatus, now time.Time) {
	t.Status = status
	if status == domain.TaskStatusCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
}

// bumpUpdated keeps UpdatedAt monotonically non-decreasing.
func bumpUpdated(t *domain.Task) {
	now := time.Now()
	if now.Before(t.UpdatedAt) {
		return
	}
	t.UpdatedAt = now
}

// sortInbox orders: priority descending, then due date ascending with
// undated tasks last, undated ties by creation time descending. Equal keys
// keep insertion order.
func sortInbox(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			if a.DueDate.Equal(*b.DueDate) {
				return false
			}
			return a.DueDate.Before(*b.DueDate)
		case a.DueDate != nil:
			return true
		case b.DueDate != nil:
			return false
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// matchesQuery tolerates typos in the title via edit distance; other
// fields match on normalized substrings.
func matchesQuery(t *domain.Task, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	if fuzzy.Match(q, t.Title, 1) || fuzzy.Contains(t.Notes, q) {
		return true
	}
	for _, tag := range t.Tags {
		if fuzzy.Contains(string(tag), q) {
			return true
		}
	}
	if t.Location != nil {
		if fuzzy.Contains(t.Location.Name, q) || fuzzy.Contains(t.Location.Address, q) {
			return true
		}
	}
	return false
}

// historyTime is the grouping/sorting timestamp for the history view.
func historyTime(t *domain.Task) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.UpdatedAt
}

func dayOf(ts time.Time) time.Time {
	y, m, d := ts.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	return nil
}

func parseTags(raw []string) ([]domain.Tag, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tags := make([]domain.Tag, 0, len(raw))
	for _, r := range raw {
		tag := domain.Tag(strings.ToLower(r))
		if !domain.ValidTag(tag) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTag, r)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func sampleTasks() []domain.Task {
	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)
	return []domain.Task{
		{
			ID:        uuid.New().String(),
			Title:     "Welcome to Planora",
			Notes:     "Tap a task to edit it, swipe to complete.",
			Priority:  domain.PriorityMedium,
			Status:    domain.TaskStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New().String(),
			Title:     "Plan the week",
			Priority:  domain.PriorityHigh,
			Tags:      []domain.Tag{domain.TagPersonal},
			Status:    domain.TaskStatusPending,
			DueDate:   &tomorrow,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
