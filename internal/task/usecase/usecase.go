package usecase

import (
	"errors"
	"time"

	"planora-backend/internal/task/domain"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubTaskNotFound = errors.New("subtask not found")
	ErrInvalidTag      = errors.New("invalid tag")
	ErrInvalidStatus   = errors.New("invalid status")
)

// ViewMode selects which derived slice of the collection a read returns.
type ViewMode string

const (
	ViewInbox   ViewMode = "inbox"   // not completed, not archived
	ViewHistory ViewMode = "history" // completed or archived
	ViewSearch  ViewMode = "search"  // everything but archived, text-matched
)

// Stats summarizes the collection in a single pass.
type Stats struct {
	Pending        int     `json:"pending"`
	InProgress     int     `json:"in_progress"`
	Completed      int     `json:"completed"`
	Overdue        int     `json:"overdue"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completion_rate"`
	OverdueRate    float64 `json:"overdue_rate"`
}

// HistoryGroup is one calendar day of completed/archived tasks.
type HistoryGroup struct {
	Label string        `json:"label"`
	Day   time.Time     `json:"day"`
	Tasks []domain.Task `json:"tasks"`
}

// CreateTaskRequest carries the fields for a new task. Dates are RFC3339.
type CreateTaskRequest struct {
	Title      string           `json:"title"`
	Notes      string           `json:"notes"`
	Priority   string           `json:"priority"`
	Tags       []string         `json:"tags"`
	DueDate    *string          `json:"due_date"`
	ReminderAt *string          `json:"reminder_at"`
	Location   *domain.Location `json:"location"`
	VoiceNote  string           `json:"voice_note"`
}

// TaskUpdateRequest carries partial updates; nil fields are left untouched,
// an empty date string clears the date.
type TaskUpdateRequest struct {
	Title      *string          `json:"title"`
	Notes      *string          `json:"notes"`
	Priority   *string          `json:"priority"`
	Status     *string          `json:"status"`
	Tags       *[]string        `json:"tags"`
	DueDate    *string          `json:"due_date"`
	ReminderAt *string          `json:"reminder_at"`
	Location   *domain.Location `json:"location"`
	VoiceNote  *string          `json:"voice_note"`
}

// ReminderScheduler is the slice of the notification scheduler the task
// collection drives.
type ReminderScheduler interface {
	Schedule(id string, fireAt time.Time, title, body string, actions []string)
	Cancel(id string)
}

// TaskUsecase mediates all access to the task collection.
type TaskUsecase interface {
	Create(req CreateTaskRequest) (*domain.Task, error)
	GetByID(id string) (*domain.Task, error)
	Update(id string, updates TaskUpdateRequest) (*domain.Task, error)
	Delete(id string) error

	ToggleCompletion(id string) (*domain.Task, error)
	MarkCompleted(id string) (*domain.Task, error)
	MarkPending(id string) (*domain.Task, error)
	Snooze(id string) (*domain.Task, error)

	AddSubTask(taskID, title string) (*domain.Task, error)
	ToggleSubTask(taskID, subTaskID string) (*domain.Task, error)
	RemoveSubTask(taskID, subTaskID string) (*domain.Task, error)
	AddAttachment(taskID, filename, contentType string, data []byte) (*domain.Task, error)

	Select(id string) error
	Selected() *domain.Task

	FilteredView(mode ViewMode, query string) []domain.Task
	GroupedHistory() []HistoryGroup
	Stats() Stats

	HandleNotificationAction(actionID, entityID string)

	// SaveError exposes the last persistence failure, empty when the last
	// flush succeeded. Persistence never rolls back in-memory state.
	SaveError() string
	Close() error
}
