package domain

import "time"

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort weight of a priority, higher sorting first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority maps a free-form string to a Priority, defaulting to medium.
func ParsePriority(p string) Priority {
	switch p {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusArchived   TaskStatus = "archived"
)

// ValidStatus reports whether s belongs to the fixed status enumeration.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusArchived:
		return true
	}
	return false
}

// Tag is one of the fixed classification labels a task can carry.
type Tag string

const (
	TagWork     Tag = "work"
	TagPersonal Tag = "personal"
	TagShopping Tag = "shopping"
	TagHealth   Tag = "health"
	TagFinance  Tag = "finance"
	TagTravel   Tag = "travel"
)

// ValidTag reports whether t belongs to the fixed tag enumeration.
func ValidTag(t Tag) bool {
	switch t {
	case TagWork, TagPersonal, TagShopping, TagHealth, TagFinance, TagTravel:
		return true
	}
	return false
}

// Reminder is an optional alert attached to a task.
type Reminder struct {
	Enabled bool       `json:"enabled"`
	At      *time.Time `json:"at,omitempty"`
}

// Location is a named map point attached to a task.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// SubTask is a checklist item owned exclusively by its parent task.
type SubTask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment is an opaque file blob attached to a task.
type Attachment struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"data,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task represents a to-do item
type Task struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null"`
	Notes       string       `json:"notes,omitempty"`
	Priority    Priority     `json:"priority" gorm:"default:medium"`
	Tags        []Tag        `json:"tags,omitempty" gorm:"serializer:json"`
	Status      TaskStatus   `json:"status" gorm:"default:pending"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Reminder    *Reminder    `json:"reminder,omitempty" gorm:"serializer:json"`
	Location    *Location    `json:"location,omitempty" gorm:"serializer:json"`
	SubTasks    []SubTask    `json:"subtasks,omitempty" gorm:"serializer:json"`
	Attachments []Attachment `json:"attachments,omitempty" gorm:"serializer:json"`
	VoiceNote   string       `json:"voice_note,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the task is in the completed state.
// Invariant: IsCompleted() iff CompletedAt is set.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsOverdue reports whether the task has a due date in the past and is not
// completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

// ReminderAt returns the effective reminder time, or nil when the reminder
// is absent or disabled.
func (t *Task) ReminderAt() *time.Time {
	if t.Reminder == nil || !t.Reminder.Enabled {
		return nil
	}
	return t.Reminder.At
}
