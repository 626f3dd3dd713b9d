package repository

import "planora-backend/internal/task/domain"

// TaskRepository persists the task collection as a whole. There are no
// incremental writes: SaveAll overwrites the stored collection in place.
type TaskRepository interface {
	// LoadAll returns the full persisted collection. A missing backing
	// file is reported via an error matching os.ErrNotExist so callers can
	// distinguish first run from corruption.
	LoadAll() ([]domain.Task, error)

	// SaveAll replaces the persisted collection with the given one.
	SaveAll(tasks []domain.Task) error
}
