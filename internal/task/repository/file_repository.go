package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"planora-backend/internal/task/domain"
)

// fileTaskRepository stores the collection as a single JSON array on disk.
type fileTaskRepository struct {
	path string
}

// NewFileTaskRepository creates a file-backed TaskRepository rooted at dataDir.
func NewFileTaskRepository(dataDir string) (TaskRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileTaskRepository{path: filepath.Join(dataDir, "tasks.json")}, nil
}

func (r *fileTaskRepository) LoadAll() ([]domain.Task, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *fileTaskRepository) SaveAll(tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace tasks file: %w", err)
	}
	return nil
}
