package repository

import (
	"planora-backend/internal/task/domain"

	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository on the embedded database.
// Whole-collection semantics are kept explicit: SaveAll rewrites the table
// in one transaction.
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a sqlite-backed TaskRepository.
func NewGormTaskRepository(db *gorm.DB) (TaskRepository, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, err
	}
	return &gormTaskRepository{db: db}, nil
}

func (r *gormTaskRepository) LoadAll() ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.Order("created_at").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *gormTaskRepository) SaveAll(tasks []domain.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		return tx.Create(&tasks).Error
	})
}
