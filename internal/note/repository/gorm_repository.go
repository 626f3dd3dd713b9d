package repository

import (
	"planora-backend/internal/note/domain"

	"gorm.io/gorm"
)

type gormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a sqlite-backed NoteRepository. SaveAll and
// SaveFolders rewrite their tables in one transaction, keeping the
// whole-collection contract.
func NewGormNoteRepository(db *gorm.DB) (NoteRepository, error) {
	if err := db.AutoMigrate(&domain.Note{}, &domain.Folder{}); err != nil {
		return nil, err
	}
	return &gormNoteRepository{db: db}, nil
}

func (r *gormNoteRepository) LoadAll() ([]domain.Note, error) {
	var notes []domain.Note
	if err := r.db.Order("created_at").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *gormNoteRepository) SaveAll(notes []domain.Note) error {
	return replaceTable(r.db, &domain.Note{}, notes)
}

func (r *gormNoteRepository) LoadFolders() ([]domain.Folder, error) {
	var folders []domain.Folder
	if err := r.db.Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *gormNoteRepository) SaveFolders(folders []domain.Folder) error {
	return replaceTable(r.db, &domain.Folder{}, folders)
}

func replaceTable[T any](db *gorm.DB, model *T, rows []T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
