package repository

import "planora-backend/internal/note/domain"

// NoteRepository persists the note and folder collections wholesale.
type NoteRepository interface {
	LoadAll() ([]domain.Note, error)
	SaveAll(notes []domain.Note) error

	LoadFolders() ([]domain.Folder, error)
	SaveFolders(folders []domain.Folder) error
}
