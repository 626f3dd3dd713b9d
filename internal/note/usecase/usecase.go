package usecase

import (
	"errors"

	"planora-backend/internal/note/domain"
)

var (
	ErrNoteNotFound       = errors.New("note not found")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrReservedFolderName = errors.New("folder name is reserved")
)

// NoteView selects one of the computed note listings. The pinned and
// recently-deleted views correspond to the reserved virtual folders.
type NoteView string

const (
	ViewAll             NoteView = "all"
	ViewPinned          NoteView = "pinned"
	ViewFolder          NoteView = "folder"
	ViewRecentlyDeleted NoteView = "deleted"
)

// NoteUpdateRequest carries partial note updates; nil fields are untouched.
// FolderID set to an empty string moves the note out of its folder.
type NoteUpdateRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	FolderID *string `json:"folder_id"`
}

// NoteUsecase mediates all access to the note and folder collections.
type NoteUsecase interface {
	Create(title, content string, folderID *string) (*domain.Note, error)
	GetByID(id string) (*domain.Note, error)
	Update(id string, updates NoteUpdateRequest) (*domain.Note, error)
	TogglePin(id string) (*domain.Note, error)
	Delete(id string) error
	Restore(id string) error
	Purge(id string) error

	Notes(view NoteView, folderID string) []domain.Note
	Search(query string) []domain.Note

	CreateFolder(name, icon, color string) (*domain.Folder, error)
	RenameFolder(id, name string) (*domain.Folder, error)
	DeleteFolder(id string) error
	Folders() []domain.Folder

	// Flush forces any pending debounced write out immediately.
	Flush()
	SaveError() string
	Close() error
}
