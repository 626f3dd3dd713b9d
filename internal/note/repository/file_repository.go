package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"planora-backend/internal/note/domain"
)

type fileNoteRepository struct {
	notesPath   string
	foldersPath string
}

// NewFileNoteRepository creates a file-backed NoteRepository rooted at dataDir.
func NewFileNoteRepository(dataDir string) (NoteRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileNoteRepository{
		notesPath:   filepath.Join(dataDir, "notes.json"),
		foldersPath: filepath.Join(dataDir, "folders.json"),
	}, nil
}

func (r *fileNoteRepository) LoadAll() ([]domain.Note, error) {
	var notes []domain.Note
	if err := readJSON(r.notesPath, "notes", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *fileNoteRepository) SaveAll(notes []domain.Note) error {
	if notes == nil {
		notes = []domain.Note{}
	}
	return writeJSON(r.notesPath, "notes", notes)
}

func (r *fileNoteRepository) LoadFolders() ([]domain.Folder, error) {
	var folders []domain.Folder
	if err := readJSON(r.foldersPath, "folders", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *fileNoteRepository) SaveFolders(folders []domain.Folder) error {
	if folders == nil {
		folders = []domain.Folder{}
	}
	return writeJSON(r.foldersPath, "folders", folders)
}

func readJSON(path, what string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}

func writeJSON(path, what string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", what, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", what, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s file: %w", what, err)
	}
	return nil
}
