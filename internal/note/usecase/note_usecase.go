package usecase

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"planora-backend/internal/note/domain"
	"planora-backend/internal/note/repository"
	"planora-backend/pkg/debounce"
	"planora-backend/pkg/events"
	"planora-backend/pkg/fuzzy"
	"planora-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// noteUsecase owns the in-memory note and folder collections. Mutations are
// frequent (every keystroke during editing lands here), so persistence is
// debounced: a burst of writes collapses into one flush of the final state.
type noteUsecase struct {
	mu          sync.Mutex
	notes       []domain.Note
	folders     []domain.Folder
	lastSaveErr string

	repo repository.NoteRepository
	deb  *debounce.Debouncer
	bus  *events.Bus
	log  *logrus.Entry
}

// NewNoteUsecase loads both collections, seeding sample notes on first run.
func NewNoteUsecase(repo repository.NoteRepository, bus *events.Bus, debounceInterval time.Duration) (NoteUsecase, error) {
	u := &noteUsecase{
		repo: repo,
		bus:  bus,
		log:  logger.Component("notes"),
	}
	u.deb = debounce.New(debounceInterval, u.flush)

	notes, err := repo.LoadAll()
	switch {
	case err == nil:
		u.notes = notes
	case errors.Is(err, os.ErrNotExist):
		u.notes = sampleNotes()
		if err := repo.SaveAll(u.notes); err != nil {
			u.log.WithError(err).Error("failed to persist seed notes")
			u.lastSaveErr = err.Error()
		}
	default:
		return nil, fmt.Errorf("load notes: %w", err)
	}

	folders, err := repo.LoadFolders()
	switch {
	case err == nil:
		u.folders = folders
	case errors.Is(err, os.ErrNotExist):
		u.folders = []domain.Folder{}
	default:
		return nil, fmt.Errorf("load folders: %w", err)
	}

	return u, nil
}

func (u *noteUsecase) Create(title, content string, folderID *string) (*domain.Note, error) {
	u.mu.Lock()
	if folderID != nil && u.folderIndexLocked(*folderID) < 0 {
		u.mu.Unlock()
		return nil, ErrFolderNotFound
	}

	now := time.Now()
	note := domain.Note{
		ID:         uuid.New().String(),
		Title:      title,
		Content:    content,
		FolderID:   folderID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	u.notes = append(u.notes, note)
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish("note.created", note.ID)
	return &note, nil
}

func (u *noteUsecase) GetByID(id string) (*domain.Note, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.noteIndexLocked(id)
	if i < 0 {
		return nil, ErrNoteNotFound
	}
	n := u.notes[i]
	return &n, nil
}

func (u *noteUsecase) Update(id string, updates NoteUpdateRequest) (*domain.Note, error) {
	u.mu.Lock()
	i := u.noteIndexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrNoteNotFound
	}
	note := &u.notes[i]

	if updates.Title != nil {
		note.Title = *updates.Title
	}
	if updates.Content != nil {
		note.Content = *updates.Content
	}
	if updates.FolderID != nil {
		if *updates.FolderID == "" {
			note.FolderID = nil
		} else {
			if u.folderIndexLocked(*updates.FolderID) < 0 {
				u.mu.Unlock()
				return nil, ErrFolderNotFound
			}
			fid := *updates.FolderID
			note.FolderID = &fid
		}
	}
	note.ModifiedAt = time.Now()
	result := *note
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish("note.updated", id)
	return &result, nil
}

func (u *noteUsecase) TogglePin(id string) (*domain.Note, error) {
	return u.mutate(id, func(n *domain.Note) {
		n.Pinned = !n.Pinned
	})
}

// Delete moves the note to the Recently Deleted view.
func (u *noteUsecase) Delete(id string) error {
	_, err := u.mutateEvent(id, "note.deleted", func(n *domain.Note) {
		now := time.Now()
		n.DeletedAt = &now
	})
	return err
}

func (u *noteUsecase) Restore(id string) error {
	_, err := u.mutate(id, func(n *domain.Note) {
		n.DeletedAt = nil
	})
	return err
}

// Purge removes the note permanently.
func (u *noteUsecase) Purge(id string) error {
	u.mu.Lock()
	i := u.noteIndexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return ErrNoteNotFound
	}
	u.notes = append(u.notes[:i], u.notes[i+1:]...)
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish("note.purged", id)
	return nil
}

func (u *noteUsecase) Notes(view NoteView, folderID string) []domain.Note {
	u.mu.Lock()
	snapshot := make([]domain.Note, len(u.notes))
	copy(snapshot, u.notes)
	u.mu.Unlock()

	var out []domain.Note
	for _, n := range snapshot {
		switch view {
		case ViewRecentlyDeleted:
			if n.IsDeleted() {
				out = append(out, n)
			}
		case ViewPinned:
			if !n.IsDeleted() && n.Pinned {
				out = append(out, n)
			}
		case ViewFolder:
			if !n.IsDeleted() && n.FolderID != nil && *n.FolderID == folderID {
				out = append(out, n)
			}
		default: // All Notes
			if !n.IsDeleted() {
				out = append(out, n)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].ModifiedAt.After(out[j].ModifiedAt)
	})
	return out
}

func (u *noteUsecase) Search(query string) []domain.Note {
	q := strings.TrimSpace(query)
	var out []domain.Note
	for _, n := range u.Notes(ViewAll, "") {
		if q == "" || fuzzy.Match(q, n.Title, 1) || fuzzy.Contains(n.Content, q) {
			out = append(out, n)
		}
	}
	return out
}

func (u *noteUsecase) CreateFolder(name, icon, color string) (*domain.Folder, error) {
	if domain.ReservedFolderName(name) {
		return nil, fmt.Errorf("%w: %q", ErrReservedFolderName, name)
	}

	folder := domain.Folder{
		ID:    uuid.New().String(),
		Name:  name,
		Icon:  icon,
		Color: color,
	}

	u.mu.Lock()
	u.folders = append(u.folders, folder)
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish("folder.created", folder.ID)
	return &folder, nil
}

func (u *noteUsecase) RenameFolder(id, name string) (*domain.Folder, error) {
	if domain.ReservedFolderName(name) {
		return nil, fmt.Errorf("%w: %q", ErrReservedFolderName, name)
	}

	u.mu.Lock()
	i := u.folderIndexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrFolderNotFound
	}
	u.folders[i].Name = name
	result := u.folders[i]
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish("folder.updated", id)
	return &result, nil
}

// DeleteFolder removes the folder and reassigns its notes to no folder, so
// they stay reachable under All Notes. A dangling folder id is never left
// behind.
func (u *noteUsecase) DeleteFolder(id string) error {
	u.mu.Lock()
	i := u.folderIndexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return ErrFolderNotFound
	}
	u.folders = append(u.folders[:i], u.folders[i+1:]...)

	for j := range u.notes {
		if u.notes[j].FolderID != nil && *u.notes[j].FolderID == id {
			u.notes[j].FolderID = nil
			u.notes[j].ModifiedAt = time.Now()
		}
	}
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish("folder.deleted", id)
	return nil
}

func (u *noteUsecase) Folders() []domain.Folder {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Folder, len(u.folders))
	copy(out, u.folders)
	return out
}

func (u *noteUsecase) Flush() {
	u.deb.Flush()
}

func (u *noteUsecase) SaveError() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastSaveErr
}

func (u *noteUsecase) Close() error {
	u.deb.Flush()
	u.deb.Stop()

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.lastSaveErr != "" {
		return errors.New(u.lastSaveErr)
	}
	return nil
}

func (u *noteUsecase) mutate(id string, fn func(*domain.Note)) (*domain.Note, error) {
	return u.mutateEvent(id, "note.updated", fn)
}

// mutateEvent applies fn under the lock and emits exactly one event of the
// given type.
func (u *noteUsecase) mutateEvent(id, eventType string, fn func(*domain.Note)) (*domain.Note, error) {
	u.mu.Lock()
	i := u.noteIndexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrNoteNotFound
	}
	note := &u.notes[i]
	fn(note)
	note.ModifiedAt = time.Now()
	result := *note
	u.mu.Unlock()

	u.deb.Trigger()
	u.publish(eventType, id)
	return &result, nil
}

// flush writes both collections. Runs on the debounce timer goroutine.
func (u *noteUsecase) flush() {
	u.mu.Lock()
	notes := make([]domain.Note, len(u.notes))
	copy(notes, u.notes)
	folders := make([]domain.Folder, len(u.folders))
	copy(folders, u.folders)
	u.mu.Unlock()

	var saveErr string
	if err := u.repo.SaveAll(notes); err != nil {
		u.log.WithError(err).Error("failed to persist notes")
		saveErr = err.Error()
	}
	if err := u.repo.SaveFolders(folders); err != nil {
		u.log.WithError(err).Error("failed to persist folders")
		saveErr = err.Error()
	}

	u.mu.Lock()
	u.lastSaveErr = saveErr
	u.mu.Unlock()
}

func (u *noteUsecase) noteIndexLocked(id string) int {
	for i := range u.notes {
		if u.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *noteUsecase) folderIndexLocked(id string) int {
	for i := range u.folders {
		if u.folders[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *noteUsecase) publish(eventType, id string) {
	if u.bus != nil {
		u.bus.Publish(events.Event{Type: eventType, Entity: "note", ID: id})
	}
}

func sampleNotes() []domain.Note {
	now := time.Now()
	return []domain.Note{
		{
			ID:         uuid.New().String(),
			Title:      "Getting started",
			Content:    "Notes save automatically while you type.",
			Pinned:     true,
			CreatedAt:  now,
			ModifiedAt: now,
		},
	}
}
