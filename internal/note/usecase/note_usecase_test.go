package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"planora-backend/internal/note/domain"
	"planora-backend/pkg/events"
)

type memoryNoteRepo struct {
	mu             sync.Mutex
	notes          []domain.Note
	folders        []domain.Folder
	noteSaveCalls  int
	lastSavedNotes []domain.Note
}

func (r *memoryNoteRepo) LoadAll() ([]domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Note, len(r.notes))
	copy(out, r.notes)
	return out, nil
}

func (r *memoryNoteRepo) SaveAll(notes []domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteSaveCalls++
	r.lastSavedNotes = make([]domain.Note, len(notes))
	copy(r.lastSavedNotes, notes)
	r.notes = r.lastSavedNotes
	return nil
}

func (r *memoryNoteRepo) LoadFolders() ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Folder, len(r.folders))
	copy(out, r.folders)
	return out, nil
}

func (r *memoryNoteRepo) SaveFolders(folders []domain.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders = make([]domain.Folder, len(folders))
	copy(r.folders, folders)
	return nil
}

func newTestNotes(t *testing.T, debounceInterval time.Duration) (NoteUsecase, *memoryNoteRepo) {
	t.Helper()
	repo := &memoryNoteRepo{notes: []domain.Note{}, folders: []domain.Folder{}}
	uc, err := NewNoteUsecase(repo, events.NewBus(), debounceInterval)
	if err != nil {
		t.Fatalf("NewNoteUsecase failed: %v", err)
	}
	return uc, repo
}

func TestDebounceCoalescesMutations(t *testing.T) {
	uc, repo := newTestNotes(t, 60*time.Millisecond)

	note, err := uc.Create("draft", "", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A typing burst: content updates well inside the debounce window.
	var final string
	for i := 1; i <= 5; i++ {
		final = fmt.Sprintf("revision %d", i)
		content := final
		if _, err := uc.Update(note.ID, NoteUpdateRequest{Content: &content}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.noteSaveCalls != 1 {
		t.Errorf("Expected exactly 1 flush for the burst, got %d", repo.noteSaveCalls)
	}
	if len(repo.lastSavedNotes) != 1 || repo.lastSavedNotes[0].Content != final {
		t.Errorf("Expected flush to contain the final state %q, got %+v", final, repo.lastSavedNotes)
	}
}

func TestCloseFlushesPendingState(t *testing.T) {
	uc, repo := newTestNotes(t, 10*time.Second)

	note, _ := uc.Create("draft", "unsaved", nil)
	if err := uc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.lastSavedNotes) != 1 || repo.lastSavedNotes[0].ID != note.ID {
		t.Errorf("Expected Close to force the pending flush, got %+v", repo.lastSavedNotes)
	}
}

func TestFolderDeletionReassignsNotes(t *testing.T) {
	uc, _ := newTestNotes(t, time.Millisecond)

	folder, err := uc.CreateFolder("Recipes", "book", "orange")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	note, err := uc.Create("Carbonara", "guanciale, eggs, pecorino", &folder.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := uc.DeleteFolder(folder.ID); err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}

	got, err := uc.GetByID(note.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FolderID != nil {
		t.Errorf("Expected folder reference nulled, got %v", *got.FolderID)
	}

	// The orphaned note stays reachable under All Notes.
	found := false
	for _, n := range uc.Notes(ViewAll, "") {
		if n.ID == note.ID {
			found = true
		}
	}
	if !found {
		t.Error("Expected orphaned note under All Notes")
	}
}

func TestReservedFolderNamesRejected(t *testing.T) {
	uc, _ := newTestNotes(t, time.Millisecond)

	for _, name := range []string{"All Notes", "Pinned", "Recently Deleted"} {
		if _, err := uc.CreateFolder(name, "", ""); !errors.Is(err, ErrReservedFolderName) {
			t.Errorf("Expected ErrReservedFolderName for %q, got %v", name, err)
		}
	}

	folder, _ := uc.CreateFolder("Work", "", "")
	if _, err := uc.RenameFolder(folder.ID, "Pinned"); !errors.Is(err, ErrReservedFolderName) {
		t.Errorf("Expected ErrReservedFolderName on rename, got %v", err)
	}
}

func TestSoftDeleteMovesToRecentlyDeleted(t *testing.T) {
	uc, _ := newTestNotes(t, time.Millisecond)

	note, _ := uc.Create("secret plan", "", nil)
	if err := uc.Delete(note.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := uc.Notes(ViewAll, ""); len(got) != 0 {
		t.Errorf("Expected deleted note hidden from All Notes, got %d", len(got))
	}
	trash := uc.Notes(ViewRecentlyDeleted, "")
	if len(trash) != 1 || trash[0].ID != note.ID {
		t.Errorf("Expected note in Recently Deleted, got %+v", trash)
	}

	if err := uc.Restore(note.ID); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := uc.Notes(ViewAll, ""); len(got) != 1 {
		t.Errorf("Expected restored note back in All Notes, got %d", len(got))
	}

	if err := uc.Purge(note.ID); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if _, err := uc.GetByID(note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected purged note gone, got %v", err)
	}
}

func TestPinnedViewAndOrdering(t *testing.T) {
	uc, _ := newTestNotes(t, time.Millisecond)

	a, _ := uc.Create("a", "", nil)
	time.Sleep(2 * time.Millisecond)
	uc.Create("b", "", nil)
	time.Sleep(2 * time.Millisecond)

	if _, err := uc.TogglePin(a.ID); err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}

	all := uc.Notes(ViewAll, "")
	if len(all) != 2 || all[0].ID != a.ID {
		t.Errorf("Expected pinned note first, got %+v", all)
	}

	pinned := uc.Notes(ViewPinned, "")
	if len(pinned) != 1 || pinned[0].ID != a.ID {
		t.Errorf("Expected only the pinned note, got %+v", pinned)
	}
}

func TestUpdateUnknownNoteFails(t *testing.T) {
	uc, _ := newTestNotes(t, time.Millisecond)

	title := "x"
	if _, err := uc.Update("missing", NoteUpdateRequest{Title: &title}); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	uc, _ := newTestNotes(t, time.Millisecond)

	uc.Create("Shopping list", "milk, eggs", nil)
	uc.Create("Meeting notes", "quarterly targets", nil)

	if got := uc.Search("EGGS"); len(got) != 1 || got[0].Title != "Shopping list" {
		t.Errorf("Expected case-insensitive content match, got %+v", got)
	}
	if got := uc.Search("meeting"); len(got) != 1 {
		t.Errorf("Expected title match, got %+v", got)
	}
}

func TestDeleteEmitsSingleEvent(t *testing.T) {
	repo := &memoryNoteRepo{notes: []domain.Note{}, folders: []domain.Folder{}}
	bus := events.NewBus()
	uc, err := NewNoteUsecase(repo, bus, time.Millisecond)
	if err != nil {
		t.Fatalf("NewNoteUsecase failed: %v", err)
	}
	defer uc.Close()

	note, err := uc.Create("draft", "", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ch, cancel := bus.Subscribe()
	defer cancel()

	if err := uc.Delete(note.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var got []events.Event
	for {
		select {
		case evt := <-ch:
			got = append(got, evt)
			continue
		default:
		}
		break
	}
	if len(got) != 1 || got[0].Type != "note.deleted" {
		t.Fatalf("Expected exactly one note.deleted event, got %v", got)
	}
}
