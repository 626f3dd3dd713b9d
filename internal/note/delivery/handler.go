package delivery

import (
	"errors"
	"net/http"

	"planora-backend/internal/note/usecase"

	"github.com/gin-gonic/gin"
)

// NoteHandler handles note and folder HTTP requests
type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteUsecase usecase.NoteUsecase) *NoteHandler {
	return &NoteHandler{
		noteUsecase: noteUsecase,
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNoteNotFound), errors.Is(err, usecase.ErrFolderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrReservedFolderName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreateNoteRequest represents the request body for creating a note
type CreateNoteRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	FolderID *string `json:"folder_id"`
}

// FolderRequest represents the request body for creating or renaming a folder
type FolderRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// GetNotes returns one of the note listings; ?q= switches to search
// GET /api/notes?view=all&folder_id=&q=
func (h *NoteHandler) GetNotes(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		notes := h.noteUsecase.Search(query)
		c.JSON(http.StatusOK, gin.H{"notes": notes, "total": len(notes)})
		return
	}

	view := usecase.NoteView(c.DefaultQuery("view", string(usecase.ViewAll)))
	notes := h.noteUsecase.Notes(view, c.Query("folder_id"))

	c.JSON(http.StatusOK, gin.H{"notes": notes, "total": len(notes)})
}

// GetNoteByID returns a specific note
// GET /api/notes/:id
func (h *NoteHandler) GetNoteByID(c *gin.Context) {
	note, err := h.noteUsecase.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// CreateNote creates a new note
// POST /api/notes
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.noteUsecase.Create(req.Title, req.Content, req.FolderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// UpdateNote applies a partial update; saves are debounced
// PUT /api/notes/:id
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	var updates usecase.NoteUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.noteUsecase.Update(c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// TogglePin flips a note's pinned flag
// PATCH /api/notes/:id/pin
func (h *NoteHandler) TogglePin(c *gin.Context) {
	note, err := h.noteUsecase.TogglePin(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// DeleteNote moves a note to Recently Deleted
// DELETE /api/notes/:id
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	if err := h.noteUsecase.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note moved to Recently Deleted"})
}

// RestoreNote brings a note back from Recently Deleted
// POST /api/notes/:id/restore
func (h *NoteHandler) RestoreNote(c *gin.Context) {
	if err := h.noteUsecase.Restore(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note restored"})
}

// PurgeNote permanently removes a deleted note
// DELETE /api/notes/:id/permanent
func (h *NoteHandler) PurgeNote(c *gin.Context) {
	if err := h.noteUsecase.Purge(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note permanently deleted"})
}

// GetFolders returns all user folders
// GET /api/notes/folders
func (h *NoteHandler) GetFolders(c *gin.Context) {
	folders := h.noteUsecase.Folders()

	c.JSON(http.StatusOK, gin.H{"folders": folders, "total": len(folders)})
}

// CreateFolder creates a new folder
// POST /api/notes/folders
func (h *NoteHandler) CreateFolder(c *gin.Context) {
	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.noteUsecase.CreateFolder(req.Name, req.Icon, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, folder)
}

// RenameFolder renames a folder
// PUT /api/notes/folders/:id
func (h *NoteHandler) RenameFolder(c *gin.Context) {
	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.noteUsecase.RenameFolder(c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// DeleteFolder removes a folder; its notes move to All Notes
// DELETE /api/notes/folders/:id
func (h *NoteHandler) DeleteFolder(c *gin.Context) {
	if err := h.noteUsecase.DeleteFolder(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted"})
}
