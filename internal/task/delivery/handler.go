package delivery

import (
	"errors"
	"io"
	"net/http"

	"planora-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrTaskNotFound), errors.Is(err, usecase.ErrSubTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidTag), errors.Is(err, usecase.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetTasks returns a filtered view of the collection
// GET /api/tasks?view=inbox&q=groceries
func (h *TaskHandler) GetTasks(c *gin.Context) {
	view := usecase.ViewMode(c.DefaultQuery("view", string(usecase.ViewInbox)))
	query := c.Query("q")

	tasks := h.taskUsecase.FilteredView(view, query)

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetTaskByID returns a specific task
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, err := h.taskUsecase.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req usecase.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var updates usecase.TaskUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.Update(c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskUsecase.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// ToggleTask flips a task between pending and completed
// POST /api/tasks/:id/toggle
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	task, err := h.taskUsecase.ToggleCompletion(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CompleteTask marks a task completed
// POST /api/tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	task, err := h.taskUsecase.MarkCompleted(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ReopenTask marks a completed task pending again
// POST /api/tasks/:id/reopen
func (h *TaskHandler) ReopenTask(c *gin.Context) {
	task, err := h.taskUsecase.MarkPending(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// SnoozeTask pushes the task's reminder out by the configured offset
// POST /api/tasks/:id/snooze
func (h *TaskHandler) SnoozeTask(c *gin.Context) {
	task, err := h.taskUsecase.Snooze(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// SelectTask records the task the detail pane shows
// POST /api/tasks/:id/select
func (h *TaskHandler) SelectTask(c *gin.Context) {
	if err := h.taskUsecase.Select(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task selected"})
}

// GetSelectedTask returns the currently selected task, null when none
// GET /api/tasks/selected
func (h *TaskHandler) GetSelectedTask(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task": h.taskUsecase.Selected()})
}

// GetStats returns collection-wide counters
// GET /api/tasks/stats
func (h *TaskHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.taskUsecase.Stats())
}

// GetHistory returns completed and archived tasks grouped by day
// GET /api/tasks/history
func (h *TaskHandler) GetHistory(c *gin.Context) {
	groups := h.taskUsecase.GroupedHistory()

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"total":  len(groups),
	})
}

// AddSubTask appends a checklist item to a task
// POST /api/tasks/:id/subtasks
func (h *TaskHandler) AddSubTask(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.AddSubTask(c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ToggleSubTask flips one checklist item
// PATCH /api/tasks/:id/subtasks/:subtaskId/toggle
func (h *TaskHandler) ToggleSubTask(c *gin.Context) {
	task, err := h.taskUsecase.ToggleSubTask(c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// RemoveSubTask deletes one checklist item
// DELETE /api/tasks/:id/subtasks/:subtaskId
func (h *TaskHandler) RemoveSubTask(c *gin.Context) {
	task, err := h.taskUsecase.RemoveSubTask(c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// AddAttachment stores an uploaded file against a task
// POST /api/tasks/:id/attachments
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.AddAttachment(c.Param("id"), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}
