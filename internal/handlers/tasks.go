package handlers

import (
	"net/http"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/middleware"
	"todos-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks  services.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks services.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	var req services.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"taskCount": len(tasks),
		"tasks":     tasks,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	id, err := parseTaskID(c)
	if err != nil {
		respondError(c, h.logger, apperr.ErrNotFound)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	id, err := parseTaskID(c)
	if err != nil {
		respondError(c, h.logger, apperr.ErrNotFound)
		return
	}

	var req services.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), user.ID, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, apperr.ErrUnauthenticated)
		return
	}

	id, err := parseTaskID(c)
	if err != nil {
		respondError(c, h.logger, apperr.ErrNotFound)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// An unparseable id gets the same answer as a missing task, so probing
// with malformed ids learns nothing.
func parseTaskID(c *gin.Context) (uuid.UUID, error) {
	return uuid.FromString(c.Param("id"))
}
