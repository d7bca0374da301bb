package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taskman/internal/storage"
)

// taskRequest is the body of POST /tasks and PUT /tasks/:id.
// Pointers tell a missing field from a zero value.
type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context(), userID(c))
	if err != nil {
		s.logger.Error("list tasks", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := s.store.GetTask(c.Request.Context(), userID(c), id)
	if err != nil {
		s.storeError(c, "get task", err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeError(c, http.StatusBadRequest, "Title is required")
		return
	}

	task := storage.Task{Title: *req.Title, UserID: userID(c)}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	created, err := s.store.CreateTask(c.Request.Context(), task)
	if err != nil {
		s.logger.Error("create task", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handleUpdateTask replaces the whole record; title and description are required.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.Description == nil {
		writeError(c, http.StatusBadRequest, "Title and description are required")
		return
	}
	if strings.TrimSpace(*req.Title) == "" {
		writeError(c, http.StatusBadRequest, "Title is required")
		return
	}

	task := storage.Task{
		ID:          id,
		Title:       *req.Title,
		Description: *req.Description,
		UserID:      userID(c),
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	updated, err := s.store.UpdateTask(c.Request.Context(), task)
	if err != nil {
		s.storeError(c, "update task", err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), userID(c), id); err != nil {
		s.storeError(c, "delete task", err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

// taskID parses the :id path parameter. A non-numeric id cannot exist, so it is a 404.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusNotFound, "Task not found")
		return 0, false
	}
	return id, true
}

// storeError maps storage.ErrNotFound to 404 and everything else to 500.
func (s *Server) storeError(c *gin.Context, op string, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Task not found")
		return
	}
	s.logger.Error(op, slog.Any("err", err))
	writeError(c, http.StatusInternalServerError, msg)
}
