package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/timer/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

type createTaskRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

type renameTaskRequest struct {
	Name string `json:"name"`
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, apiErr := h.taskService.List(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	task, apiErr := h.taskService.Create(c.Request.Context(), req.Name, req.ParentID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) Rename(c *gin.Context) {
	var req renameTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	task, apiErr := h.taskService.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Advance(c *gin.Context) {
	task, apiErr := h.taskService.Advance(c.Request.Context(), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if apiErr := h.taskService.Delete(c.Request.Context(), c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
