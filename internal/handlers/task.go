package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/dto"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/services"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List returns every task, for the admin screen.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.taskService.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListMine returns the tasks assigned to the authenticated student.
func (h *TaskHandler) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.ListForStudent(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// Create adds a task and assigns it to the given students.
func (h *TaskHandler) Create(c *gin.Context) {
	type CreateRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		ProjectID   uint64              `json:"project_id" binding:"required"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     *time.Time          `json:"due_date"`
		StudentIDs  []uint64            `json:"student_ids" binding:"required"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)

	task, err := h.taskService.Create(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		AssignedBy:  userID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		StudentIDs:  req.StudentIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// Update modifies a task, optionally replacing its assignments.
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateRequest struct {
		Title        *string              `json:"title"`
		Description  *string              `json:"description"`
		Priority     *models.TaskPriority `json:"priority"`
		Status       *models.TaskStatus   `json:"status"`
		DueDate      *time.Time           `json:"due_date"`
		ClearDueDate bool                 `json:"clear_due_date"`
		StudentIDs   []uint64             `json:"student_ids"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Update(taskID, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		StudentIDs:   req.StudentIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Delete removes a task and its assignments.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrNoStudentsAssigned),
		errors.Is(err, services.ErrUnknownStudents),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidTaskStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
