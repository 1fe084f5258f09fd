package dto

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
)

// AssigneeDTO represents an assigned student in task responses
type AssigneeDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ProjectID   uint64              `json:"project_id"`
	AssignedBy  uint64              `json:"assigned_by"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedAt   time.Time           `json:"created_at"`
	Project     *ProjectDTO         `json:"project,omitempty"`
	Assignees   []AssigneeDTO       `json:"assignees,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ProjectID:   task.ProjectID,
		AssignedBy:  task.AssignedBy,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
	}

	// Include project if preloaded
	if task.Project.ID != 0 {
		project := ToProjectDTO(task.Project)
		dto.Project = &project
	}

	// Include assignees if preloaded
	if len(task.Assignments) > 0 {
		dto.Assignees = make([]AssigneeDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignees[i] = AssigneeDTO{
				ID:    assignment.Student.ID,
				Name:  assignment.Student.Name,
				Email: assignment.Student.Email,
			}
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
