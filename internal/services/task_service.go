package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrNoStudentsAssigned = errors.New("at least one assigned student is required")
	ErrUnknownStudents    = errors.New("one or more assigned students do not exist")
	ErrInvalidPriority    = errors.New("priority must be low, medium, high or urgent")
	ErrInvalidTaskStatus  = errors.New("status must be pending, in_progress or completed")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   uint64
	AssignedBy  uint64
	Priority    models.TaskPriority
	DueDate     *time.Time
	StudentIDs  []uint64
}

// Create validates the task and persists it together with its assignments in
// one transaction.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(input.StudentIDs) == 0 {
		return nil, ErrNoStudentsAssigned
	}

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(priority) {
		return nil, ErrInvalidPriority
	}

	studentIDs := uniqueUint64(input.StudentIDs)

	count, err := s.taskRepo.CountStudentsByIDs(studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify students: %w", err)
	}
	if int(count) != len(studentIDs) {
		return nil, ErrUnknownStudents
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		ProjectID:   input.ProjectID,
		AssignedBy:  input.AssignedBy,
		Priority:    priority,
		Status:      models.TaskStatusPending,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.CreateWithAssignments(task, studentIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Project", "Assignments", "Assignments.Student")
}

// UpdateTaskInput represents input for updating a task.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	StudentIDs   []uint64
}

func (s *TaskService) Update(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.find(taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if input.StudentIDs != nil {
		studentIDs := uniqueUint64(input.StudentIDs)
		if len(studentIDs) == 0 {
			return nil, ErrNoStudentsAssigned
		}

		count, err := s.taskRepo.CountStudentsByIDs(studentIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify students: %w", err)
		}
		if int(count) != len(studentIDs) {
			return nil, ErrUnknownStudents
		}

		if err := s.taskRepo.ReplaceAssignments(taskID, studentIDs); err != nil {
			return nil, fmt.Errorf("failed to replace assignments: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, "Project", "Assignments", "Assignments.Student")
}

func (s *TaskService) Delete(taskID uint64) error {
	if _, err := s.find(taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// List returns every task with project and assignees, for the admin screen.
func (s *TaskService) List() ([]models.Task, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListForStudent returns the tasks a student may log time against.
func (s *TaskService) ListForStudent(studentID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) find(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func uniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
