package dto

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
)

// TimeEntryDTO represents a time entry in API responses
type TimeEntryDTO struct {
	ID          uint64             `json:"id"`
	StudentID   uint64             `json:"student_id"`
	Date        string             `json:"date"`
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
	TotalHours  float64            `json:"total_hours"`
	ProjectID   uint64             `json:"project_id"`
	TaskID      uint64             `json:"task_id"`
	Description string             `json:"description"`
	Status      models.EntryStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Student     *StudentDTO        `json:"student,omitempty"`
	Project     *ProjectDTO        `json:"project,omitempty"`
	Task        *TaskDTO           `json:"task,omitempty"`
}

// TimeEntryListResponse represents a paginated list of time entries
type TimeEntryListResponse struct {
	Entries    []TimeEntryDTO `json:"entries"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// ToTimeEntryDTO converts a TimeEntry model to TimeEntryDTO
func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:          entry.ID,
		StudentID:   entry.StudentID,
		Date:        entry.Date,
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		TotalHours:  entry.TotalHours,
		ProjectID:   entry.ProjectID,
		TaskID:      entry.TaskID,
		Description: entry.Description,
		Status:      entry.Status,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}

	// Include relations if preloaded
	if entry.Student.ID != 0 {
		student := ToStudentDTO(entry.Student)
		dto.Student = &student
	}
	if entry.Project.ID != 0 {
		project := ToProjectDTO(entry.Project)
		dto.Project = &project
	}
	if entry.Task.ID != 0 {
		task := ToTaskDTO(entry.Task)
		dto.Task = &task
	}

	return dto
}

// ToTimeEntryListResponse converts a slice of entries to a paginated response
func ToTimeEntryListResponse(entries []models.TimeEntry, page, pageSize int, totalCount int64) TimeEntryListResponse {
	items := make([]TimeEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = ToTimeEntryDTO(entry)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TimeEntryListResponse{
		Entries:    items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
