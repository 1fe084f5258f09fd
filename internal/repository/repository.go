package repository

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
)

// StudentRepository defines the interface for student/user data access
type StudentRepository interface {
	// Create creates a new student profile
	Create(student *models.Student) error

	// FindByID finds a student by ID
	FindByID(id uint64) (*models.Student, error)

	// FindByEmail finds a student by case-folded email
	FindByEmail(email string) (*models.Student, error)

	// FindByResetToken finds a student by hashed recovery token
	FindByResetToken(digest string) (*models.Student, error)

	// List returns all students ordered by ID
	List() ([]models.Student, error)

	// Update saves a student
	Update(student *models.Student) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(id uint64, hash string) error

	// SetResetToken stores a hashed recovery token with its expiry
	SetResetToken(id uint64, digest string, expiresAt time.Time) error

	// ClearResetToken removes any stored recovery token
	ClearResetToken(id uint64) error

	// DeleteWithTimeEntries deletes a student and their time entries in one
	// transaction (the entries first; there is no backend-enforced cascade)
	DeleteWithTimeEntries(id uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64) (*models.Project, error)
	FindByName(name string) (*models.Project, error)

	// List returns all projects ordered by name
	List() ([]models.Project, error)

	Update(project *models.Project) error
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithAssignments creates a task and its student assignments
	// atomically
	CreateWithAssignments(task *models.Task, studentIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List returns all tasks with assignees
	List() ([]models.Task, error)

	// ListByStudent returns the tasks a student is assigned to
	ListByStudent(studentID uint64) ([]models.Task, error)

	Update(task *models.Task) error

	// Delete removes a task and its assignments
	Delete(id uint64) error

	// IsAssigned reports whether a student is assigned to a task
	IsAssigned(taskID, studentID uint64) (bool, error)

	// ReplaceAssignments swaps the full assignee set of a task
	ReplaceAssignments(taskID uint64, studentIDs []uint64) error

	// CountStudentsByIDs counts how many of the given student IDs exist
	CountStudentsByIDs(studentIDs []uint64) (int64, error)
}

// TimeEntryFilter holds filtering options for listing time entries
type TimeEntryFilter struct {
	StudentID *uint64
	Date      *string
	Status    *models.EntryStatus
	Page      int
	PageSize  int
}

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	Create(entry *models.TimeEntry) error
	FindByID(id uint64) (*models.TimeEntry, error)

	// List retrieves entries date-descending with filtering and pagination
	List(filter TimeEntryFilter) ([]models.TimeEntry, int64, error)

	Update(entry *models.TimeEntry) error

	// UpdateStatus transitions an entry's status and bumps updated_at
	UpdateStatus(id uint64, status models.EntryStatus) error

	Delete(id uint64) error
}

// SettingRepository defines the interface for app settings access
type SettingRepository interface {
	Get(key string) (*models.AppSetting, error)
	List() ([]models.AppSetting, error)

	// Set upserts a setting value, recording who changed it
	Set(key, value string, updatedBy uint64) error
}

// SentEmailRepository persists the rejection-email send history.
type SentEmailRepository interface {
	// ListAddresses returns every recorded address, lowercased
	ListAddresses() ([]string, error)

	// Merge records addresses idempotently (existing rows untouched)
	Merge(addresses []string) error

	// Clear wipes the history
	Clear() error
}
