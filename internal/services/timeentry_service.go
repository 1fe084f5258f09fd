package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/oso-hr/timetracking-api/internal/constants"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound      = errors.New("time entry not found")
	ErrInvalidTimeRange   = errors.New("end time must be after start time")
	ErrDateLocked         = errors.New("hours can only be logged for today")
	ErrNotAssignedToTask  = errors.New("student is not assigned to this task")
	ErrEntryNotEditable   = errors.New("only pending entries can be changed")
	ErrNotEntryOwner      = errors.New("entry belongs to another student")
	ErrInvalidStatusValue = errors.New("status must be approved or rejected")
	ErrEntryNotPending    = errors.New("only pending entries can be approved or rejected")
	ErrMissingEntryFields = errors.New("date, start time, end time, project and task are required")
)

// TimeEntryService handles time entry business logic.
type TimeEntryService struct {
	entryRepo   repository.TimeEntryRepository
	taskRepo    repository.TaskRepository
	settingRepo repository.SettingRepository
}

// NewTimeEntryService creates a new TimeEntryService.
func NewTimeEntryService(entryRepo repository.TimeEntryRepository, taskRepo repository.TaskRepository, settingRepo repository.SettingRepository) *TimeEntryService {
	return &TimeEntryService{
		entryRepo:   entryRepo,
		taskRepo:    taskRepo,
		settingRepo: settingRepo,
	}
}

// CreateEntryInput represents input for logging a work session.
type CreateEntryInput struct {
	StudentID   uint64
	Date        string
	StartTime   string
	EndTime     string
	ProjectID   uint64
	TaskID      uint64
	Description string
}

// Create validates and persists a new pending entry. The billed hours are the
// quarter-hour-rounded duration; end must be strictly after start and the
// student must be assigned to the task. When the lock-date setting is on the
// date must be today.
func (s *TimeEntryService) Create(input CreateEntryInput) (*models.TimeEntry, error) {
	if input.Date == "" || input.StartTime == "" || input.EndTime == "" ||
		input.ProjectID == 0 || input.TaskID == 0 {
		return nil, ErrMissingEntryFields
	}

	if locked, err := s.dateLocked(); err != nil {
		return nil, err
	} else if locked && input.Date != time.Now().Format("2006-01-02") {
		return nil, ErrDateLocked
	}

	totalHours, err := s.billedHours(input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	assigned, err := s.taskRepo.IsAssigned(input.TaskID, input.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check task assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssignedToTask
	}

	entry := &models.TimeEntry{
		StudentID:   input.StudentID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		TotalHours:  totalHours,
		ProjectID:   input.ProjectID,
		TaskID:      input.TaskID,
		Description: input.Description,
		Status:      models.EntryStatusPending,
	}

	if err := s.entryRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	return entry, nil
}

// UpdateEntryInput represents input for editing an entry.
type UpdateEntryInput struct {
	StartTime   *string
	EndTime     *string
	Description *string
}

// UpdateOwn edits a student's own entry. Only pending entries are editable;
// the billed hours are re-derived from the new clock times.
func (s *TimeEntryService) UpdateOwn(entryID, studentID uint64, input UpdateEntryInput) (*models.TimeEntry, error) {
	entry, err := s.find(entryID)
	if err != nil {
		return nil, err
	}

	if entry.StudentID != studentID {
		return nil, ErrNotEntryOwner
	}
	if entry.Status != models.EntryStatusPending {
		return nil, ErrEntryNotEditable
	}

	return s.applyUpdate(entry, input)
}

// AdminUpdate edits any entry regardless of status (the admin override).
func (s *TimeEntryService) AdminUpdate(entryID uint64, input UpdateEntryInput) (*models.TimeEntry, error) {
	entry, err := s.find(entryID)
	if err != nil {
		return nil, err
	}

	return s.applyUpdate(entry, input)
}

// SetStatus transitions a pending entry to approved or rejected.
func (s *TimeEntryService) SetStatus(entryID uint64, status models.EntryStatus) error {
	if status != models.EntryStatusApproved && status != models.EntryStatusRejected {
		return ErrInvalidStatusValue
	}

	entry, err := s.find(entryID)
	if err != nil {
		return err
	}
	if entry.Status != models.EntryStatusPending {
		return ErrEntryNotPending
	}

	if err := s.entryRepo.UpdateStatus(entryID, status); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

// DeleteOwn removes a student's own pending entry.
func (s *TimeEntryService) DeleteOwn(entryID, studentID uint64) error {
	entry, err := s.find(entryID)
	if err != nil {
		return err
	}

	if entry.StudentID != studentID {
		return ErrNotEntryOwner
	}
	if entry.Status != models.EntryStatusPending {
		return ErrEntryNotEditable
	}

	return s.entryRepo.Delete(entryID)
}

// AdminDelete removes any entry.
func (s *TimeEntryService) AdminDelete(entryID uint64) error {
	if _, err := s.find(entryID); err != nil {
		return err
	}
	return s.entryRepo.Delete(entryID)
}

// ListOwn returns a student's entries, optionally restricted to one date.
func (s *TimeEntryService) ListOwn(studentID uint64, date *string) ([]models.TimeEntry, error) {
	entries, _, err := s.entryRepo.List(repository.TimeEntryFilter{
		StudentID: &studentID,
		Date:      date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}

// ListAll returns entries for the admin screen, date-descending, paginated.
func (s *TimeEntryService) ListAll(filter repository.TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	return s.entryRepo.List(filter)
}

func (s *TimeEntryService) find(entryID uint64) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}
	return entry, nil
}

func (s *TimeEntryService) applyUpdate(entry *models.TimeEntry, input UpdateEntryInput) (*models.TimeEntry, error) {
	if input.StartTime != nil {
		entry.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		entry.EndTime = *input.EndTime
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}

	totalHours, err := s.billedHours(entry.StartTime, entry.EndTime)
	if err != nil {
		return nil, err
	}
	entry.TotalHours = totalHours

	if err := s.entryRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	return entry, nil
}

// billedHours rejects end <= start, then applies the quarter-hour rounding.
func (s *TimeEntryService) billedHours(start, end string) (float64, error) {
	startMin, err := utils.ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := utils.ParseClock(end)
	if err != nil {
		return 0, err
	}
	if endMin <= startMin {
		return 0, ErrInvalidTimeRange
	}

	return utils.CalculateAndRoundHours(start, end)
}

func (s *TimeEntryService) dateLocked() (bool, error) {
	setting, err := s.settingRepo.Get(constants.SettingLockDateToToday)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // default to unlocked
		}
		return false, fmt.Errorf("failed to read lock-date setting: %w", err)
	}
	return setting.SettingValue == "true", nil
}
