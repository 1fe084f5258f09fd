package repository

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/database"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/utils"
	"gorm.io/gorm"
)

// GormTimeEntryRepository is a GORM implementation of TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

func (r *GormTimeEntryRepository) Create(entry *models.TimeEntry) error {
	return r.db.Create(entry).Error
}

func (r *GormTimeEntryRepository) FindByID(id uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List retrieves entries date-descending with filtering and pagination
func (r *GormTimeEntryRepository) List(filter TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	var entries []models.TimeEntry

	query := r.db.Model(&models.TimeEntry{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("date DESC, start_time DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Student").Preload("Project").Preload("Task").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *GormTimeEntryRepository) Update(entry *models.TimeEntry) error {
	return r.db.Save(entry).Error
}

// UpdateStatus transitions an entry's status and bumps updated_at
func (r *GormTimeEntryRepository) UpdateStatus(id uint64, status models.EntryStatus) error {
	return r.db.Model(&models.TimeEntry{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *GormTimeEntryRepository) Delete(id uint64) error {
	return r.db.Delete(&models.TimeEntry{}, id).Error
}
