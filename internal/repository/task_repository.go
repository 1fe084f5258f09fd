package repository

import (
	"github.com/oso-hr/timetracking-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithAssignments creates the task and its assignments atomically so a
// task never exists without its assignee set.
func (r *GormTaskRepository) CreateWithAssignments(task *models.Task, studentIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		assignments := make([]models.TaskAssignment, len(studentIDs))
		for i, studentID := range studentIDs {
			assignments[i] = models.TaskAssignment{
				TaskID:    task.ID,
				StudentID: studentID,
			}
		}

		return tx.Create(&assignments).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *GormTaskRepository) List() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Preload("Project").
		Preload("Assignments").
		Preload("Assignments.Student").
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByStudent returns the tasks the student may log time against.
func (r *GormTaskRepository) ListByStudent(studentID uint64) ([]models.Task, error) {
	var tasks []models.Task
	subQuery := r.db.Model(&models.TaskAssignment{}).
		Select("task_id").
		Where("student_id = ?", studentID)

	if err := r.db.
		Preload("Project").
		Where("id IN (?)", subQuery).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task and its assignments in a transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

func (r *GormTaskRepository) IsAssigned(taskID, studentID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		Count(&count).Error
	return count > 0, err
}

// ReplaceAssignments swaps the assignee set of a task atomically.
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, studentIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		assignments := make([]models.TaskAssignment, len(studentIDs))
		for i, studentID := range studentIDs {
			assignments[i] = models.TaskAssignment{
				TaskID:    taskID,
				StudentID: studentID,
			}
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignments).Error
	})
}

func (r *GormTaskRepository) CountStudentsByIDs(studentIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Student{}).
		Where("id IN ?", studentIDs).
		Count(&count).Error
	return count, err
}
