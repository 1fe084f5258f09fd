package repository

import (
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
	"gorm.io/gorm"
)

// GormStudentRepository is a GORM implementation of StudentRepository
type GormStudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &GormStudentRepository{db: db}
}

func (r *GormStudentRepository) Create(student *models.Student) error {
	return r.db.Create(student).Error
}

func (r *GormStudentRepository) FindByID(id uint64) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *GormStudentRepository) FindByEmail(email string) (*models.Student, error) {
	var student models.Student
	if err := r.db.Where("email = ?", email).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *GormStudentRepository) FindByResetToken(digest string) (*models.Student, error) {
	var student models.Student
	if err := r.db.Where("reset_token = ?", digest).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *GormStudentRepository) List() ([]models.Student, error) {
	var students []models.Student
	if err := r.db.Order("id").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *GormStudentRepository) Update(student *models.Student) error {
	return r.db.Save(student).Error
}

func (r *GormStudentRepository) UpdatePassword(id uint64, hash string) error {
	return r.db.Model(&models.Student{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"first_login":   false,
		}).Error
}

func (r *GormStudentRepository) SetResetToken(id uint64, digest string, expiresAt time.Time) error {
	return r.db.Model(&models.Student{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_token":            digest,
			"reset_token_expires_at": expiresAt,
		}).Error
}

func (r *GormStudentRepository) ClearResetToken(id uint64) error {
	return r.db.Model(&models.Student{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_token":            "",
			"reset_token_expires_at": nil,
		}).Error
}

// DeleteWithTimeEntries deletes the student's time entries first, then the
// student, in a single transaction.
func (r *GormStudentRepository) DeleteWithTimeEntries(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Where("student_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Student{}, id).Error
	})
}
