package repository

import (
	"github.com/oso-hr/timetracking-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) FindByName(name string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("name = ?", name).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("name").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}
