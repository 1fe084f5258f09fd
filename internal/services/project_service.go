package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNameRequired = errors.New("project name is required")
	ErrProjectNameTaken    = errors.New("a project with this name already exists")
	ErrProtectedProject    = errors.New(`the "Allgemein" project cannot be deleted`)
)

// ProjectService handles project business logic.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// IsProtectedProject reports whether a name is the distinguished default
// project, which must never be deleted. Case-insensitive, trimmed.
func IsProtectedProject(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "general", "allgemein":
		return true
	}
	return false
}

// CreateProjectInput represents input for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
	Color       string
	CreatedBy   uint64
}

func (s *ProjectService) Create(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	if _, err := s.projectRepo.FindByName(name); err == nil {
		return nil, ErrProjectNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check project name: %w", err)
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Color:       input.Color,
		CreatedBy:   input.CreatedBy,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// UpdateProjectInput represents input for updating a project.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

func (s *ProjectService) Update(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.find(projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// Delete removes a project. The protected General/Allgemein project is
// refused before any repository call is made.
func (s *ProjectService) Delete(projectID uint64) error {
	project, err := s.find(projectID)
	if err != nil {
		return err
	}

	if IsProtectedProject(project.Name) {
		return ErrProtectedProject
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (s *ProjectService) List() ([]models.Project, error) {
	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) find(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
