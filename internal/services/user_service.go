package services

import (
	"errors"
	"fmt"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
)

// ErrHRCreatesStudentsOnly is enforced in the service, not only in the UI:
// HR staff may create student accounts but never admin or HR ones.
var ErrHRCreatesStudentsOnly = errors.New("hr may only create student accounts")

// UserService handles user administration on top of the auth service.
type UserService struct {
	studentRepo repository.StudentRepository
	authService *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(studentRepo repository.StudentRepository, authService *AuthService) *UserService {
	return &UserService{
		studentRepo: studentRepo,
		authService: authService,
	}
}

// CreateUser creates an account on behalf of an admin or HR actor.
func (s *UserService) CreateUser(actorRole models.Role, input SignupInput) (*models.Student, error) {
	if actorRole == models.RoleHR && input.Role != "" && input.Role != models.RoleStudent {
		return nil, ErrHRCreatesStudentsOnly
	}

	return s.authService.Signup(input)
}

// List returns all accounts ordered by ID.
func (s *UserService) List() ([]models.Student, error) {
	students, err := s.studentRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return students, nil
}

// Delete removes an account together with its time entries. The entries are
// removed first; the database schema has no cascade.
func (s *UserService) Delete(userID uint64) error {
	if _, err := s.authService.GetUser(userID); err != nil {
		return err
	}

	if err := s.studentRepo.DeleteWithTimeEntries(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
