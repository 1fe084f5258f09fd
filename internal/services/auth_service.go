package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/oso-hr/timetracking-api/internal/constants"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrWeakPassword         = errors.New("password must be at least 8 characters with upper case, lower case and a digit")
	ErrUserNotFound         = errors.New("user not found")
	ErrResetLinkExpired     = errors.New("this password reset link has expired")
	ErrResetLinkInvalid     = errors.New("this password reset link is invalid or has expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	studentRepo repository.StudentRepository
	mailer      Mailer
	baseURL     string
}

// NewAuthService creates a new AuthService.
func NewAuthService(studentRepo repository.StudentRepository, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		studentRepo: studentRepo,
		mailer:      mailer,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// SignupInput represents the required information to create a new account.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

// Signup creates a new student profile with a hashed password.
func (s *AuthService) Signup(input SignupInput) (*models.Student, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	if _, err := s.studentRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	student := &models.Student{
		AuthUserID:   uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		FirstLogin:   true,
		PasswordHash: string(hashed),
		Status:       "active",
	}

	if err := s.studentRepo.Create(student); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return student, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated student.
func (s *AuthService) Login(input LoginInput) (*models.Student, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	student, err := s.studentRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return student, nil
}

// GetUser retrieves a student by ID.
func (s *AuthService) GetUser(id uint64) (*models.Student, error) {
	student, err := s.studentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return student, nil
}

// ChangePassword verifies the current password and replaces the hash. The
// legacy plaintext-comparison path does not exist here; bcrypt is the only
// verification route.
func (s *AuthService) ChangePassword(userID uint64, currentPassword, newPassword string) error {
	student, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	return s.studentRepo.UpdatePassword(userID, string(hashed))
}

// ForgotPassword generates a single-use recovery token and mails the reset
// link. Unknown addresses return nil so the endpoint cannot be used to probe
// for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	student, err := s.studentRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, digest := utils.GenerateResetToken()
	expiresAt := time.Now().Add(constants.ResetTokenTTL)

	if err := s.studentRepo.SetResetToken(student.ID, digest, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s&type=recovery", s.baseURL, token)
	msg := Message{
		To:      student.Email,
		Subject: "Passwort zurücksetzen",
		Body: fmt.Sprintf("Hallo %s,\n\nüber den folgenden Link können Sie ein neues Passwort vergeben:\n\n%s\n\nDer Link ist eine Stunde gültig.",
			student.Name, link),
		Language: "DE",
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// ConsumeResetToken exchanges a recovery token for the student it belongs to.
// The token is single-use: it is cleared on success.
func (s *AuthService) ConsumeResetToken(token string) (*models.Student, error) {
	if token == "" {
		return nil, ErrResetLinkInvalid
	}

	student, err := s.studentRepo.FindByResetToken(utils.HashResetToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetLinkInvalid
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if student.ResetTokenExpiresAt == nil || time.Now().After(*student.ResetTokenExpiresAt) {
		_ = s.studentRepo.ClearResetToken(student.ID)
		return nil, ErrResetLinkExpired
	}

	if err := s.studentRepo.ClearResetToken(student.ID); err != nil {
		return nil, fmt.Errorf("failed to clear reset token: %w", err)
	}

	return student, nil
}

// ResetPassword sets a new password for a recovery session.
func (s *AuthService) ResetPassword(userID uint64, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	if _, err := s.GetUser(userID); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	return s.studentRepo.UpdatePassword(userID, string(hashed))
}

// ValidatePassword enforces the reset-screen policy: at least 8 characters
// with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
