package services

import (
	"context"
	"testing"
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	studentRepo := repository.NewStudentRepository(db)
	return NewAuthService(studentRepo, NewLogMailer(), "http://localhost:8080"), db
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("Secret123"))
	require.ErrorIs(t, ValidatePassword("short1A"), ErrWeakPassword)
	require.ErrorIs(t, ValidatePassword("alllowercase1"), ErrWeakPassword)
	require.ErrorIs(t, ValidatePassword("ALLUPPERCASE1"), ErrWeakPassword)
	require.ErrorIs(t, ValidatePassword("NoDigitsHere"), ErrWeakPassword)
}

func TestSignup_NormalizesEmailAndHashes(t *testing.T) {
	svc, _ := setupAuthService(t)

	student, err := svc.Signup(SignupInput{
		Email:    "  Max@Example.COM ",
		Password: "Secret123",
		Name:     "Max",
	})
	require.NoError(t, err)
	require.Equal(t, "max@example.com", student.Email)
	require.NotEqual(t, "Secret123", student.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("Secret123")))

	_, err = svc.Signup(SignupInput{Email: "max@example.com", Password: "Secret123", Name: "Max"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestChangePassword_RequiresCurrent(t *testing.T) {
	svc, _ := setupAuthService(t)

	student, err := svc.Signup(SignupInput{Email: "max@example.com", Password: "Secret123", Name: "Max"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(student.ID, "WrongOne1", "NewSecret1"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(student.ID, "Secret123", "NewSecret1"))

	_, err = svc.Login(LoginInput{Email: "max@example.com", Password: "NewSecret1"})
	require.NoError(t, err)
}

func TestResetTokenLifecycle(t *testing.T) {
	svc, db := setupAuthService(t)

	student, err := svc.Signup(SignupInput{Email: "max@example.com", Password: "Secret123", Name: "Max"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "max@example.com"))

	var stored models.Student
	require.NoError(t, db.First(&stored, student.ID).Error)
	require.NotEmpty(t, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiresAt)

	// the stored value is a digest, not the token itself; a bogus token fails
	_, err = svc.ConsumeResetToken(stored.ResetToken)
	require.ErrorIs(t, err, ErrResetLinkInvalid)
}

func TestConsumeResetToken_SingleUseAndExpiry(t *testing.T) {
	svc, db := setupAuthService(t)

	student, err := svc.Signup(SignupInput{Email: "max@example.com", Password: "Secret123", Name: "Max"})
	require.NoError(t, err)

	token, digest := utils.GenerateResetToken()
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{"reset_token": digest, "reset_token_expires_at": future}).Error)

	got, err := svc.ConsumeResetToken(token)
	require.NoError(t, err)
	require.Equal(t, student.ID, got.ID)

	// consumed tokens never work twice
	_, err = svc.ConsumeResetToken(token)
	require.ErrorIs(t, err, ErrResetLinkInvalid)

	// an expired token fails closed and is cleared
	token, digest = utils.GenerateResetToken()
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{"reset_token": digest, "reset_token_expires_at": expired}).Error)

	_, err = svc.ConsumeResetToken(token)
	require.ErrorIs(t, err, ErrResetLinkExpired)

	var stored models.Student
	require.NoError(t, db.First(&stored, student.ID).Error)
	require.Empty(t, stored.ResetToken)
}

func TestForgotPassword_UnknownAddressSilent(t *testing.T) {
	svc, _ := setupAuthService(t)
	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
}
