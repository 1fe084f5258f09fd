package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/constants"
	"github.com/oso-hr/timetracking-api/internal/dto"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/services"
	"github.com/oso-hr/timetracking-api/internal/views"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new student account.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	student, err := h.authService.Signup(services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStudentDTO(*student))
}

// Login authenticates a user and initializes the session. The response
// carries the view the client should show next.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	student, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	view := views.RoleView(student.Role)

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, student.ID)
	session.Set(constants.SessionKeyView, string(view))
	session.Delete(constants.SessionKeyRecovery)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": dto.ToStudentDTO(*student),
		"view": view,
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
		"view":    views.ViewLogin,
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	student, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStudentDTO(*student))
}

// ForgotPassword mails a reset link. The response is identical whether or
// not the address exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		apierrors.InternalError(c, "Failed to send reset email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If the address exists, a reset link has been sent",
	})
}

// ResetPassword sets a new password for an active recovery session.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetRequest struct {
		Password string `json:"password" binding:"required"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// The reset route is public, so the user ID comes from the recovery
	// session established by the resolve exchange, not from RequireAuth.
	session := sessions.Default(c)
	if session.Get(constants.SessionKeyRecovery) == nil {
		apierrors.BadRequestCode(c, apierrors.ErrCodeResetLinkInvalid, services.ErrResetLinkInvalid.Error())
		return
	}
	userID, exists := sessionUserID(session)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.authService.ResetPassword(userID, req.Password); err != nil {
		respondAuthError(c, err)
		return
	}

	// A successful reset consumes the recovery session and returns to login.
	session.Clear()
	session.Set(constants.SessionKeyView, string(views.ViewLogin))
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated",
		"view":    views.ViewLogin,
	})
}

// ChangePassword replaces the password of the authenticated user after
// verifying the current one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangeRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	// A successful change drops the persisted view so the next bootstrap
	// derives the role view instead of resuming the change screen.
	session := sessions.Default(c)
	session.Delete(constants.SessionKeyView)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated",
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWeakPassword):
		apierrors.BadRequestCode(c, apierrors.ErrCodeWeakPassword, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrResetLinkExpired):
		apierrors.BadRequestCode(c, apierrors.ErrCodeResetLinkExpired, err.Error())
	case errors.Is(err, services.ErrResetLinkInvalid):
		apierrors.BadRequestCode(c, apierrors.ErrCodeResetLinkInvalid, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
