package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/dto"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/services"
)

// UserHandler coordinates user administration HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List returns all accounts.
func (h *UserHandler) List(c *gin.Context) {
	students, err := h.userService.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToStudentDTOs(students)})
}

// Create adds an account. HR actors may only create student accounts; that
// rule is enforced here on the server, not just hidden in the client.
func (h *UserHandler) Create(c *gin.Context) {
	type CreateRequest struct {
		Email    string      `json:"email" binding:"required,email"`
		Password string      `json:"password" binding:"required"`
		Name     string      `json:"name" binding:"required"`
		Role     models.Role `json:"role"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor, ok := middleware.GetProfile(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	student, err := h.userService.CreateUser(actor.Role, services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, services.ErrHRCreatesStudentsOnly) {
			apierrors.Forbidden(c, err.Error())
			return
		}
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStudentDTO(*student))
}

// Delete removes an account together with its time entries.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	actorID, _ := middleware.GetUserID(c)
	if actorID == userID {
		apierrors.BadRequest(c, "You cannot delete your own account")
		return
	}

	if err := h.userService.Delete(userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
