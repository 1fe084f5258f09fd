package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/dto"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/services"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// List returns all projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to list projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// Create adds a new project.
func (h *ProjectHandler) Create(c *gin.Context) {
	type CreateRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)

	project, err := h.projectService.Create(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		CreatedBy:   userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// Update modifies an existing project.
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type UpdateRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// Delete removes a project unless it is the protected default one.
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrProtectedProject):
		apierrors.BadRequestCode(c, apierrors.ErrCodeProtectedProject, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

func parseIDParam(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
