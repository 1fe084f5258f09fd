package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/dto"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/services"
	"github.com/oso-hr/timetracking-api/internal/utils"
)

// TimeEntryHandler coordinates time entry HTTP handlers.
type TimeEntryHandler struct {
	entryService *services.TimeEntryService
}

// NewTimeEntryHandler creates a new TimeEntryHandler.
func NewTimeEntryHandler(entryService *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{
		entryService: entryService,
	}
}

// Create logs a new work session for the authenticated student.
func (h *TimeEntryHandler) Create(c *gin.Context) {
	type CreateRequest struct {
		Date        string `json:"date" binding:"required"`
		StartTime   string `json:"start_time" binding:"required"`
		EndTime     string `json:"end_time" binding:"required"`
		ProjectID   uint64 `json:"project_id" binding:"required"`
		TaskID      uint64 `json:"task_id" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	entry, err := h.entryService.Create(services.CreateEntryInput{
		StudentID:   userID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Description: req.Description,
	})
	if err != nil {
		respondEntryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

// ListMine returns the authenticated student's entries, optionally for one date.
func (h *TimeEntryHandler) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var date *string
	if d := c.Query("date"); d != "" {
		date = &d
	}

	entries, err := h.entryService.ListOwn(userID, date)
	if err != nil {
		apierrors.InternalError(c, "Failed to list time entries")
		return
	}

	items := make([]dto.TimeEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = dto.ToTimeEntryDTO(entry)
	}
	c.JSON(http.StatusOK, gin.H{"entries": items})
}

// List returns entries across all students for the admin screen, filtered
// and paginated.
func (h *TimeEntryHandler) List(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)

	filter := repository.TimeEntryFilter{
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	}
	if v := c.Query("student_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid student ID")
			return
		}
		filter.StudentID = &id
	}
	if v := c.Query("date"); v != "" {
		filter.Date = &v
	}
	if v := c.Query("status"); v != "" {
		status := models.EntryStatus(v)
		if !models.ValidEntryStatus(status) {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		filter.Status = &status
	}

	entries, total, err := h.entryService.ListAll(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list time entries")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryListResponse(entries, pagination.Page, pagination.Limit, total))
}

// UpdateMine edits the student's own pending entry.
func (h *TimeEntryHandler) UpdateMine(c *gin.Context) {
	entryID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid entry ID")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	req, ok := bindEntryUpdate(c)
	if !ok {
		return
	}

	entry, err := h.entryService.UpdateOwn(entryID, userID, req)
	if err != nil {
		respondEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// Update edits any entry regardless of status, for admins.
func (h *TimeEntryHandler) Update(c *gin.Context) {
	entryID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid entry ID")
		return
	}

	req, ok := bindEntryUpdate(c)
	if !ok {
		return
	}

	entry, err := h.entryService.AdminUpdate(entryID, req)
	if err != nil {
		respondEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// SetStatus approves or rejects a pending entry.
func (h *TimeEntryHandler) SetStatus(c *gin.Context) {
	entryID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid entry ID")
		return
	}

	type StatusRequest struct {
		Status models.EntryStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.entryService.SetStatus(entryID, req.Status); err != nil {
		respondEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// DeleteMine removes the student's own pending entry.
func (h *TimeEntryHandler) DeleteMine(c *gin.Context) {
	entryID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid entry ID")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.entryService.DeleteOwn(entryID, userID); err != nil {
		respondEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

// Delete removes any entry, for admins.
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	entryID, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid entry ID")
		return
	}

	if err := h.entryService.AdminDelete(entryID); err != nil {
		respondEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

func bindEntryUpdate(c *gin.Context) (services.UpdateEntryInput, bool) {
	type UpdateRequest struct {
		StartTime   *string `json:"start_time"`
		EndTime     *string `json:"end_time"`
		Description *string `json:"description"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return services.UpdateEntryInput{}, false
	}

	return services.UpdateEntryInput{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}, true
}

func respondEntryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTimeRange):
		apierrors.BadRequestCode(c, apierrors.ErrCodeInvalidTimeRange, err.Error())
	case errors.Is(err, services.ErrDateLocked):
		apierrors.BadRequestCode(c, apierrors.ErrCodeDateLocked, err.Error())
	case errors.Is(err, services.ErrNotAssignedToTask):
		apierrors.BadRequestCode(c, apierrors.ErrCodeNotAssigned, err.Error())
	case errors.Is(err, services.ErrEntryNotEditable),
		errors.Is(err, services.ErrEntryNotPending):
		apierrors.BadRequestCode(c, apierrors.ErrCodeEntryNotEditable, err.Error())
	case errors.Is(err, services.ErrNotEntryOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatusValue),
		errors.Is(err, services.ErrMissingEntryFields),
		errors.Is(err, utils.ErrInvalidClockTime):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
