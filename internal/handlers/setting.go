package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/services"
)

// SettingHandler coordinates application setting HTTP handlers.
type SettingHandler struct {
	settingService *services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settingService *services.SettingService) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
	}
}

// Get returns the current settings relevant to all roles.
func (h *SettingHandler) Get(c *gin.Context) {
	locked, err := h.settingService.LockDateToToday()
	if err != nil {
		apierrors.InternalError(c, "Failed to read settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lock_date_to_today": locked,
	})
}

// SetLockDate toggles the restriction that entries may only be logged for
// the current date.
func (h *SettingHandler) SetLockDate(c *gin.Context) {
	type LockRequest struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}

	var req LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.settingService.SetLockDateToToday(*req.Enabled, userID); err != nil {
		apierrors.InternalError(c, "Failed to save setting")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lock_date_to_today": *req.Enabled,
	})
}
