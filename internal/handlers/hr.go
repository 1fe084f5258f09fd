package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/constants"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/services"
)

const maxUploadBytes = 10 << 20

// HRHandler coordinates the bulk rejection-email HTTP handlers.
type HRHandler struct {
	rejectionService *services.RejectionService
	templateAI       *services.TemplateAIService
}

// NewHRHandler creates a new HRHandler. templateAI may be nil when no API
// key is configured; the draft endpoint then answers 503.
func NewHRHandler(rejectionService *services.RejectionService, templateAI *services.TemplateAIService) *HRHandler {
	return &HRHandler{
		rejectionService: rejectionService,
		templateAI:       templateAI,
	}
}

// Upload ingests an applicant spreadsheet into a recipient batch.
func (h *HRHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file upload")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		apierrors.BadRequest(c, "File too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		apierrors.BadRequest(c, "Unreadable file upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}

	batch, summary, err := h.rejectionService.Ingest(fileHeader.Filename, data)
	if err != nil {
		respondRejectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":   batch,
		"summary": summary,
	})
}

// Send dispatches the rejection emails of a batch after the count
// confirmation, using the template stored in the session.
func (h *HRHandler) Send(c *gin.Context) {
	type SendRequest struct {
		BatchID      string `json:"batch_id" binding:"required"`
		ConfirmCount *int   `json:"confirm_count" binding:"required"`
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tmpl := sessionTemplate(c)

	batch, summary, err := h.rejectionService.Send(c.Request.Context(), req.BatchID, *req.ConfirmCount, tmpl)
	if err != nil {
		respondRejectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":   batch,
		"summary": summary,
	})
}

// GetTemplate returns the session's rejection template, falling back to the
// stock text.
func (h *HRHandler) GetTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, sessionTemplate(c))
}

// SetTemplate stores an edited rejection template in the session.
func (h *HRHandler) SetTemplate(c *gin.Context) {
	var tmpl services.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if tmpl.Subject == "" || tmpl.Body == "" {
		apierrors.BadRequest(c, "Subject and body are required")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyTemplateSubject, tmpl.Subject)
	session.Set(constants.SessionKeyTemplateBody, tmpl.Body)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// DraftTemplate asks the language model for a fresh rejection text.
func (h *HRHandler) DraftTemplate(c *gin.Context) {
	if h.templateAI == nil {
		apierrors.ServiceUnavailable(c, "Template drafting is not configured")
		return
	}

	type DraftRequest struct {
		Language string `json:"language"`
		Tone     string `json:"tone"`
	}

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tmpl, err := h.templateAI.DraftRejectionTemplate(c.Request.Context(), req.Language, req.Tone)
	if err != nil {
		apierrors.ServiceUnavailable(c, "Template drafting failed")
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// Results serves the per-recipient outcome spreadsheet of a batch.
func (h *HRHandler) Results(c *gin.Context) {
	data, err := h.rejectionService.Results(c.Param("id"))
	if err != nil {
		respondRejectionError(c, err)
		return
	}

	serveWorkbook(c, "ergebnisse.xlsx", data)
}

// SampleTemplate serves the blank upload template spreadsheet.
func (h *HRHandler) SampleTemplate(c *gin.Context) {
	data, err := h.rejectionService.SampleTemplate()
	if err != nil {
		apierrors.InternalError(c, "Failed to build template file")
		return
	}

	serveWorkbook(c, "vorlage.xlsx", data)
}

// History returns every address a rejection was already sent to.
func (h *HRHandler) History(c *gin.Context) {
	addresses, err := h.rejectionService.History()
	if err != nil {
		apierrors.InternalError(c, "Failed to load send history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// ClearHistory wipes the send history.
func (h *HRHandler) ClearHistory(c *gin.Context) {
	if err := h.rejectionService.ClearHistory(); err != nil {
		apierrors.InternalError(c, "Failed to clear send history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Send history cleared"})
}

func sessionTemplate(c *gin.Context) services.Template {
	session := sessions.Default(c)
	tmpl := services.DefaultTemplate()
	if subject, ok := session.Get(constants.SessionKeyTemplateSubject).(string); ok && subject != "" {
		tmpl.Subject = subject
	}
	if body, ok := session.Get(constants.SessionKeyTemplateBody).(string); ok && body != "" {
		tmpl.Body = body
	}
	return tmpl
}

func serveWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func respondRejectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingColumns),
		errors.Is(err, services.ErrSendInProgress):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNoUsableRecipients):
		apierrors.BadRequestCode(c, apierrors.ErrCodeNoValidRecipients, err.Error())
	case errors.Is(err, services.ErrConfirmMismatch):
		apierrors.BadRequestCode(c, apierrors.ErrCodeConfirmMismatch, err.Error())
	case errors.Is(err, services.ErrBatchNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.BadRequest(c, err.Error())
	}
}
