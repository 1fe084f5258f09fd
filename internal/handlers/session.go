package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/constants"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/services"
	"github.com/oso-hr/timetracking-api/internal/views"
)

// SessionHandler resolves the client's active view and manages the
// session-persisted view and language preferences.
type SessionHandler struct {
	authService *services.AuthService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(authService *services.AuthService) *SessionHandler {
	return &SessionHandler{
		authService: authService,
	}
}

// Resolve is the session bootstrap: the client posts the URL it loaded with,
// and the server answers with exactly one view to render. A recovery token in
// the URL is exchanged here for a recovery session; a recovery error shape
// still lands on the reset screen so the expiry message can be shown there.
func (h *SessionHandler) Resolve(c *gin.Context) {
	type ResolveRequest struct {
		URL string `json:"url"`
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	session := sessions.Default(c)
	sig := views.ParseRecoverySignal(req.URL)

	// Exchange a fresh token from the email link for a recovery session.
	var exchangeErr error
	if sig.Recovery && !sig.HasError() && sig.Token != "" {
		student, err := h.authService.ConsumeResetToken(sig.Token)
		if err != nil {
			exchangeErr = err
		} else {
			session.Set(constants.ContextKeyUserID, student.ID)
			session.Set(constants.SessionKeyRecovery, true)
		}
	}

	auth := h.resolveAuthState(c)

	persisted := View(session)
	view := views.Resolve(sig, persisted, auth)

	session.Set(constants.SessionKeyView, string(view))
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	resp := gin.H{
		"view":          view,
		"authenticated": auth.Authenticated,
		"language":      Language(session),
	}
	if sig.HasError() {
		resp["recovery_error"] = gin.H{
			"code":        sig.ErrorCode,
			"description": sig.ErrorDescription,
		}
	}
	if exchangeErr != nil {
		code := apierrors.ErrCodeResetLinkInvalid
		if errors.Is(exchangeErr, services.ErrResetLinkExpired) {
			code = apierrors.ErrCodeResetLinkExpired
		}
		resp["recovery_error"] = gin.H{
			"code":        code,
			"description": exchangeErr.Error(),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetView returns the persisted active view.
func (h *SessionHandler) GetView(c *gin.Context) {
	session := sessions.Default(c)
	c.JSON(http.StatusOK, gin.H{
		"view":     View(session),
		"language": Language(session),
	})
}

// SetView persists an explicit view switch, subject to the same transition
// rules as the bootstrap: unauthenticated sessions may only move between the
// public screens.
func (h *SessionHandler) SetView(c *gin.Context) {
	type SetViewRequest struct {
		View views.View `json:"view" binding:"required"`
	}

	var req SetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !views.Valid(req.View) {
		apierrors.BadRequest(c, "Unknown view")
		return
	}

	session := sessions.Default(c)
	auth := h.resolveAuthState(c)

	if !auth.Authenticated {
		switch req.View {
		case views.ViewLogin, views.ViewForgotPassword, views.ViewResetPassword:
		default:
			apierrors.Unauthorized(c, "")
			return
		}
	}

	session.Set(constants.SessionKeyView, string(req.View))
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": req.View})
}

// SetLanguage persists the UI language preference.
func (h *SessionHandler) SetLanguage(c *gin.Context) {
	type SetLanguageRequest struct {
		Language string `json:"language" binding:"required"`
	}

	var req SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang != "de" && lang != "en" {
		apierrors.BadRequest(c, "Unsupported language")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyLanguage, lang)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"language": lang})
}

// resolveAuthState loads the profile behind the session, if any. A recovery
// session does not count as authenticated.
func (h *SessionHandler) resolveAuthState(c *gin.Context) views.AuthState {
	session := sessions.Default(c)
	auth := views.AuthState{Resolved: true}

	if session.Get(constants.SessionKeyRecovery) != nil {
		return auth
	}

	userID, ok := session.Get(constants.ContextKeyUserID).(uint64)
	if !ok {
		return auth
	}

	student, err := h.authService.GetUser(userID)
	if err != nil {
		return auth
	}

	auth.Authenticated = true
	auth.Role = student.Role
	return auth
}

// sessionUserID reads the user ID stored by login or a recovery exchange.
func sessionUserID(session sessions.Session) (uint64, bool) {
	switch v := session.Get(constants.ContextKeyUserID).(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// View reads the persisted view from a session, empty when none was stored.
func View(session sessions.Session) views.View {
	if v, ok := session.Get(constants.SessionKeyView).(string); ok {
		return views.View(v)
	}
	return ""
}

// Language reads the stored language preference, falling back to the default.
func Language(session sessions.Session) string {
	if lang, ok := session.Get(constants.SessionKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return constants.DefaultLanguage
}
