package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/services"
	"github.com/oso-hr/timetracking-api/internal/utils"
	"github.com/stretchr/testify/require"
)

func setupSessionRouter(t *testing.T) (*SessionHandler, authTestEnv) {
	t.Helper()

	env := setupAuthTestEnv(t)
	return NewSessionHandler(env.authService), env
}

func putJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPut, path, jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type resolveResponse struct {
	View          string `json:"view"`
	Authenticated bool   `json:"authenticated"`
	Language      string `json:"language"`
	RecoveryError *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"recovery_error"`
}

func TestSessionHandler_ResolvePlainURL(t *testing.T) {
	sessionHandler, _ := setupSessionRouter(t)

	r := newSessionRouter()
	r.POST("/api/session/resolve", sessionHandler.Resolve)

	w := postJSON(t, r, "/api/session/resolve", map[string]string{
		"url": "https://app.example.com/",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "login", resp.View)
	require.False(t, resp.Authenticated)
	require.Equal(t, "de", resp.Language)
	require.Nil(t, resp.RecoveryError)
}

func TestSessionHandler_ResolveExpiredLinkLandsOnReset(t *testing.T) {
	sessionHandler, _ := setupSessionRouter(t)

	r := newSessionRouter()
	r.POST("/api/session/resolve", sessionHandler.Resolve)

	w := postJSON(t, r, "/api/session/resolve", map[string]string{
		"url": "https://app.example.com/reset-password?error=access_denied&error_code=otp_expired&error_description=Email+link+is+invalid+or+has+expired",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "reset-password", resp.View)
	require.NotNil(t, resp.RecoveryError)
	require.Equal(t, "otp_expired", resp.RecoveryError.Code)
}

func TestSessionHandler_ResolveValidTokenOpensRecoverySession(t *testing.T) {
	sessionHandler, env := setupSessionRouter(t)

	student, err := env.authService.Signup(services.SignupInput{
		Email:    "max@example.com",
		Password: "Secret123",
		Name:     "Max",
	})
	require.NoError(t, err)

	// plant a reset token the way ForgotPassword would
	token, digest := utils.GenerateResetToken()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, env.db.Model(&models.Student{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{
			"reset_token":            digest,
			"reset_token_expires_at": expires,
		}).Error)

	r := newSessionRouter()
	r.POST("/api/session/resolve", sessionHandler.Resolve)

	w := postJSON(t, r, "/api/session/resolve", map[string]string{
		"url": "https://app.example.com/reset-password?token=" + token + "&type=recovery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "reset-password", resp.View)
	require.Nil(t, resp.RecoveryError)
	// the recovery session does not count as a login
	require.False(t, resp.Authenticated)

	// the token is single-use
	w = postJSON(t, r, "/api/session/resolve", map[string]string{
		"url": "https://app.example.com/reset-password?token=" + token + "&type=recovery",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "reset-password", resp.View)
	require.NotNil(t, resp.RecoveryError)
}

func TestRecoveryFlow_ResetPasswordEndToEnd(t *testing.T) {
	sessionHandler, env := setupSessionRouter(t)

	student, err := env.authService.Signup(services.SignupInput{
		Email:    "max@example.com",
		Password: "OldSecret1",
		Name:     "Max",
	})
	require.NoError(t, err)

	token, digest := utils.GenerateResetToken()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, env.db.Model(&models.Student{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{
			"reset_token":            digest,
			"reset_token_expires_at": expires,
		}).Error)

	// the reset route is public, matching the server wiring
	r := newSessionRouter()
	r.POST("/api/session/resolve", sessionHandler.Resolve)
	r.POST("/api/auth/reset-password", env.handler.ResetPassword)
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/session/resolve", map[string]string{
		"url": "https://app.example.com/reset-password?token=" + token + "&type=recovery",
	})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// the recovery session carries the reset, no login involved
	w = postJSONWithCookies(t, r, "/api/auth/reset-password", map[string]string{
		"password": "NewSecret1",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"view":"login"`)
	cookies = updatedCookies(cookies, w)

	// the recovery session is consumed with the reset
	w = postJSONWithCookies(t, r, "/api/auth/reset-password", map[string]string{
		"password": "AnotherSecret1",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "max@example.com",
		"password": "OldSecret1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "max@example.com",
		"password": "NewSecret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestResetPassword_WithoutRecoverySession(t *testing.T) {
	_, env := setupSessionRouter(t)

	r := newSessionRouter()
	r.POST("/api/auth/reset-password", env.handler.ResetPassword)

	w := postJSON(t, r, "/api/auth/reset-password", map[string]string{
		"password": "NewSecret1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_SetViewUnauthenticatedLimited(t *testing.T) {
	sessionHandler, _ := setupSessionRouter(t)

	r := newSessionRouter()
	r.PUT("/api/session/view", sessionHandler.SetView)

	w := putJSON(t, r, "/api/session/view", map[string]string{"view": "forgot-password"})
	require.Equal(t, http.StatusOK, w.Code)

	w = putJSON(t, r, "/api/session/view", map[string]string{"view": "admin"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = putJSON(t, r, "/api/session/view", map[string]string{"view": "dashboard"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_SetLanguage(t *testing.T) {
	sessionHandler, _ := setupSessionRouter(t)

	r := newSessionRouter()
	r.PUT("/api/session/language", sessionHandler.SetLanguage)

	w := putJSON(t, r, "/api/session/language", map[string]string{"language": "EN"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"language":"en"`)

	w = putJSON(t, r, "/api/session/language", map[string]string{"language": "fr"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
