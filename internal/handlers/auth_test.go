package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/database"
	"github.com/oso-hr/timetracking-api/internal/dto"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Student{},
		&models.Project{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TimeEntry{},
		&models.AppSetting{},
		&models.SentEmail{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	studentRepo := repository.NewStudentRepository(db)
	authService := services.NewAuthService(studentRepo, services.NewLogMailer(), "http://localhost:8080")
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func newSessionRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions("timetrack_session", store))
	return r
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Reader {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSONWithCookies(t *testing.T, r *gin.Engine, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func putJSONWithCookies(t *testing.T, r *gin.Engine, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPut, path, jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getWithCookies(t *testing.T, r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// updatedCookies carries the session cookie forward across requests.
func updatedCookies(current []*http.Cookie, w *httptest.ResponseRecorder) []*http.Cookie {
	if c := w.Result().Cookies(); len(c) > 0 {
		return c
	}
	return current
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":    "max@example.com",
		"password": "Secret123",
		"name":     "Max Muster",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.StudentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "max@example.com", response.Email)
	require.Equal(t, models.RoleStudent, response.Role)
	require.True(t, response.FirstLogin)
}

func TestAuthHandler_SignupWeakPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":    "max@example.com",
		"password": "short",
		"name":     "Max Muster",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "WEAK_PASSWORD")
}

func TestAuthHandler_LoginReturnsRoleView(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Email:    "admin@example.com",
		Password: "Secret123",
		Name:     "Admin",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "Secret123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		User dto.StudentDTO `json:"user"`
		View string         `json:"view"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "admin", response.View)
	require.Equal(t, models.RoleAdmin, response.User.Role)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Email:    "max@example.com",
		Password: "Secret123",
		Name:     "Max",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "max@example.com",
		"password": "WrongPass1",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePasswordClearsPersistedView(t *testing.T) {
	env := setupAuthTestEnv(t)
	sessionHandler := NewSessionHandler(env.authService)

	_, err := env.authService.Signup(services.SignupInput{
		Email:    "admin@example.com",
		Password: "Secret123",
		Name:     "Admin",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/change-password", middleware.RequireAuth(), env.handler.ChangePassword)
	r.PUT("/api/session/view", sessionHandler.SetView)
	r.GET("/api/session/view", sessionHandler.GetView)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	w = putJSONWithCookies(t, r, "/api/session/view", map[string]string{"view": "change-password"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	cookies = updatedCookies(cookies, w)

	w = postJSONWithCookies(t, r, "/api/auth/change-password", map[string]string{
		"current_password": "Secret123",
		"new_password":     "NewSecret1",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	cookies = updatedCookies(cookies, w)

	// a reload must not resume the change screen
	w = getWithCookies(t, r, "/api/session/view", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "change-password")
}

func TestAuthHandler_ForgotPasswordSilentOnUnknownAddress(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/forgot-password", env.handler.ForgotPassword)

	w := postJSON(t, r, "/api/auth/forgot-password", map[string]string{
		"email": "nobody@example.com",
	})

	// identical success response whether or not the address exists
	require.Equal(t, http.StatusOK, w.Code)
}
