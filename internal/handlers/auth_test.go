package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/config"
	"taskify/backend/internal/database"
	"taskify/backend/internal/handlers"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/models"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// End-to-end auth flow over a real sqlite store: register, login, use the
// token against a protected route, refresh, logout.

func newAuthStack(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	authCfg := config.AuthConfig{
		JWTSecret:       "integration-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		BCryptCost:      bcrypt.MinCost,
	}

	authService := services.NewAuthService(authCfg)
	registerHandler := handlers.NewRegisterHandler(db, services.NewRegisterService(), authCfg.BCryptCost)
	authHandler := handlers.NewAuthHandler(db, authService, authCfg, false)
	taskHandler := handlers.NewTaskHandler(db, services.NewTaskService(nil), 20)
	userHandler := handlers.NewUserHandler(db, services.NewUserService())

	router := gin.New()
	router.POST("/api/auth/register", registerHandler.Registration)
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/refresh", authHandler.Refresh)
	router.POST("/api/auth/logout", authHandler.Logout)

	api := router.Group("/api", middleware.RequireAuth(authCfg.JWTSecret))
	api.GET("/me", userHandler.Me)
	api.POST("/tasks", taskHandler.CreateTask)
	api.GET("/tasks/:id", taskHandler.GetTask)

	return router
}

func postJSON(router *gin.Engine, url string, body map[string]interface{}, bearer string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	router := newAuthStack(t)

	w := postJSON(router, "/api/auth/register", map[string]interface{}{
		"email":        "alice@example.com",
		"password":     "sup3r-Secret!",
		"display_name": "Alice",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Duplicate registration conflicts.
	w = postJSON(router, "/api/auth/register", map[string]interface{}{
		"email":    "Alice@Example.com",
		"password": "sup3r-Secret!",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(router, "/api/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "sup3r-Secret!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login handlers.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, "alice@example.com", login.User.Email)

	cookies := w.Result().Cookies()
	var foundCookie bool
	for _, cookie := range cookies {
		if cookie.Name == "access_token" {
			foundCookie = true
			assert.True(t, cookie.HttpOnly, "access token cookie must be HttpOnly")
		}
	}
	assert.True(t, foundCookie, "login must set the access_token cookie")

	// The access token works against protected routes.
	w = postJSON(router, "/api/tasks", map[string]interface{}{"title": "Buy milk"}, login.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Refresh rotates the pair.
	w = postJSON(router, "/api/auth/refresh", map[string]interface{}{
		"refresh_token": login.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshed handlers.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The consumed refresh token is dead.
	w = postJSON(router, "/api/auth/refresh", map[string]interface{}{
		"refresh_token": login.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout revokes the rotated token.
	w = postJSON(router, "/api/auth/logout", map[string]interface{}{
		"refresh_token": refreshed.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/refresh", map[string]interface{}{
		"refresh_token": refreshed.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newAuthStack(t)

	w := postJSON(router, "/api/auth/register", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "sup3r-Secret!",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type mockAuthService struct {
	loginErr  error
	revokeErr error
	user      *models.User
}

func (m *mockAuthService) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.user, nil
}

func (m *mockAuthService) GenerateTokens(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	return "access", "refresh", nil
}

func (m *mockAuthService) RefreshTokens(db *gorm.DB, refreshToken string) (string, string, error) {
	return "access", "refresh", nil
}

func (m *mockAuthService) RevokeToken(db *gorm.DB, refreshToken string) error {
	return m.revokeErr
}

func newMockAuthRouter(svc *mockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewAuthHandler(nil, svc, config.AuthConfig{AccessTokenTTL: 15 * time.Minute}, false)
	router := gin.New()
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/logout", handler.Logout)
	return router
}

func TestLoginStoreFailureIsNotCredentialRejection(t *testing.T) {
	router := newMockAuthRouter(&mockAuthService{loginErr: errors.New("connection refused")})

	w := postJSON(router, "/api/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "sup3r-Secret!",
	}, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code,
		"a store outage must not be reported as bad credentials")
}

func TestLogoutPropagatesStoreFailure(t *testing.T) {
	router := newMockAuthRouter(&mockAuthService{revokeErr: errors.New("connection refused")})

	w := postJSON(router, "/api/auth/logout", map[string]interface{}{
		"refresh_token": "whatever",
	}, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogoutUnknownTokenStillSucceeds(t *testing.T) {
	router := newMockAuthRouter(&mockAuthService{revokeErr: apperrors.ErrUnauthenticated})

	w := postJSON(router, "/api/auth/logout", map[string]interface{}{
		"refresh_token": "not-even-a-uuid",
	}, "")

	assert.Equal(t, http.StatusOK, w.Code, "logout stays idempotent for unknown tokens")
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router := newAuthStack(t)

	req, _ := http.NewRequest("GET", "/api/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnershipIsEnforcedEndToEnd(t *testing.T) {
	router := newAuthStack(t)

	registerAndLogin := func(email string) string {
		w := postJSON(router, "/api/auth/register", map[string]interface{}{
			"email":    email,
			"password": "sup3r-Secret!",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(router, "/api/auth/login", map[string]interface{}{
			"email":    email,
			"password": "sup3r-Secret!",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var login handlers.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
		return login.AccessToken
	}

	aliceToken := registerAndLogin("alice@example.com")
	bobToken := registerAndLogin("bob@example.com")

	w := postJSON(router, "/api/tasks", map[string]interface{}{"title": "Buy milk"}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	taskID := created["id"].(string)

	get := func(token string) int {
		req, _ := http.NewRequest("GET", "/api/tasks/"+taskID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get(aliceToken))
	assert.Equal(t, http.StatusNotFound, get(bobToken),
		"another user's task must look like it does not exist")
}
