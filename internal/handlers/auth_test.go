package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todos-app/backend/internal/handlers"
	"todos-app/backend/internal/middleware"
	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"
	"todos-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	users := repositories.NewUserRepository(db)
	tokens := services.NewTokenService("test-secret", 24*time.Hour)
	auth := services.NewAuthService(users, tokens, 4)
	h := handlers.NewAuthHandler(auth, 24*time.Hour, true, zap.NewNop())

	router := gin.New()
	router.POST("/auth/signup", h.Signup)
	router.POST("/auth/login", h.Login)
	router.POST("/auth/logout", h.Logout)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func findTokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	res := w.Result()
	defer res.Body.Close()
	for _, cookie := range res.Cookies() {
		if cookie.Name == middleware.TokenCookieName {
			return cookie
		}
	}
	return nil
}

func TestSignup_Handler(t *testing.T) {
	router := newAuthRouter(t)

	w := postJSON(router, "/auth/signup", `{"name":"Ann","email":"ann@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])

	user, ok := resp["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ann@x.com", user["email"])
	assert.NotContains(t, user, "password", "the hash must never leave the server")

	cookie := findTokenCookie(t, w)
	require.NotNil(t, cookie, "signup sets the session cookie")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestSignup_Handler_Duplicate(t *testing.T) {
	router := newAuthRouter(t)

	postJSON(router, "/auth/signup", `{"name":"Ann","email":"ann@x.com","password":"secret1"}`)
	w := postJSON(router, "/auth/signup", `{"name":"Ann","email":"ann@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Email already exists", resp["message"])
}

func TestSignup_Handler_MalformedJSON(t *testing.T) {
	router := newAuthRouter(t)

	w := postJSON(router, "/auth/signup", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Handler(t *testing.T) {
	router := newAuthRouter(t)
	postJSON(router, "/auth/signup", `{"name":"Ann","email":"ann@x.com","password":"secret1"}`)

	w := postJSON(router, "/auth/login", `{"email":"ann@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	require.NotNil(t, findTokenCookie(t, w))
}

func TestLogin_Handler_BadCredentials(t *testing.T) {
	router := newAuthRouter(t)
	postJSON(router, "/auth/signup", `{"name":"Ann","email":"ann@x.com","password":"secret1"}`)

	wrongPass := postJSON(router, "/auth/login", `{"email":"ann@x.com","password":"wrong"}`)
	noUser := postJSON(router, "/auth/login", `{"email":"nobody@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, http.StatusBadRequest, noUser.Code)

	// Same status, same message: the response must not reveal whether
	// the account exists.
	assert.Equal(t, wrongPass.Body.String(), noUser.Body.String())
	assert.Equal(t, "Invalid email or password", decodeBody(t, wrongPass)["message"])
}

func TestLogout_Handler(t *testing.T) {
	router := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "Logged out successfully", resp["message"])

	cookie := findTokenCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "logout expires the cookie")
}
