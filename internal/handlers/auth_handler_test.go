package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"licgate/internal/config"
	"licgate/internal/handlers"
)

func newLoginRouter(t *testing.T, password string) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewAuthHandler(config.AdminConfig{
		Email:        "operator@example.com",
		PasswordHash: string(hash),
	})
	r.POST("/admin/login", h.Login)
	return r
}

func doLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	r := newLoginRouter(t, "s3cret")

	w := doLogin(r, `{"email":"operator@example.com","password":"s3cret"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestLoginWrongPassword(t *testing.T) {
	r := newLoginRouter(t, "s3cret")

	w := doLogin(r, `{"email":"operator@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	r := newLoginRouter(t, "s3cret")

	w := doLogin(r, `{"email":"someone@example.com","password":"s3cret"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginMissingFields(t *testing.T) {
	r := newLoginRouter(t, "s3cret")

	w := doLogin(r, `{"email":"operator@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginUnconfiguredAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/login", handlers.NewAuthHandler(config.AdminConfig{}).Login)

	w := doLogin(r, `{"email":"operator@example.com","password":"s3cret"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
