package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"titanax/internal/database"
	"titanax/internal/domain"
	"titanax/internal/middleware"
	"titanax/internal/modules/account"
	"titanax/internal/notification"
	"titanax/internal/pkg/token"
	"titanax/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type testResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T) *testSuite {
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	userRepo := repository.NewUserRepository(db)
	codec := token.NewCodec("test_secret_key_32_characters_min", 24*time.Hour)
	mailer := notification.NewConsoleMailer("http://localhost:5173")

	accountService := account.NewService(userRepo, codec, mailer, time.Hour, 24*time.Hour)
	accountHandler := account.NewHandler(accountService)

	router := gin.New()
	api := router.Group("/api")
	users := api.Group("/users")

	authLimiter := middleware.RateLimit(100, time.Minute)
	accountHandler.RegisterPublicRoutes(users, authLimiter)

	protected := users.Group("/")
	protected.Use(middleware.Auth(codec))
	accountHandler.RegisterProtectedRoutes(protected)

	return &testSuite{router: router, db: db}
}

func (s *testSuite) do(t *testing.T, method, path string, body any, bearer string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func (s *testSuite) userByEmail(t *testing.T, email string) *domain.User {
	t.Helper()
	var u domain.User
	require.NoError(t, s.db.Where("email = ?", email).First(&u).Error)
	return &u
}

func TestCredentialLifecycle(t *testing.T) {
	s := setupSuite(t)

	// Signup.
	w, resp := s.do(t, "POST", "/api/users/signup", gin.H{
		"name":     "Ada",
		"email":    "ada@x.com",
		"role":     "Engineer",
		"password": "Password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	signupRefresh := resp.Data["refreshToken"].(string)
	signupAccess := resp.Data["token"].(string)
	require.NotEmpty(t, signupRefresh)
	require.NotEmpty(t, signupAccess)
	user := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, false, user["emailVerified"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	// Duplicate signup conflicts and mutates nothing.
	w, resp = s.do(t, "POST", "/api/users/signup", gin.H{
		"name":     "Imposter",
		"email":    "ada@x.com",
		"role":     "Engineer",
		"password": "Password123",
	}, "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)

	// Login failures are indistinguishable between unknown email and wrong
	// password.
	wUnknown, respUnknown := s.do(t, "POST", "/api/users/login", gin.H{
		"email": "nobody@x.com", "password": "Password123",
	}, "")
	wWrong, respWrong := s.do(t, "POST", "/api/users/login", gin.H{
		"email": "ada@x.com", "password": "WrongPassword",
	}, "")
	require.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	require.Equal(t, wUnknown.Code, wWrong.Code)
	assert.Equal(t, respUnknown.Error, respWrong.Error)

	// Login rotates the refresh token: R2 replaces signup's R1.
	w, resp = s.do(t, "POST", "/api/users/login", gin.H{
		"email": "ada@x.com", "password": "Password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	loginRefresh := resp.Data["refreshToken"].(string)
	accessToken := resp.Data["token"].(string)
	require.NotEmpty(t, loginRefresh)
	assert.NotEqual(t, signupRefresh, loginRefresh)

	// R1 is stale, R2 refreshes.
	w, resp = s.do(t, "POST", "/api/users/refresh-token", gin.H{"refreshToken": signupRefresh}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", resp.Error.Code)

	w, resp = s.do(t, "POST", "/api/users/refresh-token", gin.H{"refreshToken": loginRefresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp.Data["token"])

	// Profile via access token, no hash in the projection.
	w, resp = s.do(t, "GET", "/api/users/profile", nil, accessToken)
	require.Equal(t, http.StatusOK, w.Code)
	profile := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, "ada@x.com", profile["email"])
	assert.NotContains(t, profile, "passwordHash")

	// Email verification: first consume succeeds, second 404s, the flag
	// stays flipped.
	verifyToken := *s.userByEmail(t, "ada@x.com").EmailVerificationToken
	w, _ = s.do(t, "GET", "/api/users/verify-email?token="+verifyToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, "GET", "/api/users/verify-email?token="+verifyToken, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INVALID_VERIFICATION_TOKEN", resp.Error.Code)

	w, resp = s.do(t, "GET", "/api/users/profile", nil, accessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp.Data["user"].(map[string]interface{})["emailVerified"])

	// Password reset: identical generic response for known and unknown
	// emails.
	wKnown, _ := s.do(t, "POST", "/api/users/forgot-password", gin.H{"email": "ada@x.com"}, "")
	wUnknownReset, _ := s.do(t, "POST", "/api/users/forgot-password", gin.H{"email": "ghost@x.com"}, "")
	require.Equal(t, http.StatusOK, wKnown.Code)
	require.Equal(t, http.StatusOK, wUnknownReset.Code)
	assert.Equal(t, wKnown.Body.String(), wUnknownReset.Body.String())

	resetToken := *s.userByEmail(t, "ada@x.com").ResetPasswordToken
	w, _ = s.do(t, "POST", "/api/users/reset-password", gin.H{
		"token": resetToken, "newPassword": "NewPassword456",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	// The reset token is single-use.
	w, resp = s.do(t, "POST", "/api/users/reset-password", gin.H{
		"token": resetToken, "newPassword": "AnotherPassword789",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_RESET_TOKEN", resp.Error.Code)

	// Old password no longer works, new one does; this login rotates again.
	w, _ = s.do(t, "POST", "/api/users/login", gin.H{"email": "ada@x.com", "password": "Password123"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = s.do(t, "POST", "/api/users/login", gin.H{"email": "ada@x.com", "password": "NewPassword456"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	finalRefresh := resp.Data["refreshToken"].(string)
	finalAccess := resp.Data["token"].(string)

	// Logout kills the refresh token but not outstanding access tokens.
	w, _ = s.do(t, "POST", "/api/users/logout", nil, finalAccess)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, "POST", "/api/users/refresh-token", gin.H{"refreshToken": finalRefresh}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", resp.Error.Code)

	w, _ = s.do(t, "GET", "/api/users/profile", nil, finalAccess)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	s := setupSuite(t)

	w, _ := s.do(t, "GET", "/api/users/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, "POST", "/api/users/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
