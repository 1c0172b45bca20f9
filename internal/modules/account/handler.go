package account

import (
	"errors"
	"net/http"

	"titanax/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler maps HTTP requests onto the credential service and its error
// taxonomy onto status codes.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints. authLimiter
// wraps the credential-guessing surfaces.
func (h *Handler) RegisterPublicRoutes(users *gin.RouterGroup, authLimiter gin.HandlerFunc) {
	users.POST("/signup", authLimiter, h.Signup)
	users.POST("/login", authLimiter, h.Login)
	users.POST("/refresh-token", h.Refresh)
	users.POST("/forgot-password", authLimiter, h.ForgotPassword)
	users.POST("/reset-password", authLimiter, h.ResetPassword)
	users.GET("/verify-email", h.VerifyEmail)
}

func (h *Handler) RegisterProtectedRoutes(users *gin.RouterGroup) {
	users.GET("/profile", h.GetProfile)
	users.POST("/logout", h.Logout)
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email is already in use")
			return
		}
		response.Error(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create account")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":         result.User,
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":         result.User,
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Refresh token is required")
		return
	}

	accessToken, err := h.service.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": accessToken})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	message, err := h.service.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "RESET_REQUEST_FAILED", "Failed to send reset email")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": message})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	message, err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			response.Error(c, http.StatusUnauthorized, "INVALID_RESET_TOKEN", "Invalid or expired reset token")
			return
		}
		response.Error(c, http.StatusInternalServerError, "RESET_FAILED", "Failed to reset password")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": message})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	verifyToken := c.Query("token")
	if verifyToken == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Verification token is required")
		return
	}

	message, err := h.service.VerifyEmail(c.Request.Context(), verifyToken)
	if err != nil {
		if errors.Is(err, ErrVerificationNotFound) {
			response.Error(c, http.StatusNotFound, "INVALID_VERIFICATION_TOKEN", "Invalid verification token")
			return
		}
		response.Error(c, http.StatusInternalServerError, "VERIFICATION_FAILED", "Failed to verify email")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": message})
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}
